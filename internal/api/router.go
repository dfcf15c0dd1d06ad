package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("POST /v1/roster/upload", h.UploadRoster)
	mux.HandleFunc("GET /v1/roster", h.GetRoster)
	mux.HandleFunc("POST /v1/roster/reset", h.ResetRoster)

	mux.HandleFunc("GET /v1/template", h.GetTemplate)
	mux.HandleFunc("PUT /v1/template", h.PutTemplate)
	mux.HandleFunc("POST /v1/template/rewrite", h.RewriteTemplate)

	mux.HandleFunc("POST /v1/dispatch/send", h.SendOne)
	mux.HandleFunc("POST /v1/dispatch/send-all", h.SendAll)
	mux.HandleFunc("POST /v1/dispatch/send-selected", h.SendSelected)
	mux.HandleFunc("GET /v1/dispatch/status", h.DispatchStatus)

	mux.HandleFunc("GET /v1/selection", h.GetSelection)
	mux.HandleFunc("POST /v1/selection", h.UpdateSelection)
	mux.HandleFunc("POST /v1/selection/toggle-all", h.ToggleSelectAll)
	mux.HandleFunc("POST /v1/selection/skip", h.BulkSkip)
	mux.HandleFunc("POST /v1/selection/retry", h.BulkRetry)

	mux.HandleFunc("POST /v1/candidates/{id}/skip", h.SkipOne)
	mux.HandleFunc("POST /v1/candidates/{id}/requeue", h.RequeueOne)

	mux.HandleFunc("GET /v1/store/status", h.StoreStatus)
	mux.HandleFunc("POST /v1/store/reconnect", h.StoreReconnect)

	mux.HandleFunc("GET /v1/mirror/status", h.MirrorStatus)
	mux.HandleFunc("POST /v1/mirror/start", h.MirrorStart)
	mux.HandleFunc("POST /v1/mirror/stop", h.MirrorStop)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("candidate-outreach"))
	})

	return mux
}
