package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/rbalint/candidate-outreach/internal/ingest"
	"github.com/rbalint/candidate-outreach/internal/mapper"
	"github.com/rbalint/candidate-outreach/internal/mirror"
	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/repo"
	"github.com/rbalint/candidate-outreach/internal/roster"
	"github.com/rbalint/candidate-outreach/internal/service"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	roster     *roster.Roster
	dispatcher *service.Dispatcher
	mapper     *mapper.Mapper
	store      repo.CandidateStore
	mirror     *mirror.Mirror

	mu   sync.Mutex
	tmpl model.MessageTemplate
}

func NewHandler(
	r *roster.Roster,
	d *service.Dispatcher,
	m *mapper.Mapper,
	store repo.CandidateStore,
	mir *mirror.Mirror,
	tmpl model.MessageTemplate,
) *Handler {
	return &Handler{
		roster:     r,
		dispatcher: d,
		mapper:     m,
		store:      store,
		mirror:     mir,
		tmpl:       tmpl,
	}
}

func (h *Handler) template() model.MessageTemplate {
	h.mu.Lock()
	defer h.mu.Unlock()

	t := h.tmpl
	t.Questions = append([]string{}, h.tmpl.Questions...)
	return t
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// UploadRoster ingests a delimited file, maps its columns, and replaces
// the whole roster. Refused while a dispatch is running.
func (h *Handler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing \"file\" field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	headers, rows, err := ingest.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapping := h.mapper.MapColumns(r.Context(), headers, rows[0])
	candidates := roster.Build(rows, mapping.NameColumn, mapping.PhoneColumn)

	if err := h.roster.Replace(candidates); err != nil {
		if errors.Is(err, roster.ErrBusy) {
			http.Error(w, "a dispatch is in flight", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Best-effort mirror of the fresh roster; the store never blocks.
	mirrorCtx := context.WithoutCancel(r.Context())
	if err := h.store.ClearAll(mirrorCtx); err != nil {
		slog.Warn("failed to clear persisted candidates", "error", err)
	}
	if err := h.store.Upsert(mirrorCtx, candidates); err != nil {
		slog.Warn("failed to persist candidates", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mapping":  mapping,
		"rows":     len(rows),
		"imported": len(candidates),
		"excluded": len(rows) - len(candidates),
	})
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": h.roster.All(),
		"selected":   h.roster.SelectedIDs(),
		"busy":       h.roster.Busy(),
	})
}

func (h *Handler) ResetRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.Clear(); err != nil {
		if errors.Is(err, roster.ErrBusy) {
			http.Error(w, "a dispatch is in flight", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.store.ClearAll(context.WithoutCancel(r.Context())); err != nil {
		slog.Warn("failed to clear persisted candidates", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.template())
}

func (h *Handler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl model.MessageTemplate
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		http.Error(w, "invalid template body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.tmpl = tmpl
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) RewriteTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Tone string `json:"tone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tone, err := mapper.ParseTone(req.Tone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text": h.mapper.Rewrite(r.Context(), req.Text, tone),
	})
}

func (h *Handler) StoreStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"state": h.store.State()})
}

func (h *Handler) StoreReconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Verify(r.Context()); err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{
			"state": h.store.State(),
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": h.store.State()})
}

func (h *Handler) MirrorStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"running": h.mirror.IsRunning()})
}

func (h *Handler) MirrorStart(w http.ResponseWriter, r *http.Request) {
	h.mirror.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.mirror.IsRunning()})
}

func (h *Handler) MirrorStop(w http.ResponseWriter, r *http.Request) {
	h.mirror.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.mirror.IsRunning()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
