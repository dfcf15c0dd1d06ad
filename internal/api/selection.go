package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/roster"
)

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"selected": h.roster.SelectedIDs()})
}

func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Select   []string `json:"select"`
		Deselect []string `json:"deselect"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.roster.Select(req.Select)
	h.roster.Deselect(req.Deselect)

	writeJSON(w, http.StatusOK, map[string]any{"selected": h.roster.SelectedIDs()})
}

func (h *Handler) ToggleSelectAll(w http.ResponseWriter, r *http.Request) {
	n := h.roster.ToggleSelectAll()
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

// BulkSkip skips every selected pending candidate.
func (h *Handler) BulkSkip(w http.ResponseWriter, r *http.Request) {
	changed := h.roster.BulkSkip()
	h.mirrorStatuses(r, changed, model.Skipped)

	writeJSON(w, http.StatusOK, map[string]any{"skipped": len(changed)})
}

// BulkRetry requeues every selected candidate.
func (h *Handler) BulkRetry(w http.ResponseWriter, r *http.Request) {
	changed := h.roster.BulkRetry()
	h.mirrorStatuses(r, changed, model.Pending)

	writeJSON(w, http.StatusOK, map[string]any{"requeued": len(changed)})
}

// SkipOne skips a single pending candidate.
func (h *Handler) SkipOne(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.roster.Skip(id); err != nil {
		h.statusEditError(w, err)
		return
	}
	h.mirrorStatuses(r, []string{id}, model.Skipped)

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": model.Skipped})
}

// RequeueOne puts a single candidate back to pending.
func (h *Handler) RequeueOne(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.roster.Requeue(id); err != nil {
		h.statusEditError(w, err)
		return
	}
	h.mirrorStatuses(r, []string{id}, model.Pending)

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": model.Pending})
}

func (h *Handler) statusEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrNotFound):
		http.Error(w, "candidate not found", http.StatusNotFound)
	default:
		var ite *roster.InvalidTransitionError
		if errors.As(err, &ite) {
			http.Error(w, ite.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) mirrorStatuses(r *http.Request, ids []string, status model.Status) {
	ctx := context.WithoutCancel(r.Context())
	for _, id := range ids {
		if err := h.store.UpdateStatus(ctx, id, status); err != nil {
			slog.Warn("failed to persist status", "id", id, "error", err)
		}
	}
}
