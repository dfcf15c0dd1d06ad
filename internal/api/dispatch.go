package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/roster"
	"github.com/rbalint/candidate-outreach/internal/service"
)

type dispatchRequest struct {
	ID      string `json:"id,omitempty"`
	Confirm bool   `json:"confirm"`
}

// SendOne dispatches a single candidate. Without confirm:true nothing
// happens and the caller gets the confirmation prompt back.
func (h *Handler) SendOne(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Delays and tab opens must survive a dropped client; a confirmed
	// dispatch runs to completion.
	ctx := context.WithoutCancel(r.Context())

	var promptCount int
	status, err := h.dispatcher.SendOne(ctx, req.ID, h.template(), func(count int) bool {
		promptCount = count
		return req.Confirm
	})
	if err != nil {
		h.dispatchError(w, err, promptCount)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "status": status})
}

func (h *Handler) SendAll(w http.ResponseWriter, r *http.Request) {
	h.sendBulk(w, r, h.dispatcher.SendPending)
}

func (h *Handler) SendSelected(w http.ResponseWriter, r *http.Request) {
	h.sendBulk(w, r, h.dispatcher.SendSelected)
}

func (h *Handler) sendBulk(
	w http.ResponseWriter,
	r *http.Request,
	send func(context.Context, model.MessageTemplate, service.ConfirmFunc) (service.Summary, error),
) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := context.WithoutCancel(r.Context())

	var promptCount int
	sum, err := send(ctx, h.template(), func(count int) bool {
		promptCount = count
		return req.Confirm
	})
	if err != nil {
		h.dispatchError(w, err, promptCount)
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) DispatchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"busy": h.roster.Busy()})
}

func (h *Handler) dispatchError(w http.ResponseWriter, err error, promptCount int) {
	switch {
	case errors.Is(err, service.ErrNotConfirmed):
		writeJSON(w, http.StatusOK, map[string]any{
			"confirmationRequired": true,
			"count":                promptCount,
		})
	case errors.Is(err, service.ErrNoTargets):
		http.Error(w, "no candidates to send to", http.StatusUnprocessableEntity)
	case errors.Is(err, roster.ErrBusy):
		http.Error(w, "a dispatch is already in flight", http.StatusConflict)
	case errors.Is(err, roster.ErrNotFound):
		http.Error(w, "candidate not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrAlreadySending):
		http.Error(w, "candidate already has an attempt in flight", http.StatusConflict)
	default:
		var ite *roster.InvalidTransitionError
		if errors.As(err, &ite) {
			http.Error(w, ite.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
