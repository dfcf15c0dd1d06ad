package repo

import (
	"context"

	"github.com/rbalint/candidate-outreach/internal/model"
)

// ConnState is the store's explicit connection state. Offline means the
// expected table was not found; every write is a no-op until Verify
// succeeds again.
type ConnState string

const (
	StateConnected ConnState = "connected"
	StateOffline   ConnState = "offline"
)

// CandidateStore is the best-effort mirror of the roster. The roster in
// memory is the source of truth; a store that cannot keep up degrades,
// it never blocks the workflow.
type CandidateStore interface {
	List(ctx context.Context) ([]model.Candidate, ConnState, error)
	Upsert(ctx context.Context, candidates []model.Candidate) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	ClearAll(ctx context.Context) error
	State() ConnState
	// Verify probes the backing table. It is the only way back from
	// offline to connected.
	Verify(ctx context.Context) error
}
