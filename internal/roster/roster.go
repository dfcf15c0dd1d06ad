// Package roster owns the working set of candidates: their order, their
// workflow status, the operator's selection, and the single busy flag
// that serializes dispatching against roster replacement.
package roster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rbalint/candidate-outreach/internal/client"
	"github.com/rbalint/candidate-outreach/internal/model"
)

// A phone that normalizes to fewer digits than this never enters the
// roster; there is nothing such a link could reach.
const minPhoneDigits = 6

var (
	ErrNotFound       = errors.New("candidate not found")
	ErrBusy           = errors.New("a dispatch is in flight")
	ErrAlreadySending = errors.New("candidate already has an attempt in flight")
	ErrNotSending     = errors.New("candidate has no attempt in flight")
)

type InvalidTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// Build derives candidates from ingested rows using the mapped name and
// phone columns. Rows keep ingestion order; rows whose phone is too
// short after normalization are dropped here and never seen again.
func Build(rows []model.Row, nameCol, phoneCol string) []model.Candidate {
	out := make([]model.Candidate, 0, len(rows))
	for _, row := range rows {
		phone := row[phoneCol]
		if len(client.NormalizePhone(phone)) < minPhoneDigits {
			continue
		}

		name := row[nameCol]
		if name == "" {
			name = "Unknown"
		}

		out = append(out, model.Candidate{
			ID:          uuid.NewString(),
			Name:        name,
			Phone:       phone,
			OriginalRow: row,
			Status:      model.Pending,
		})
	}
	return out
}

type Roster struct {
	mu       sync.Mutex
	order    []string
	byID     map[string]*model.Candidate
	selected map[string]struct{}
	busy     bool
}

func New() *Roster {
	return &Roster{
		byID:     make(map[string]*model.Candidate),
		selected: make(map[string]struct{}),
	}
}

// Replace swaps in a whole new roster. All prior ids are invalidated
// and the selection is cleared. Refused while a dispatch is running so
// a reset can never interleave with in-flight status updates.
func (r *Roster) Replace(candidates []model.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.busy {
		return ErrBusy
	}

	r.order = make([]string, 0, len(candidates))
	r.byID = make(map[string]*model.Candidate, len(candidates))
	r.selected = make(map[string]struct{})

	for i := range candidates {
		c := candidates[i]
		r.order = append(r.order, c.ID)
		r.byID[c.ID] = &c
	}
	return nil
}

func (r *Roster) Clear() error {
	return r.Replace(nil)
}

func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// All returns candidate copies in roster order.
func (r *Roster) All() []model.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Candidate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

func (r *Roster) Get(id string) (model.Candidate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return model.Candidate{}, false
	}
	return *c, true
}

// PendingIDs returns all pending candidate ids in roster order.
func (r *Roster) PendingIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, id := range r.order {
		if r.byID[id].Status == model.Pending {
			out = append(out, id)
		}
	}
	return out
}

// BeginSend moves a candidate into sending. This is the compare-and-set
// guard on the workflow: only pending, failed or skipped may enter, and
// a candidate already sending is refused outright.
func (r *Roster) BeginSend(id string) (model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	if c.Status == model.Sending {
		return model.Candidate{}, ErrAlreadySending
	}
	if !c.Status.Sendable() {
		return model.Candidate{}, &InvalidTransitionError{From: c.Status, To: model.Sending}
	}

	c.Status = model.Sending
	return *c, nil
}

// Resolve finishes an attempt: sending becomes sent or failed.
func (r *Roster) Resolve(id string, succeeded bool) (model.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if c.Status != model.Sending {
		return "", ErrNotSending
	}

	if succeeded {
		c.Status = model.Sent
	} else {
		c.Status = model.Failed
	}
	return c.Status, nil
}

// Skip marks a pending candidate skipped.
func (r *Roster) Skip(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != model.Pending {
		return &InvalidTransitionError{From: c.Status, To: model.Skipped}
	}

	c.Status = model.Skipped
	return nil
}

// Requeue puts a candidate back to pending without firing a send.
// Requeueing an already-pending candidate is a no-op, not an error.
func (r *Roster) Requeue(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status == model.Sending {
		return &InvalidTransitionError{From: c.Status, To: model.Pending}
	}

	c.Status = model.Pending
	return nil
}

// TryBeginDispatch acquires the busy flag; false means a dispatch is
// already running.
func (r *Roster) TryBeginDispatch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.busy {
		return false
	}
	r.busy = true
	return true
}

func (r *Roster) EndDispatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = false
}

func (r *Roster) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}
