package roster

import "github.com/rbalint/candidate-outreach/internal/model"

// Select adds known ids to the selection; unknown ids are ignored.
func (r *Roster) Select(ids []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			r.selected[id] = struct{}{}
		}
	}
	return len(r.selected)
}

func (r *Roster) Deselect(ids []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.selected, id)
	}
	return len(r.selected)
}

// SelectedIDs returns the selection in roster order.
func (r *Roster) SelectedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectedInOrder()
}

func (r *Roster) selectedInOrder() []string {
	var out []string
	for _, id := range r.order {
		if _, ok := r.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (r *Roster) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = make(map[string]struct{})
}

// ToggleSelectAll selects every candidate unless everything is already
// selected, in which case it empties the selection. Returns the new
// selection size.
func (r *Roster) ToggleSelectAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.selected) == len(r.order) && len(r.order) > 0 {
		r.selected = make(map[string]struct{})
		return 0
	}

	r.selected = make(map[string]struct{}, len(r.order))
	for _, id := range r.order {
		r.selected[id] = struct{}{}
	}
	return len(r.selected)
}

// BulkSkip skips every selected candidate that is still pending;
// selected candidates in any other status are left untouched. The
// selection is cleared afterwards. Returns the ids that changed.
func (r *Roster) BulkSkip() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed []string
	for _, id := range r.selectedInOrder() {
		c := r.byID[id]
		if c.Status == model.Pending {
			c.Status = model.Skipped
			changed = append(changed, id)
		}
	}
	r.selected = make(map[string]struct{})
	return changed
}

// BulkRetry requeues every selected candidate to pending, whatever its
// status, then clears the selection. The one exception is sending: an
// in-flight attempt must resolve before any other action touches it.
// Returns the ids whose status actually changed.
func (r *Roster) BulkRetry() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed []string
	for _, id := range r.selectedInOrder() {
		c := r.byID[id]
		if c.Status != model.Pending && c.Status != model.Sending {
			c.Status = model.Pending
			changed = append(changed, id)
		}
	}
	r.selected = make(map[string]struct{})
	return changed
}

// SendableSelection returns the selected ids that a send attempt may
// legally start from, in roster order.
func (r *Roster) SendableSelection() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, id := range r.selectedInOrder() {
		if r.byID[id].Status.Sendable() {
			out = append(out, id)
		}
	}
	return out
}
