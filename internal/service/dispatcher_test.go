package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rbalint/candidate-outreach/internal/client"
	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/roster"
	"github.com/rbalint/candidate-outreach/internal/service"
)

type fakeOpener struct {
	mu     sync.Mutex
	links  []string
	failOn func(link string) bool
}

var _ client.LinkOpener = (*fakeOpener)(nil)

func (f *fakeOpener) Open(ctx context.Context, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != nil && f.failOn(link) {
		return errors.New("popup blocked")
	}
	f.links = append(f.links, link)
	return nil
}

func (f *fakeOpener) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.links...)
}

func accept(int) bool { return true }
func reject(int) bool { return false }

func testTemplate() model.MessageTemplate {
	return model.MessageTemplate{
		Intro:     "Hi {{name}}",
		Questions: []string{"Are you open to a new role?"},
		Outro:     "Thanks!",
	}
}

func newRoster(t *testing.T, rows []model.Row) (*roster.Roster, []model.Candidate) {
	t.Helper()

	r := roster.New()
	cands := roster.Build(rows, "Name", "Phone")
	if err := r.Replace(cands); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	return r, cands
}

func threeRows() []model.Row {
	return []model.Row{
		{"Name": "Jane Doe", "Phone": "5550120001"},
		{"Name": "Bob Boblaw", "Phone": "5550120002"},
		{"Name": "Carol", "Phone": "5550120003"},
	}
}

func newDispatcher(r *roster.Roster, opener client.LinkOpener) *service.Dispatcher {
	return service.NewDispatcher(r, opener, time.Millisecond, 2*time.Millisecond)
}

func TestSendOne_HappyPath(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	opener := &fakeOpener{}
	d := newDispatcher(r, opener)

	var (
		mu      sync.Mutex
		changes []model.Status
	)
	d.WithStatusHook(func(ctx context.Context, id string, status model.Status) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, status)
	})

	status, err := d.SendOne(context.Background(), cands[0].ID, testTemplate(), accept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.Sent {
		t.Fatalf("expected sent, got %q", status)
	}

	links := opener.opened()
	if len(links) != 1 {
		t.Fatalf("expected 1 opened link, got %d", len(links))
	}
	if !strings.Contains(links[0], "phone=5550120001") {
		t.Errorf("unexpected link: %q", links[0])
	}
	if !strings.Contains(links[0], "Jane") || strings.Contains(links[0], "Doe") {
		t.Errorf("expected first-name personalization in link: %q", links[0])
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 || changes[0] != model.Sending || changes[1] != model.Sent {
		t.Errorf("expected sending then sent, got %v", changes)
	}

	if r.Busy() {
		t.Error("expected busy flag released")
	}
}

func TestSendOne_NotConfirmedChangesNothing(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	opener := &fakeOpener{}
	d := newDispatcher(r, opener)

	_, err := d.SendOne(context.Background(), cands[0].ID, testTemplate(), reject)
	if !errors.Is(err, service.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}

	if got, _ := r.Get(cands[0].ID); got.Status != model.Pending {
		t.Errorf("expected pending untouched, got %q", got.Status)
	}
	if len(opener.opened()) != 0 {
		t.Error("expected no link opened")
	}
	if r.Busy() {
		t.Error("expected busy flag released")
	}
}

func TestSendOne_OpenFailureMarksFailed(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	opener := &fakeOpener{failOn: func(string) bool { return true }}
	d := newDispatcher(r, opener)

	status, err := d.SendOne(context.Background(), cands[0].ID, testTemplate(), accept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.Failed {
		t.Fatalf("expected failed, got %q", status)
	}
}

func TestSendOne_UnknownCandidate(t *testing.T) {
	t.Parallel()

	r, _ := newRoster(t, threeRows())
	d := newDispatcher(r, &fakeOpener{})

	_, err := d.SendOne(context.Background(), "nope", testTemplate(), accept)
	if !errors.Is(err, roster.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendPending_ProcessesAllPendingInOrder(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	if err := r.Skip(cands[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opener := &fakeOpener{}
	d := newDispatcher(r, opener)

	var confirmedCount int
	sum, err := d.SendPending(context.Background(), testTemplate(), func(n int) bool {
		confirmedCount = n
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if confirmedCount != 2 {
		t.Errorf("expected confirmation for 2 candidates, got %d", confirmedCount)
	}
	if sum.Attempted != 2 || sum.Sent != 2 || sum.Failed != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	links := opener.opened()
	if len(links) != 2 {
		t.Fatalf("expected 2 opened links, got %d", len(links))
	}
	if !strings.Contains(links[0], "phone=5550120001") || !strings.Contains(links[1], "phone=5550120003") {
		t.Errorf("expected roster order preserved, got %v", links)
	}

	if got, _ := r.Get(cands[1].ID); got.Status != model.Skipped {
		t.Errorf("expected skipped candidate untouched, got %q", got.Status)
	}
}

func TestSendPending_FailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	opener := &fakeOpener{failOn: func(link string) bool {
		return strings.Contains(link, "5550120001")
	}}
	d := newDispatcher(r, opener)

	sum, err := d.SendPending(context.Background(), testTemplate(), accept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Attempted != 3 || sum.Sent != 2 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.FailedNames) != 1 || sum.FailedNames[0] != "Jane Doe" {
		t.Errorf("expected failure to name the candidate, got %v", sum.FailedNames)
	}

	if got, _ := r.Get(cands[0].ID); got.Status != model.Failed {
		t.Errorf("expected failed, got %q", got.Status)
	}
	if got, _ := r.Get(cands[2].ID); got.Status != model.Sent {
		t.Errorf("expected later candidate still sent, got %q", got.Status)
	}
}

func TestSendPending_NoTargets(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	for _, c := range cands {
		if err := r.Skip(c.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	d := newDispatcher(r, &fakeOpener{})
	_, err := d.SendPending(context.Background(), testTemplate(), accept)
	if !errors.Is(err, service.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestSendSelected_ClearsSelectionAndFilters(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())

	// first candidate already sent: selected but not a legal target
	if _, err := r.BeginSend(cands[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Resolve(cands[0].ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Select([]string{cands[0].ID, cands[2].ID})

	opener := &fakeOpener{}
	d := newDispatcher(r, opener)

	sum, err := d.SendSelected(context.Background(), testTemplate(), accept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Attempted != 1 || sum.Sent != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if got := r.SelectedIDs(); len(got) != 0 {
		t.Errorf("expected selection cleared, got %v", got)
	}
	if got, _ := r.Get(cands[0].ID); got.Status != model.Sent {
		t.Errorf("expected sent candidate untouched, got %q", got.Status)
	}
}

func TestDispatch_BusyFlagBlocksReentry(t *testing.T) {
	t.Parallel()

	r, cands := newRoster(t, threeRows())
	d := newDispatcher(r, &fakeOpener{})

	if !r.TryBeginDispatch() {
		t.Fatal("expected busy acquired")
	}

	if _, err := d.SendOne(context.Background(), cands[0].ID, testTemplate(), accept); !errors.Is(err, roster.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := d.SendPending(context.Background(), testTemplate(), accept); !errors.Is(err, roster.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	r.EndDispatch()
	if _, err := d.SendOne(context.Background(), cands[0].ID, testTemplate(), accept); err != nil {
		t.Fatalf("expected dispatch after release, got %v", err)
	}
}
