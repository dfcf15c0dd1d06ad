package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rbalint/candidate-outreach/internal/client"
	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/roster"
)

var (
	ErrNotConfirmed = errors.New("dispatch was not confirmed")
	ErrNoTargets    = errors.New("no candidates to send to")
)

// ConfirmFunc is the accept/cancel gate shown before anything happens.
// It receives the number of candidates about to be processed.
type ConfirmFunc func(count int) bool

// StatusHook observes every status change the dispatcher makes, for
// best-effort mirroring. Hook errors are the hook's problem.
type StatusHook func(ctx context.Context, id string, status model.Status)

type Summary struct {
	Attempted   int      `json:"attempted"`
	Sent        int      `json:"sent"`
	Failed      int      `json:"failed"`
	FailedNames []string `json:"failedNames,omitempty"`
}

// Dispatcher drives outreach attempts over the roster, strictly one
// candidate at a time. Opening many browsing contexts at once is
// useless to the operator, so bulk throughput is traded for pacing.
type Dispatcher struct {
	roster    *roster.Roster
	opener    client.LinkOpener
	sendDelay time.Duration
	throttle  time.Duration

	onStatus StatusHook
}

func NewDispatcher(r *roster.Roster, opener client.LinkOpener, sendDelay, throttle time.Duration) *Dispatcher {
	return &Dispatcher{
		roster:    r,
		opener:    opener,
		sendDelay: sendDelay,
		throttle:  throttle,
	}
}

func (d *Dispatcher) WithStatusHook(h StatusHook) *Dispatcher {
	d.onStatus = h
	return d
}

// SendOne runs a single outreach attempt. Nothing observable happens
// until confirm accepts; the candidate ends in sent or failed.
func (d *Dispatcher) SendOne(ctx context.Context, id string, tmpl model.MessageTemplate, confirm ConfirmFunc) (model.Status, error) {
	if _, ok := d.roster.Get(id); !ok {
		return "", roster.ErrNotFound
	}

	if !d.roster.TryBeginDispatch() {
		return "", roster.ErrBusy
	}
	defer d.roster.EndDispatch()

	if !confirm(1) {
		return "", ErrNotConfirmed
	}

	_, status, err := d.attempt(ctx, id, tmpl, d.sendDelay)
	if err != nil {
		return "", err
	}
	return status, nil
}

// SendPending dispatches every pending candidate, in roster order.
func (d *Dispatcher) SendPending(ctx context.Context, tmpl model.MessageTemplate, confirm ConfirmFunc) (Summary, error) {
	return d.sendBatch(ctx, tmpl, confirm, false)
}

// SendSelected dispatches the sendable part of the selection, in roster
// order. The selection is cleared up front so no stale ids linger in
// the UI while the batch runs.
func (d *Dispatcher) SendSelected(ctx context.Context, tmpl model.MessageTemplate, confirm ConfirmFunc) (Summary, error) {
	return d.sendBatch(ctx, tmpl, confirm, true)
}

func (d *Dispatcher) sendBatch(ctx context.Context, tmpl model.MessageTemplate, confirm ConfirmFunc, fromSelection bool) (Summary, error) {
	if !d.roster.TryBeginDispatch() {
		return Summary{}, roster.ErrBusy
	}
	defer d.roster.EndDispatch()

	var targets []string
	if fromSelection {
		targets = d.roster.SendableSelection()
	} else {
		targets = d.roster.PendingIDs()
	}
	if len(targets) == 0 {
		return Summary{}, ErrNoTargets
	}

	if !confirm(len(targets)) {
		return Summary{}, ErrNotConfirmed
	}

	if fromSelection {
		d.roster.ClearSelection()
	}

	var sum Summary
	for _, id := range targets {
		c, status, err := d.attempt(ctx, id, tmpl, d.throttle)
		if err != nil {
			// The candidate left a sendable state under us (a
			// concurrent bulk edit). Leave it be, keep going.
			continue
		}

		sum.Attempted++
		if status == model.Sent {
			sum.Sent++
		} else {
			sum.Failed++
			sum.FailedNames = append(sum.FailedNames, c.Name)
		}
	}

	slog.Info("bulk dispatch finished",
		"attempted", sum.Attempted,
		"sent", sum.Sent,
		"failed", sum.Failed,
	)
	return sum, nil
}

// attempt runs the full lifecycle of one send: sending, the pacing
// delay, link construction, the browser open, then sent or failed.
// Success means exactly "a browsing context was obtained"; there is no
// delivery channel to ask anything more of.
func (d *Dispatcher) attempt(ctx context.Context, id string, tmpl model.MessageTemplate, delay time.Duration) (model.Candidate, model.Status, error) {
	c, err := d.roster.BeginSend(id)
	if err != nil {
		return model.Candidate{}, "", err
	}
	d.notify(ctx, id, model.Sending)

	time.Sleep(delay)

	ok := false
	link, err := client.BuildChatLink(c.Phone, tmpl.Compose(c.Name))
	if err == nil {
		err = d.opener.Open(ctx, link)
		ok = err == nil
	}

	status, rerr := d.roster.Resolve(id, ok)
	if rerr != nil {
		return c, "", rerr
	}
	d.notify(ctx, id, status)

	if status == model.Failed {
		slog.Warn("send attempt failed", "candidate", c.Name, "error", err)
	}
	return c, status, nil
}

func (d *Dispatcher) notify(ctx context.Context, id string, status model.Status) {
	if d.onStatus != nil {
		d.onStatus(ctx, id, status)
	}
}
