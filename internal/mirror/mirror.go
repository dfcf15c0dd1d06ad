// Package mirror keeps the backing store loosely in sync with the
// in-memory roster. Mirroring is best effort: a tick that cannot write
// logs and moves on, and nothing runs while the store is offline.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/repo"
)

// Snapshot returns the roster's current candidates.
type Snapshot func() []model.Candidate

type Mirror struct {
	interval time.Duration
	store    repo.CandidateStore
	snapshot Snapshot

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, store repo.CandidateStore, snapshot Snapshot) (*Mirror, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	if snapshot == nil {
		return nil, errors.New("snapshot must not be nil")
	}
	return &Mirror{
		interval: interval,
		store:    store,
		snapshot: snapshot,
		done:     make(chan struct{}),
	}, nil
}

func (m *Mirror) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running.Store(true)

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		slog.Info("mirror started", "interval", m.interval.String())

		m.safeTick(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("mirror stopping")
				return
			case <-ticker.C:
				m.safeTick(ctx)
			}
		}
	}()

	return true
}

func (m *Mirror) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running.Load() {
		return false
	}

	m.cancel()
	<-m.done
	m.running.Store(false)

	slog.Info("mirror stopped")
	return true
}

func (m *Mirror) IsRunning() bool {
	return m.running.Load()
}

func (m *Mirror) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("mirror tick panic recovered", "panic", r)
		}
	}()

	if m.store.State() == repo.StateOffline {
		return
	}

	candidates := m.snapshot()
	if len(candidates) == 0 {
		return
	}

	start := time.Now()
	if err := m.store.Upsert(ctx, candidates); err != nil {
		slog.Warn("mirror tick failed", "error", err)
		return
	}
	slog.Info("mirror tick completed",
		"candidates", len(candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
