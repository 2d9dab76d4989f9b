// Package worker runs one expensive computation at a time in the background,
// for callers that cannot block on it (a per-tick game loop, say).
//
// The caller submits requests and polls for results. Only one request is ever
// in flight; while it runs, a newer submission replaces any request still
// waiting, so the worker always picks up the freshest query next. Every
// request carries a deadline, and work that starts or finishes after its
// deadline is thrown away, so a slow computation never replaces the last
// result that arrived in time.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Request[Q any] struct {
	ID       uuid.UUID
	Query    Q
	Deadline time.Time
}

type Result[R any] struct {
	// The ID of the request that produced this result
	ID    uuid.UUID
	Value R
}

type Task[Q, R any] struct {
	fn     func(Q) R
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	pending  *Request[Q]
	inFlight bool
	latest   *Result[R]
	wake     chan struct{}
}

// New creates a task that computes fn on the goroutine that calls Run. A nil
// logger is replaced with a no-op logger.
func New[Q, R any](fn func(Q) R, logger *zap.Logger) *Task[Q, R] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task[Q, R]{
		fn:     fn,
		logger: logger,
		now:    time.Now,
		wake:   make(chan struct{}, 1),
	}
}

// Queue a query, replacing any query that has not started yet. Returns the
// new request's id.
func (t *Task[Q, R]) Submit(q Q, deadline time.Time) uuid.UUID {
	req := &Request[Q]{ID: uuid.New(), Query: q, Deadline: deadline}
	t.mu.Lock()
	if t.pending != nil {
		t.logger.Debug("superseded pending request", zap.Stringer("id", t.pending.ID))
	}
	t.pending = req
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return req.ID
}

// The most recent result that completed before its deadline, without blocking.
func (t *Task[Q, R]) Poll() (Result[R], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return Result[R]{}, false
	}
	return *t.latest, true
}

// Whether the worker is computing right now.
func (t *Task[Q, R]) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Whether a request is waiting for the worker.
func (t *Task[Q, R]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Run is the worker loop. It returns the context's error once ctx is done.
func (t *Task[Q, R]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.wake:
		}
		for t.step() {
		}
	}
}

// Process the pending request, if any. Reports whether there was one.
func (t *Task[Q, R]) step() bool {
	t.mu.Lock()
	req := t.pending
	t.pending = nil
	if req == nil {
		t.mu.Unlock()
		return false
	}
	if t.now().After(req.Deadline) {
		t.mu.Unlock()
		t.logger.Debug("skipped expired request", zap.Stringer("id", req.ID))
		return true
	}
	t.inFlight = true
	t.mu.Unlock()

	value := t.fn(req.Query)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false
	if t.now().After(req.Deadline) {
		t.logger.Debug("dropped late result", zap.Stringer("id", req.ID))
		return true
	}
	t.latest = &Result[R]{ID: req.ID, Value: value}
	return true
}
