// Package pool provides a bounded concurrency semaphore used to fan out
// per-candidate work (feasibility + scoring) without unbounded goroutine
// growth against a large fleet.
package pool

import (
	"context"

	"go.uber.org/atomic"
)

// Pool limits concurrent work items to a fixed number of slots.
type Pool struct {
	sem    chan struct{}
	active atomic.Int64
}

// New creates a pool with at least one slot and at most 256 slots.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	if size > 256 {
		size = 256
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Acquire reserves one slot, blocking until one is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		p.active.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (p *Pool) Release() {
	p.active.Dec()
	<-p.sem
}

// Active reports how many slots are currently held, for diagnostics only;
// it is read without blocking acquirers or releasers.
func (p *Pool) Active() int64 {
	return p.active.Load()
}
