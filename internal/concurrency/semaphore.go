// Package concurrency provides the bounded-worker and rate-limit
// primitives used around blocking agent calls.
package concurrency

import (
	"context"
	"sync"
	"time"
)

// Semaphore bounds the number of debates in flight. Acquisition is
// context-aware so a caller's deadline also bounds its wait in the queue.
type Semaphore struct {
	ch      chan struct{}
	mu      sync.Mutex
	max     int
	current int
}

// NewSemaphore creates a semaphore admitting at most max holders.
func NewSemaphore(max int) *Semaphore {
	return &Semaphore{
		ch:  make(chan struct{}, max),
		max: max,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		s.mu.Lock()
		s.current++
		s.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.ch <- struct{}{}:
		s.mu.Lock()
		s.current++
		s.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot. Releasing an unheld semaphore is a no-op.
func (s *Semaphore) Release() {
	select {
	case <-s.ch:
		s.mu.Lock()
		if s.current > 0 {
			s.current--
		}
		s.mu.Unlock()
	default:
	}
}

// Current returns the number of held slots.
func (s *Semaphore) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Available returns the number of free slots.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max - s.current
}

// RateLimiter caps calls to a fixed number per sliding minute window. It
// backs the requests-per-minute budget enforced on each agent role's
// model calls.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter admitting perMinute calls per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:  perMinute,
		window: time.Minute,
		now:    time.Now,
	}
}

// Wait blocks until a call slot is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		r.prune(now)
		if len(r.calls) < r.limit {
			r.calls = append(r.calls, now)
			r.mu.Unlock()
			return nil
		}
		retryAt := r.calls[0].Add(r.window)
		r.mu.Unlock()

		timer := time.NewTimer(retryAt.Sub(now))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// TryAcquire takes a call slot without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.prune(now)
	if len(r.calls) >= r.limit {
		return false
	}
	r.calls = append(r.calls, now)
	return true
}

// prune drops calls that fell out of the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.calls[:0]
	for _, t := range r.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.calls = kept
}
