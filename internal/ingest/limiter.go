package ingest

// limiter.go bounds how many files are parsed at once across all batches.
//
// Slots are handed out through a buffered channel. When every slot is taken
// a parse waits up to maxWait before failing with core.ErrTooManyLoads.
// WaitForDrain blocks until in-flight parses finish so a process can shut
// down without truncating a load.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// DefaultMaxConcurrent is the default limit for parallel parses.
const DefaultMaxConcurrent = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// Limiter controls concurrent file parsing using a semaphore.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter that allows at most maxConcurrent parses.
// Callers that cannot get a slot within maxWait receive core.ErrTooManyLoads.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a parse slot. The caller must call Release when done.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return core.ErrTooManyLoads
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of parses holding a slot.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no parse holds a slot or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of a Limiter.
type LimiterStatus struct {
	Active        int
	Available     int
	MaxConcurrent int
}

// LogValue groups the snapshot under one log attribute.
func (s LimiterStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("active", s.Active),
		slog.Int("available", s.Available),
		slog.Int("max_concurrent", s.MaxConcurrent),
	)
}

// Status returns the current limiter state.
func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
