package ingest

import (
	"context"
	"slices"
	"sync"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Batch is one background load. Its events arrive in file order and the
// channel is closed after the Done event.
type Batch struct {
	id     string
	paths  []string
	cached map[string]*core.LoadResult

	events chan core.Event
	done   chan struct{}

	cancelOnce sync.Once
	cancel     chan struct{}
	abortOnce  sync.Once
	abort      chan struct{}

	// Set by the worker before done is closed.
	results   []*core.LoadResult
	skipped   []string
	cancelled bool
}

func newBatch(id string, paths []string, cached map[string]*core.LoadResult, buffer int) *Batch {
	// One progress and at most one error per file, plus Done.
	size := 2*len(paths) + 1
	if buffer > 0 && buffer < size {
		size = buffer
	}
	return &Batch{
		id:     id,
		paths:  paths,
		cached: cached,
		events: make(chan core.Event, size),
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
		abort:  make(chan struct{}),
	}
}

// ID returns the batch's UUID.
func (b *Batch) ID() string { return b.id }

// Paths returns the files the batch reads, in order.
func (b *Batch) Paths() []string { return slices.Clone(b.paths) }

// Events returns the batch's event channel.
func (b *Batch) Events() <-chan core.Event { return b.events }

// Done is closed once the batch has finished.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Cancel asks the batch to stop. Files already being read finish; the
// rest are reported as skipped.
func (b *Batch) Cancel() {
	b.cancelOnce.Do(func() { close(b.cancel) })
}

// Cancelled reports whether Cancel was called.
func (b *Batch) Cancelled() bool {
	select {
	case <-b.cancel:
		return true
	default:
		return false
	}
}

// Wait drains any unread events, blocks until the batch finishes and
// returns its results in file order. Skipped files have no result.
func (b *Batch) Wait() []*core.LoadResult {
	for range b.events {
	}
	<-b.done
	return b.results
}

// Skipped returns the files that were never read, blocking until the
// batch finishes.
func (b *Batch) Skipped() []string {
	<-b.done
	return b.skipped
}

// stop aborts the batch without waiting for a consumer.
func (b *Batch) stop() {
	b.Cancel()
	b.abortOnce.Do(func() { close(b.abort) })
}

func (b *Batch) halted(ctx context.Context) bool {
	return b.Cancelled() || ctx.Err() != nil
}

// send delivers ev unless the batch was aborted.
func (b *Batch) send(ev core.Event) {
	select {
	case b.events <- ev:
	case <-b.abort:
	}
}
