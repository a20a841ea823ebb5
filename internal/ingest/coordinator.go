// Package ingest loads batches of CSV files in the background.
//
// A Coordinator turns a selection of paths and glob patterns into a Batch.
// Each batch runs on its own goroutine and reports progress, per-file
// errors and a final Done event, in file order, on a channel. The worker
// never touches the coordinator's cache: the consumer drains the batch and
// calls Commit, so cache mutation happens on the consumer's side only.
//
// Typical usage:
//
//	c := ingest.NewFromConfig(cfg, logger)
//	defer c.Close()
//
//	batch, err := c.Load(ctx, []string{"data/**/*.csv"})
//	if err != nil {
//	    return err
//	}
//	for ev := range batch.Events() {
//	    // render ev
//	}
//	if err := c.Commit(batch); err != nil {
//	    return err
//	}
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csvcore/internal/core"
	"github.com/JonMunkholm/csvcore/internal/logging"
	"github.com/JonMunkholm/csvcore/internal/reader"
)

// TableReader reads one file into an untyped table.
type TableReader interface {
	Load(ctx context.Context, path string) (*reader.Result, error)
}

// TypeInferencer assigns column kinds to an untyped table.
type TypeInferencer interface {
	Infer(t *core.Table) *core.Table
}

// Coordinator owns the path → result cache and the current selection.
type Coordinator struct {
	reader     TableReader
	inferencer TypeInferencer

	limiter     *Limiter
	workers     int
	eventBuffer int
	verify      bool
	key         []byte
	logger      *slog.Logger

	mu        sync.Mutex
	cache     map[string]*core.LoadResult
	selection []string
	batches   map[string]*Batch
	closed    bool
}

// New creates a Coordinator that reads with r and classifies with inf.
func New(r TableReader, inf TypeInferencer, opts ...Option) *Coordinator {
	c := &Coordinator{
		reader:     r,
		inferencer: inf,
		workers:    1,
		key:        DefaultFingerprintKey,
		logger:     slog.Default(),
		cache:      make(map[string]*core.LoadResult),
		batches:    make(map[string]*Batch),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = NewLimiter(DefaultMaxConcurrent, DefaultMaxWaitTime)
	}
	c.logger = c.logger.With("component", "ingest")
	return c
}

// Load replaces the selection with the expanded patterns and starts a
// batch that reads every selected file. Cached results for paths that are
// no longer selected are evicted; paths still cached are not re-read.
func (c *Coordinator) Load(ctx context.Context, patterns []string) (*Batch, error) {
	paths, err := ExpandPaths(patterns)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, core.ErrCoordinatorDone
	}

	selected := make(map[string]bool, len(paths))
	for _, p := range paths {
		selected[p] = true
	}
	for p := range c.cache {
		if !selected[p] {
			delete(c.cache, p)
		}
	}
	c.selection = paths

	cached := make(map[string]*core.LoadResult)
	for _, p := range paths {
		if r, ok := c.cache[p]; ok {
			cached[p] = r
		}
	}

	b := newBatch(uuid.NewString(), paths, cached, c.eventBuffer)
	c.batches[b.id] = b
	c.mu.Unlock()

	go c.run(logging.WithBatch(ctx, b.id), b)
	return b, nil
}

// LoadSync loads patterns, waits for the batch and commits it. When the
// batch is cancelled before every file was read, the results obtained so
// far are returned with core.ErrBatchCancelled.
func (c *Coordinator) LoadSync(ctx context.Context, patterns []string) ([]*core.LoadResult, error) {
	b, err := c.Load(ctx, patterns)
	if err != nil {
		return nil, err
	}

	results := b.Wait()
	if err := c.Commit(b); err != nil {
		return results, err
	}
	if len(b.Skipped()) > 0 {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("%w: %w", core.ErrBatchCancelled, err)
		}
		return results, core.ErrBatchCancelled
	}
	return results, nil
}

// Commit waits for b to finish and merges its results into the cache.
// Successful results for paths that are still selected replace the cached
// entry; failed paths are evicted.
func (c *Coordinator) Commit(b *Batch) error {
	b.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.batches, b.id)
	if c.closed {
		return core.ErrCoordinatorDone
	}

	selected := make(map[string]bool, len(c.selection))
	for _, p := range c.selection {
		selected[p] = true
	}

	merged := 0
	for _, r := range b.results {
		if !selected[r.Path] {
			continue
		}
		if r.OK() {
			c.cache[r.Path] = r
			merged++
		} else {
			delete(c.cache, r.Path)
		}
	}
	c.logger.Debug("batch committed", "batch_id", b.id, "merged", merged, "cached", len(c.cache))
	return nil
}

// Evict drops the cached result for path and reports whether there was one.
func (c *Coordinator) Evict(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.cache[path]
	delete(c.cache, path)
	return ok
}

// Results returns the cached results in selection order.
func (c *Coordinator) Results() []*core.LoadResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*core.LoadResult, 0, len(c.cache))
	for _, p := range c.selection {
		if r, ok := c.cache[p]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Table returns the cached table for path.
func (c *Coordinator) Table(path string) (*core.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.cache[path]
	if !ok {
		return nil, false
	}
	return r.Table, true
}

// Selection returns the paths selected by the last Load.
func (c *Coordinator) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.selection)
}

// Limiter returns the parse limiter used by this coordinator.
func (c *Coordinator) Limiter() *Limiter {
	return c.limiter
}

// Close stops every running batch from emitting further events and drops
// the cache. Subsequent Loads fail with core.ErrCoordinatorDone.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	for _, b := range c.batches {
		b.stop()
	}
	clear(c.cache)
	c.selection = nil
	return nil
}

// run reads the batch's files and emits events in file order. Files are
// read by up to c.workers goroutines; a launcher stops handing out files
// once the batch is cancelled, so files in flight finish and the rest are
// reported as skipped.
func (c *Coordinator) run(ctx context.Context, b *Batch) {
	logger := logging.WithContext(ctx, c.logger)
	total := len(b.paths)
	logger.Info("batch started", "files", total, "cached", len(b.cached), "limiter", c.limiter.Status())

	results := make([]*core.LoadResult, total)
	finished := make([]chan struct{}, total)
	for i := range finished {
		finished[i] = make(chan struct{})
	}

	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	started := make(chan int, total)
	go func() {
		defer close(started)
		for i, path := range b.paths {
			if b.halted(ctx) {
				return
			}
			g.Go(func() error {
				defer close(finished[i])
				if b.halted(ctx) {
					return nil
				}
				results[i] = c.loadOne(ctx, path, b.cached[path])
				return nil
			})
			started <- i
		}
	}()

	for i := range started {
		<-finished[i]
		res := results[i]
		if res == nil {
			continue
		}

		b.send(core.Event{
			Kind:    core.EventProgress,
			BatchID: b.id,
			Current: i + 1,
			Total:   total,
			File:    res.Path,
		})
		if res.Err != nil {
			uerr := core.NewUserError(res.Err)
			msg := core.FormatUserError(uerr)
			if !core.IsUserFacing(uerr) {
				msg = fmt.Sprintf("%s: %v", msg, res.Err)
			}
			b.send(core.Event{
				Kind:    core.EventError,
				BatchID: b.id,
				File:    res.Path,
				Message: msg,
				Err:     uerr,
			})
		}
	}
	_ = g.Wait()

	var done []*core.LoadResult
	var skipped []string
	failed := 0
	for i, r := range results {
		switch {
		case r == nil:
			skipped = append(skipped, b.paths[i])
		case r.Err != nil:
			failed++
			done = append(done, r)
		default:
			done = append(done, r)
		}
	}

	b.results = done
	b.skipped = skipped
	b.cancelled = len(skipped) > 0

	b.send(core.Event{
		Kind:      core.EventDone,
		BatchID:   b.id,
		Total:     total,
		Current:   len(done),
		Results:   done,
		Skipped:   skipped,
		Cancelled: b.cancelled,
	})
	close(b.events)
	close(b.done)

	if b.cancelled {
		logger.Warn("batch cancelled", "loaded", len(done), "skipped", len(skipped))
		return
	}
	logger.Info("batch finished", "loaded", len(done)-failed, "failed", failed)
}

// loadOne reads and classifies a single file. A cached result is reused
// unless content verification is enabled and the fingerprint changed.
func (c *Coordinator) loadOne(ctx context.Context, path string, cached *core.LoadResult) *core.LoadResult {
	start := time.Now()
	logger := logging.WithContext(ctx, c.logger).With("file", path)

	var fp string
	if c.verify {
		var err error
		if fp, err = Fingerprint(path, c.key); err != nil {
			logger.Warn("fingerprint failed", "error", err)
		}
	}

	if cached != nil {
		if !c.verify || (fp != "" && fp == cached.Fingerprint) {
			hit := *cached
			hit.Cached = true
			logger.Debug("using cached table")
			return &hit
		}
		logger.Info("content changed, reading again")
	}

	if !c.limiter.TryAcquire() {
		logger.Debug("waiting for parse slot", "limiter", c.limiter.Status())
		if err := c.limiter.Acquire(ctx); err != nil {
			logger.Error("no parse slot", "error", err)
			return &core.LoadResult{Path: path, Err: err, Duration: time.Since(start)}
		}
	}
	defer c.limiter.Release()

	res, err := c.reader.Load(ctx, path)
	if err != nil {
		logger.Error("load failed", "error", err)
		return &core.LoadResult{Path: path, Err: err, Duration: time.Since(start)}
	}

	tbl := c.inferencer.Infer(res.Table)
	out := &core.LoadResult{
		Path:         path,
		Table:        tbl,
		Fingerprint:  fp,
		Encoding:     res.Encoding,
		Delimiter:    res.Delimiter,
		HeaderRow:    res.HeaderRow,
		SkippedLines: res.SkippedLines,
		Warnings:     res.Warnings,
		Duration:     time.Since(start),
	}
	logger.Debug("file loaded", "rows", tbl.NumRows(), "columns", tbl.NumCols(), "duration", out.Duration)
	return out
}
