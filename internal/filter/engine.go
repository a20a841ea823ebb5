// Package filter evaluates per-column predicates and an optional sort key
// against a table. Evaluation is pure: inputs are never modified and the
// result is always a new table.
package filter

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Engine evaluates specs and logs the clauses it has to ignore.
type Engine struct {
	logger *slog.Logger
}

// New creates an Engine that logs to logger, or to slog.Default when nil.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With("component", "filter")}
}

// Apply returns the rows of t that satisfy every predicate in spec, ordered
// by the spec's sort key when one is set. An empty spec yields a copy of t.
// Predicates and sort keys naming unknown columns are logged and ignored.
func Apply(t *core.Table, spec *Spec) *core.Table {
	return New(nil).Apply(t, spec)
}

// Mask returns the set of row indices that satisfy every predicate in spec.
func Mask(t *core.Table, spec *Spec) *roaring.Bitmap {
	return New(nil).Mask(t, spec)
}

// Count returns the number of rows that satisfy spec.
func Count(t *core.Table, spec *Spec) int {
	return New(nil).Count(t, spec)
}

// Apply is the package-level Apply using e's logger.
func (e *Engine) Apply(t *core.Table, spec *Spec) *core.Table {
	mask := e.Mask(t, spec)
	rows := make([]int, 0, mask.GetCardinality())
	it := mask.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}

	if key, ok := spec.Sort(); ok {
		e.sortRows(t, rows, key)
	}
	return t.Take(rows)
}

// Mask is the package-level Mask using e's logger.
func (e *Engine) Mask(t *core.Table, spec *Spec) *roaring.Bitmap {
	n := t.NumRows()
	result := roaring.New()
	result.AddRange(0, uint64(n))

	for _, c := range spec.Clauses() {
		col := t.Column(c.Column)
		if col == nil {
			e.unknownColumn(c.Column, "predicate")
			continue
		}

		matched := roaring.New()
		it := result.Iterator()
		for it.HasNext() {
			row := it.Next()
			if c.Predicate.match(col, int(row)) {
				matched.Add(row)
			}
		}
		result.And(matched)

		if result.IsEmpty() {
			break
		}
	}
	return result
}

// Count is the package-level Count using e's logger.
func (e *Engine) Count(t *core.Table, spec *Spec) int {
	return int(e.Mask(t, spec).GetCardinality())
}

// sortRows stably orders row indices by key. Absent values sort last in
// both directions.
func (e *Engine) sortRows(t *core.Table, rows []int, key SortKey) {
	col := t.Column(key.Column)
	if col == nil {
		e.unknownColumn(key.Column, "sort")
		return
	}

	var compare func(a, b int) int
	switch col.Kind {
	case core.KindDatetime:
		compare = func(a, b int) int { return col.Time[a].Compare(col.Time[b]) }
	case core.KindNumeric:
		compare = func(a, b int) int { return cmp.Compare(col.Num[a], col.Num[b]) }
	default:
		compare = func(a, b int) int { return strings.Compare(col.Text[a], col.Text[b]) }
	}

	slices.SortStableFunc(rows, func(a, b int) int {
		na, nb := col.IsNull(a), col.IsNull(b)
		switch {
		case na && nb:
			return 0
		case na:
			return 1
		case nb:
			return -1
		}
		if key.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

func (e *Engine) unknownColumn(name, use string) {
	e.logger.Warn("filter column ignored",
		"column", name,
		"use", use,
		"error", fmt.Errorf("%w: %q", core.ErrUnknownFilterColumn, name),
	)
}
