package analysis

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Operation combines column values row by row.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// Derive returns a table with a new numeric column name computed by folding
// op over the given columns from left to right. Absent inputs yield absent
// outputs and division by zero yields the absent marker.
// Columns that are not numeric are coerced per cell.
func Derive(t *core.Table, name string, op Operation, columns ...string) (*core.Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("derive %q: no input columns", name)
	}

	inputs := make([]*core.Column, len(columns))
	for i, c := range columns {
		inputs[i] = t.Column(c)
		if inputs[i] == nil {
			return nil, fmt.Errorf("derive %q: %w: %q", name, core.ErrUnknownColumn, c)
		}
	}

	var apply func(a, b float64) float64
	switch op {
	case OpAdd:
		apply = func(a, b float64) float64 { return a + b }
	case OpSubtract:
		apply = func(a, b float64) float64 { return a - b }
	case OpMultiply:
		apply = func(a, b float64) float64 { return a * b }
	case OpDivide:
		apply = func(a, b float64) float64 {
			if b == 0 {
				return math.NaN()
			}
			return a / b
		}
	default:
		return nil, fmt.Errorf("derive %q: unknown operation %q", name, op)
	}

	out := make([]float64, t.NumRows())
	for r := range out {
		acc, ok := inputs[0].FloatAt(r)
		if !ok {
			out[r] = math.NaN()
			continue
		}
		for _, col := range inputs[1:] {
			v, ok := col.FloatAt(r)
			if !ok {
				acc = math.NaN()
				break
			}
			acc = apply(acc, v)
		}
		out[r] = acc
	}
	return t.WithColumn(core.NewNumericColumn(name, out))
}

// MovingAverage returns a table in which the named numeric column is
// replaced by its centered moving average over window rows. Absent values
// are skipped within each window; a window with no present value stays
// absent. Columns with no more present values than window are unchanged.
func MovingAverage(t *core.Table, column string, window int) (*core.Table, error) {
	col := t.Column(column)
	if col == nil || col.Kind != core.KindNumeric || window < 1 {
		return t, nil
	}
	if len(present(col.Num)) <= window {
		return t, nil
	}

	n := len(col.Num)
	before := window / 2
	after := window - before - 1
	out := make([]float64, n)
	for i := range out {
		var sum float64
		var count int
		for j := max(0, i-before); j <= min(n-1, i+after); j++ {
			if v := col.Num[j]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return t.WithColumn(core.NewNumericColumn(column, out))
}

var invalidSheetChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// maxSheetName is the longest worksheet name spreadsheet programs accept.
const maxSheetName = 31

// SafeSheetName turns a file or series name into a valid worksheet name.
func SafeSheetName(name string) string {
	name = invalidSheetChars.ReplaceAllString(name, "_")
	if utf8.RuneCountInString(name) <= maxSheetName {
		return name
	}
	return string([]rune(name)[:maxSheetName])
}
