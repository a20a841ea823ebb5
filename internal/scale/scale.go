// Package scale holds pure numeric transforms applied to table columns
// before charting: log-safe clamping and min-max normalization.
package scale

import (
	"log/slog"
	"math"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// DefaultEpsilon replaces non-positive values when a column has no positive
// value to derive a floor from.
const DefaultEpsilon = 0.001

// Scaler applies the transforms and logs the columns it skips.
type Scaler struct {
	logger *slog.Logger
}

// New creates a Scaler that logs to logger, or to slog.Default when nil.
func New(logger *slog.Logger) *Scaler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scaler{logger: logger.With("component", "scale")}
}

// ClampForLog returns a table in which every value ≤ 0 in the named columns
// is replaced by a tenth of the column's smallest positive value, or by
// DefaultEpsilon when there is none. Absent values pass through.
func ClampForLog(t *core.Table, columns []string) (*core.Table, error) {
	return New(nil).ClampForLog(t, columns)
}

// Normalize returns a table in which the named columns are rescaled to
// [0,1] by (v-min)/(max-min). Columns with max == min are left unchanged.
func Normalize(t *core.Table, columns []string) (*core.Table, error) {
	return New(nil).Normalize(t, columns)
}

// ClampForLog is the package-level ClampForLog using s's logger.
func (s *Scaler) ClampForLog(t *core.Table, columns []string) (*core.Table, error) {
	return s.transform(t, columns, "clamp_for_log", clampForLog)
}

// Normalize is the package-level Normalize using s's logger.
func (s *Scaler) Normalize(t *core.Table, columns []string) (*core.Table, error) {
	return s.transform(t, columns, "normalize", normalize)
}

func (s *Scaler) transform(t *core.Table, columns []string, op string, fn func([]float64) []float64) (*core.Table, error) {
	out := t
	for _, name := range columns {
		col := t.Column(name)
		if col == nil {
			s.logger.Warn("scale column not found", "op", op, "column", name)
			continue
		}
		if !col.Kind.IsNumeric() {
			s.logger.Debug("scale skipped non-numeric column", "op", op, "column", name, "kind", col.Kind)
			continue
		}

		next, err := out.WithColumn(core.NewNumericColumn(name, fn(col.Num)))
		if err != nil {
			return nil, err
		}
		out = next
	}
	if out == t {
		return t.Clone(), nil
	}
	return out, nil
}

func clampForLog(values []float64) []float64 {
	minPositive := math.Inf(1)
	for _, v := range values {
		if v > 0 && v < minPositive {
			minPositive = v
		}
	}
	epsilon := DefaultEpsilon
	if !math.IsInf(minPositive, 1) {
		epsilon = minPositive / 10
		if epsilon <= 0 {
			epsilon = minPositive
		}
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && v <= 0 {
			v = epsilon
		}
		out[i] = v
	}
	return out
}

func normalize(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := append([]float64(nil), values...)
	if !(hi > lo) || math.IsInf(hi-lo, 0) {
		return out
	}
	span := hi - lo
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}
