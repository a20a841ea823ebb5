// Package infer classifies untyped text columns as datetime, numeric,
// categorical or text and converts their storage accordingly.
package infer

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Defaults used when Options fields are zero.
const (
	DefaultSampleSize             = 20
	DefaultDatetimeThreshold      = 0.5
	DefaultCategoricalMaxDistinct = 50
)

// Options tunes classification.
type Options struct {
	SampleSize             int     // Non-empty values examined for datetime detection
	DatetimeThreshold      float64 // Fraction of the sample that must match a pattern
	CategoricalMaxDistinct int     // Upper bound on distinct values for Categorical
	LenientNumbers         bool    // Accept currency, thousands separators, (negatives)
	Logger                 *slog.Logger
}

// DefaultOptions returns the standard classification settings.
func DefaultOptions() Options {
	return Options{
		SampleSize:             DefaultSampleSize,
		DatetimeThreshold:      DefaultDatetimeThreshold,
		CategoricalMaxDistinct: DefaultCategoricalMaxDistinct,
	}
}

// Inferencer assigns a Kind to each column independently.
type Inferencer struct {
	opts   Options
	parse  func(string) (float64, bool)
	logger *slog.Logger
}

// New creates an Inferencer. Zero-valued options fall back to defaults.
func New(opts Options) *Inferencer {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.DatetimeThreshold <= 0 || opts.DatetimeThreshold > 1 {
		opts.DatetimeThreshold = DefaultDatetimeThreshold
	}
	if opts.CategoricalMaxDistinct <= 0 {
		opts.CategoricalMaxDistinct = DefaultCategoricalMaxDistinct
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parse := core.ParseNumber
	if opts.LenientNumbers {
		parse = core.ParseNumberLenient
	}
	return &Inferencer{opts: opts, parse: parse, logger: logger.With("component", "infer")}
}

// Infer returns a new table with every column classified. The input table
// is not modified. Columns that already carry a type are passed through.
func (inf *Inferencer) Infer(t *core.Table) *core.Table {
	cols := t.Columns()
	out := make([]*core.Column, len(cols))
	for i, col := range cols {
		out[i] = inf.InferColumn(col)
	}
	return core.MustTable(out...)
}

// InferColumn classifies one column and returns it in typed form.
// Already typed columns are returned as is.
func (inf *Inferencer) InferColumn(col *core.Column) *core.Column {
	if col.Kind != core.KindText {
		return col
	}

	if p := detectPattern(sample(col.Text, inf.opts.SampleSize), inf.opts.DatetimeThreshold); p != nil {
		times := make([]time.Time, len(col.Text))
		invalid := 0
		for i, v := range col.Text {
			times[i] = p.parse(v)
			if times[i].IsZero() && strings.TrimSpace(v) != "" {
				invalid++
			}
		}
		inf.logger.Debug("column detected as datetime", "column", col.Name, "pattern", p.name, "unparsed", invalid)
		return core.NewDatetimeColumn(col.Name, times)
	}

	if nums, converted := inf.coerce(col.Text); converted > 0 {
		inf.logger.Debug("column converted to numeric",
			"column", col.Name,
			"converted", converted,
			"absent", len(nums)-converted,
		)
		return core.NewNumericColumn(col.Name, nums)
	}

	kind := inf.textKind(col.Text)
	return &core.Column{Name: col.Name, Kind: kind, Text: col.Text}
}

// Classify returns the Kind a column holding values would receive.
func (inf *Inferencer) Classify(values []string) core.Kind {
	if detectPattern(sample(values, inf.opts.SampleSize), inf.opts.DatetimeThreshold) != nil {
		return core.KindDatetime
	}
	for _, v := range values {
		if _, ok := inf.parse(v); ok {
			return core.KindNumeric
		}
	}
	return inf.textKind(values)
}

// ClassifySample classifies values with the default options.
func ClassifySample(values []string) core.Kind {
	return New(Options{Logger: discard}).Classify(values)
}

// coerce converts every cell to a float. Cells that do not parse become NaN;
// conversion never aborts part way through a column.
func (inf *Inferencer) coerce(values []string) ([]float64, int) {
	nums := make([]float64, len(values))
	converted := 0
	for i, v := range values {
		f, ok := inf.parse(v)
		if !ok {
			nums[i] = math.NaN()
			continue
		}
		nums[i] = f
		converted++
	}
	return nums, converted
}

// textKind separates low-cardinality columns from free text.
func (inf *Inferencer) textKind(values []string) core.Kind {
	distinct := make(map[string]struct{})
	nonEmpty := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		distinct[v] = struct{}{}
		if len(distinct) > inf.opts.CategoricalMaxDistinct {
			return core.KindText
		}
	}
	if nonEmpty == 0 || len(distinct)*2 > nonEmpty {
		return core.KindText
	}
	return core.KindCategorical
}

// sample returns up to n trimmed non-empty values from the start of values.
func sample(values []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		if len(out) == n {
			break
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var discard = slog.New(slog.DiscardHandler)
