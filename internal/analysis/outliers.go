package analysis

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// OutlierMethod selects how outliers are detected.
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"
)

// Default thresholds per method.
const (
	DefaultIQRThreshold    = 1.5
	DefaultZScoreThreshold = 3.0
)

// ParseOutlierMethod resolves a method name case-insensitively.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch m := OutlierMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodIQR, MethodZScore:
		return m, nil
	}
	return "", fmt.Errorf("unknown outlier method %q", s)
}

// Bounds are the inclusive limits outside of which a value is an outlier.
type Bounds struct {
	Lower float64
	Upper float64
}

// RemoveOutliers returns a table in which outliers of the named numeric
// column are replaced by the absent marker. A threshold ≤ 0 selects the
// method's default. Unknown or non-numeric columns return t unchanged.
func RemoveOutliers(t *core.Table, column string, method OutlierMethod, threshold float64) (*core.Table, error) {
	col := t.Column(column)
	if col == nil || col.Kind != core.KindNumeric {
		return t, nil
	}

	rows, _, err := detect(col.Num, method, threshold)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(col.Num)
	for _, r := range rows {
		out[r] = math.NaN()
	}
	return t.WithColumn(core.NewNumericColumn(column, out))
}

// DetectAnomalies returns the rows of column holding outliers and the bounds
// used to decide. For the z-score method the bounds are mean ± threshold·σ.
func DetectAnomalies(t *core.Table, column string, method OutlierMethod, threshold float64) ([]int, Bounds, error) {
	col := t.Column(column)
	if col == nil {
		return nil, Bounds{}, fmt.Errorf("%w: %q", core.ErrUnknownColumn, column)
	}
	if !col.Kind.IsNumeric() {
		return nil, Bounds{}, fmt.Errorf("column %q is %s, not numeric", column, col.Kind)
	}
	return detect(col.Num, method, threshold)
}

func detect(values []float64, method OutlierMethod, threshold float64) ([]int, Bounds, error) {
	vals := present(values)
	if len(vals) == 0 {
		return nil, Bounds{}, nil
	}

	var b Bounds
	switch method {
	case MethodIQR:
		if threshold <= 0 {
			threshold = DefaultIQRThreshold
		}
		sorted := slices.Clone(vals)
		slices.Sort(sorted)
		q1, q3 := percentile(sorted, 0.25), percentile(sorted, 0.75)
		iqr := q3 - q1
		b = Bounds{Lower: q1 - threshold*iqr, Upper: q3 + threshold*iqr}
	case MethodZScore:
		if threshold <= 0 {
			threshold = DefaultZScoreThreshold
		}
		m := mean(vals)
		var ss float64
		for _, v := range vals {
			ss += (v - m) * (v - m)
		}
		sd := math.Sqrt(ss / float64(len(vals)))
		if sd == 0 {
			return nil, Bounds{Lower: m, Upper: m}, nil
		}
		b = Bounds{Lower: m - threshold*sd, Upper: m + threshold*sd}
	default:
		return nil, Bounds{}, fmt.Errorf("unknown outlier method %q", method)
	}

	var rows []int
	for i, v := range values {
		if !math.IsNaN(v) && (v < b.Lower || v > b.Upper) {
			rows = append(rows, i)
		}
	}
	return rows, b, nil
}
