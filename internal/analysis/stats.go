// Package analysis computes descriptive statistics over typed tables and
// derives new columns from existing ones. All functions are pure.
package analysis

import (
	"math"
	"slices"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Stats summarizes the present values of a numeric column. Fields that need
// at least two values (Std, Q1, Q3, IQR, Range, Skew, Kurtosis) are NaN
// otherwise.
type Stats struct {
	Count   int
	Missing int

	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64 // Sample standard deviation

	Q1       float64
	Q3       float64
	IQR      float64
	Range    float64
	Skew     float64 // Biased sample skewness
	Kurtosis float64 // Biased excess kurtosis
}

// Describe returns statistics for a numeric or datetime column. ok is false
// for other kinds and for columns with no present values.
func Describe(col *core.Column) (Stats, bool) {
	if col == nil || !col.Kind.IsNumeric() {
		return Stats{}, false
	}
	values := present(col.Num)
	if len(values) == 0 {
		return Stats{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	nan := math.NaN()
	s := Stats{
		Count:    len(values),
		Missing:  len(col.Num) - len(values),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Mean:     mean(values),
		Median:   percentile(sorted, 0.5),
		Std:      nan,
		Q1:       nan,
		Q3:       nan,
		IQR:      nan,
		Range:    nan,
		Skew:     nan,
		Kurtosis: nan,
	}
	if s.Count < 2 {
		return s, true
	}

	var m2, m3, m4 float64
	for _, v := range values {
		d := v - s.Mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(s.Count)
	s.Std = math.Sqrt(m2 / (n - 1))
	s.Q1 = percentile(sorted, 0.25)
	s.Q3 = percentile(sorted, 0.75)
	s.IQR = s.Q3 - s.Q1
	s.Range = s.Max - s.Min

	m2, m3, m4 = m2/n, m3/n, m4/n
	if m2 > 0 {
		s.Skew = m3 / math.Pow(m2, 1.5)
		s.Kurtosis = m4/(m2*m2) - 3
	}
	return s, true
}

// DescribeTable returns statistics for every describable column.
func DescribeTable(t *core.Table) map[string]Stats {
	out := make(map[string]Stats)
	for _, col := range t.Columns() {
		if s, ok := Describe(col); ok {
			out[col.Name] = s
		}
	}
	return out
}

// NumericColumns returns the names of numeric and datetime columns in order.
func NumericColumns(t *core.Table) []string {
	var names []string
	for _, col := range t.Columns() {
		if col.Kind.IsNumeric() {
			names = append(names, col.Name)
		}
	}
	return names
}

// Correlation returns the Pearson correlation of two columns over the rows
// where both are present. ok is false when either column is missing or not
// numeric, or fewer than two rows pair up, or a column is constant.
func Correlation(t *core.Table, a, b string) (float64, bool) {
	ca, cb := t.Column(a), t.Column(b)
	if ca == nil || cb == nil || !ca.Kind.IsNumeric() || !cb.Kind.IsNumeric() {
		return 0, false
	}

	var xs, ys []float64
	for i := range ca.Num {
		x, y := ca.Num[i], cb.Num[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return 0, false
	}

	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile interpolates linearly between the closest ranks of a sorted
// slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
