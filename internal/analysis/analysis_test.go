package analysis

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvcore/internal/core"
)

var nan = math.NaN()

func TestDescribe(t *testing.T) {
	col := core.NewNumericColumn("v", []float64{4, nan, 1, 3, 2})

	s, ok := Describe(col)
	require.True(t, ok)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, 1.2909944, s.Std, 1e-6)
	assert.Equal(t, 1.75, s.Q1)
	assert.Equal(t, 3.25, s.Q3)
	assert.Equal(t, 1.5, s.IQR)
	assert.Equal(t, 3.0, s.Range)
	assert.InDelta(t, 0, s.Skew, 1e-12)
	assert.InDelta(t, -1.36, s.Kurtosis, 1e-9)
}

func TestDescribe_SingleValueAndNonNumeric(t *testing.T) {
	s, ok := Describe(core.NewNumericColumn("v", []float64{7}))
	require.True(t, ok)
	assert.Equal(t, 7.0, s.Median)
	assert.True(t, math.IsNaN(s.Std))

	_, ok = Describe(core.NewTextColumn("t", []string{"a"}))
	assert.False(t, ok)

	_, ok = Describe(core.NewNumericColumn("empty", []float64{nan}))
	assert.False(t, ok)
}

func TestDescribeTableAndNumericColumns(t *testing.T) {
	tbl := core.MustTable(
		core.NewTextColumn("name", []string{"a", "b"}),
		core.NewNumericColumn("x", []float64{1, 2}),
		core.NewDatetimeColumn("ts", []time.Time{time.Unix(0, 0).UTC(), time.Unix(60, 0).UTC()}),
	)

	assert.Equal(t, []string{"x", "ts"}, NumericColumns(tbl))

	stats := DescribeTable(tbl)
	require.Len(t, stats, 2)
	assert.Equal(t, 30.0, stats["ts"].Mean)
}

func TestCorrelation(t *testing.T) {
	tbl := core.MustTable(
		core.NewNumericColumn("a", []float64{1, 2, 3, nan}),
		core.NewNumericColumn("b", []float64{2, 4, 6, 8}),
		core.NewNumericColumn("c", []float64{3, 2, 1, 0}),
		core.NewNumericColumn("flat", []float64{1, 1, 1, 1}),
	)

	r, ok := Correlation(tbl, "a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-12)

	r, ok = Correlation(tbl, "a", "c")
	require.True(t, ok)
	assert.InDelta(t, -1, r, 1e-12)

	_, ok = Correlation(tbl, "a", "flat")
	assert.False(t, ok)
	_, ok = Correlation(tbl, "a", "missing")
	assert.False(t, ok)
}

func TestRemoveOutliers(t *testing.T) {
	values := []float64{10, 11, 12, 11, 10, 12, 11, 100}

	tests := []struct {
		name      string
		method    OutlierMethod
		threshold float64
		wantNaN   []int
	}{
		{"iqr default", MethodIQR, 0, []int{7}},
		{"zscore tight", MethodZScore, 2, []int{7}},
		{"zscore default keeps all", MethodZScore, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := core.MustTable(core.NewNumericColumn("v", append([]float64(nil), values...)))
			out, err := RemoveOutliers(tbl, "v", tt.method, tt.threshold)
			require.NoError(t, err)

			var gotNaN []int
			for i, v := range out.Column("v").Num {
				if math.IsNaN(v) {
					gotNaN = append(gotNaN, i)
				}
			}
			assert.Equal(t, tt.wantNaN, gotNaN)
			assert.Equal(t, 100.0, tbl.Column("v").Num[7])
		})
	}
}

func TestRemoveOutliers_Errors(t *testing.T) {
	tbl := core.MustTable(core.NewNumericColumn("v", []float64{1, 2}))

	_, err := RemoveOutliers(tbl, "v", "median", 1)
	assert.Error(t, err)

	out, err := RemoveOutliers(tbl, "missing", MethodIQR, 0)
	require.NoError(t, err)
	assert.Same(t, tbl, out)
}

func TestDetectAnomalies(t *testing.T) {
	tbl := core.MustTable(core.NewNumericColumn("v", []float64{1, 2, 3, 4, 50}))

	rows, b, err := DetectAnomalies(tbl, "v", MethodIQR, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, rows)
	assert.Equal(t, Bounds{Lower: -1, Upper: 7}, b)

	_, _, err = DetectAnomalies(tbl, "nope", MethodIQR, 1.5)
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestParseOutlierMethod(t *testing.T) {
	m, err := ParseOutlierMethod(" IQR ")
	require.NoError(t, err)
	assert.Equal(t, MethodIQR, m)

	_, err = ParseOutlierMethod("mad")
	assert.Error(t, err)
}

func TestDerive(t *testing.T) {
	tbl := core.MustTable(
		core.NewNumericColumn("a", []float64{6, 4, nan, 1}),
		core.NewNumericColumn("b", []float64{2, 0, 1, 4}),
		core.NewTextColumn("c", []string{"1", "1", "1", "x"}),
	)

	tests := []struct {
		op   Operation
		cols []string
		want []float64
	}{
		{OpAdd, []string{"a", "b", "c"}, []float64{9, 5, nan, nan}},
		{OpSubtract, []string{"a", "b"}, []float64{4, 4, nan, -3}},
		{OpMultiply, []string{"a", "b"}, []float64{12, 0, nan, 4}},
		{OpDivide, []string{"a", "b"}, []float64{3, nan, nan, 0.25}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			out, err := Derive(tbl, "d", tt.op, tt.cols...)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c", "d"}, out.Names())

			got := out.Column("d").Num
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				if math.IsNaN(tt.want[i]) {
					assert.True(t, math.IsNaN(got[i]), "row %d = %v", i, got[i])
				} else {
					assert.Equal(t, tt.want[i], got[i], "row %d", i)
				}
			}
		})
	}

	_, err := Derive(tbl, "d", OpAdd, "a", "zzz")
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
	_, err = Derive(tbl, "d", "pow", "a")
	assert.Error(t, err)
	_, err = Derive(tbl, "d", OpAdd)
	assert.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	tbl := core.MustTable(core.NewNumericColumn("v", []float64{1, 2, 3, 4, 5}))
	out, err := MovingAverage(tbl, "v", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 3, 4, 4.5}, out.Column("v").Num)

	short, err := MovingAverage(tbl, "v", 5)
	require.NoError(t, err)
	assert.Same(t, tbl, short)
}

func TestSafeSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data.csv", "data.csv"},
		{`a/b\c*d?e:f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{strings.Repeat("é", 35), strings.Repeat("é", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeSheetName(tt.in))
	}
}
