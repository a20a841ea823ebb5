package filter

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvcore/internal/core"
)

func sample() *core.Table {
	nan := math.NaN()
	return core.MustTable(
		core.NewTextColumn("site", []string{"north", "south", "", "north-east", "west"}),
		core.NewNumericColumn("temp", []float64{1, 2, 3, 4, 5}),
		core.NewNumericColumn("rain", []float64{0.5, nan, 1.5, nan, 0}),
		core.NewTextColumn("code", []string{"007", "7", "x", "1.0", ""}),
	)
}

func mustSpec(t *testing.T, clauses ...Clause) *Spec {
	t.Helper()
	s := NewSpec()
	for _, c := range clauses {
		require.NoError(t, s.Set(c.Column, c.Predicate))
	}
	return s
}

func textValues(t *core.Table, name string) []string {
	col := t.Column(name)
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.StringAt(i)
	}
	return out
}

func TestApply_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		column string
		pred   Predicate
		want   []string // resulting temp values
	}{
		{"equals text", "site", Equals("north"), []string{"1"}},
		{"equals numeric on numeric column", "temp", Equals("3.0"), []string{"3"}},
		{"equals numeric on text column", "code", Equals("7"), []string{"1", "2"}},
		{"not equals", "site", NotEquals("north"), []string{"2", "3", "4", "5"}},
		{"contains", "site", Contains("north"), []string{"1", "4"}},
		{"not contains", "site", NotContains("north"), []string{"2", "3", "5"}},
		{"starts with", "site", StartsWith("so"), []string{"2"}},
		{"ends with", "site", EndsWith("st"), []string{"4", "5"}},
		{"greater than", "temp", GreaterThan(3), []string{"4", "5"}},
		{"less than", "temp", LessThan(3), []string{"1", "2"}},
		{"greater or equal", "temp", GreaterOrEqual(3), []string{"3", "4", "5"}},
		{"less or equal", "temp", LessOrEqual(3), []string{"1", "2", "3"}},
		{"between inclusive", "temp", Between(2, 4), []string{"2", "3", "4"}},
		{"numeric skips absent", "rain", GreaterOrEqual(0), []string{"1", "3", "5"}},
		{"numeric on text column skips non-numbers", "code", LessThan(5), []string{"4"}},
		{"in list", "site", InList("west", "south", "nowhere"), []string{"2", "5"}},
		{"in list numeric", "temp", InList("1", "5.0"), []string{"1", "5"}},
		{"not in list", "site", NotInList("west", "south"), []string{"1", "3", "4"}},
		{"is null", "rain", IsNull(), []string{"2", "4"}},
		{"is not null", "rain", IsNotNull(), []string{"1", "3", "5"}},
		{"is null on text", "site", IsNull(), []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(sample(), mustSpec(t, Clause{tt.column, tt.pred}))
			assert.Equal(t, tt.want, textValues(out, "temp"))
		})
	}
}

func TestApply_BetweenExample(t *testing.T) {
	tbl := core.MustTable(core.NewNumericColumn("v", []float64{1, 2, 3, 4, 5}))
	out := Apply(tbl, mustSpec(t, Clause{"v", Between(2, 4)}))
	assert.Equal(t, []float64{2, 3, 4}, out.Column("v").Num)
}

func TestApply_AndAcrossColumns(t *testing.T) {
	spec := mustSpec(t,
		Clause{"site", Contains("north")},
		Clause{"temp", GreaterThan(2)},
	)
	out := Apply(sample(), spec)
	assert.Equal(t, []string{"north-east"}, textValues(out, "site"))
	assert.Equal(t, 1, Count(sample(), spec))
}

func TestApply_IdentityAndIdempotence(t *testing.T) {
	in := sample()

	out := Apply(in, NewSpec())
	assert.Equal(t, in.NumRows(), out.NumRows())
	for _, name := range in.Names() {
		assert.Equal(t, textValues(in, name), textValues(out, name))
	}

	spec := mustSpec(t, Clause{"temp", LessOrEqual(4)}, Clause{"rain", IsNotNull()})
	spec.SetSort("temp", false)
	once := Apply(in, spec)
	twice := Apply(once, spec)
	assert.Equal(t, textValues(once, "temp"), textValues(twice, "temp"))
	assert.Equal(t, []string{"3", "1"}, textValues(once, "temp"))
}

func TestApply_UnknownColumnsIgnored(t *testing.T) {
	spec := mustSpec(t, Clause{"missing", Equals("x")}, Clause{"temp", GreaterThan(4)})
	spec.SetSort("also-missing", true)

	out := Apply(sample(), spec)
	assert.Equal(t, []string{"5"}, textValues(out, "temp"))
}

func TestEngine_LogsIgnoredColumns(t *testing.T) {
	var buf bytes.Buffer
	e := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	spec := mustSpec(t, Clause{"missing", Equals("x")})
	spec.SetSort("also-missing", true)

	out := e.Apply(sample(), spec)
	assert.Equal(t, 5, out.NumRows())
	assert.Equal(t, 5, e.Count(sample(), spec))

	logs := buf.String()
	assert.Contains(t, logs, `"component":"filter"`)
	assert.Contains(t, logs, `"column":"missing","use":"predicate"`)
	assert.Contains(t, logs, `"column":"also-missing","use":"sort"`)
	assert.Contains(t, logs, "unknown filter column")
}

func TestApply_StableSort(t *testing.T) {
	tbl := core.MustTable(
		core.NewTextColumn("k", []string{"Q", "A", "Q"}),
		core.NewNumericColumn("v", []float64{1, 2, 3}),
	)
	spec := NewSpec()
	spec.SetSort("k", true)

	out := Apply(tbl, spec)
	assert.Equal(t, []string{"A", "Q", "Q"}, out.Column("k").Text)
	assert.Equal(t, []float64{2, 1, 3}, out.Column("v").Num)
}

func TestApply_SortAbsentLast(t *testing.T) {
	nan := math.NaN()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tbl := core.MustTable(
		core.NewNumericColumn("n", []float64{2, nan, 1, 3}),
		core.NewTextColumn("s", []string{"b", "", "a", "c"}),
		core.NewDatetimeColumn("d", []time.Time{base.Add(time.Hour), {}, base, base.Add(2 * time.Hour)}),
		core.NewNumericColumn("id", []float64{0, 1, 2, 3}),
	)

	for _, column := range []string{"n", "s", "d"} {
		t.Run(column, func(t *testing.T) {
			spec := NewSpec()

			spec.SetSort(column, true)
			assert.Equal(t, []float64{2, 0, 3, 1}, Apply(tbl, spec).Column("id").Num)

			spec.SetSort(column, false)
			assert.Equal(t, []float64{3, 0, 2, 1}, Apply(tbl, spec).Column("id").Num)
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := sample()
	spec := mustSpec(t, Clause{"temp", GreaterThan(2)})
	spec.SetSort("temp", false)

	_ = Apply(in, spec)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, in.Column("temp").Num)
}

func TestConstructors_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pred    Predicate
		wantErr bool
	}{
		{"between ok", Between(1, 1), false},
		{"between reversed", Between(4, 2), true},
		{"between nan", Between(math.NaN(), 2), true},
		{"greater than nan", GreaterThan(math.NaN()), true},
		{"empty in list", InList(), true},
		{"empty not in list", NotInList(), true},
		{"zero value", Predicate{}, true},
		{"equals empty string", Equals(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSpec().Set("c", tt.pred)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidPredicate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse(OpBetween, "2", "4", nil)
	require.NoError(t, err)
	assert.Equal(t, OpBetween, p.Op())

	_, err = Parse(OpGreaterThan, "abc", "", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPredicate)

	_, err = Parse(OpBetween, "5", "1", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPredicate)

	_, err = Parse("regex", "x", "", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPredicate)

	p, err = Parse(OpInList, "", "", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, `in_list ["a"]`, p.String())
}

func TestSpec_Mutation(t *testing.T) {
	s := NewSpec()
	require.NoError(t, s.Set("b", Equals("1")))
	require.NoError(t, s.Set("a", Equals("2")))
	require.NoError(t, s.Set("b", Contains("x")))

	clauses := s.Clauses()
	require.Len(t, clauses, 2)
	assert.Equal(t, "b", clauses[0].Column)
	assert.Equal(t, OpContains, clauses[0].Predicate.Op())

	s.SetSort("a", true)
	assert.Equal(t, `b contains "x" AND a equals "2" ORDER BY a asc`, s.String())

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsEmpty())

	s.ClearSort()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "no filters", s.String())
}
