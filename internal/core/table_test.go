package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Invariants(t *testing.T) {
	t.Run("ragged columns rejected", func(t *testing.T) {
		_, err := NewTable(
			NewTextColumn("a", []string{"1", "2"}),
			NewTextColumn("b", []string{"1"}),
		)
		require.ErrorIs(t, err, ErrRaggedColumns)
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		_, err := NewTable(
			NewTextColumn("a", []string{"1"}),
			NewTextColumn("a", []string{"2"}),
		)
		require.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("empty table", func(t *testing.T) {
		tbl, err := NewTable()
		require.NoError(t, err)
		assert.Equal(t, 0, tbl.NumRows())
		assert.Equal(t, 0, tbl.NumCols())
	})
}

func TestColumn_AbsentMarkers(t *testing.T) {
	text := NewTextColumn("t", []string{"x", ""})
	num := NewNumericColumn("n", []float64{1.5, math.NaN()})
	ts := NewDatetimeColumn("d", []time.Time{time.Date(2024, 1, 16, 16, 44, 1, 0, time.UTC), {}})

	for _, c := range []*Column{text, num, ts} {
		assert.False(t, c.IsNull(0), c.Name)
		assert.True(t, c.IsNull(1), c.Name)
		assert.Equal(t, "", c.StringAt(1), c.Name)
	}

	assert.Equal(t, "1.5", num.StringAt(0))
	assert.Equal(t, "2024-01-16 16:44:01", ts.StringAt(0))

	v, ok := ts.FloatAt(0)
	require.True(t, ok)
	assert.Equal(t, float64(1705423441), v)

	_, ok = ts.FloatAt(1)
	assert.False(t, ok)
}

func TestColumn_FloatAtText(t *testing.T) {
	c := NewTextColumn("t", []string{"3", "abc", ""})

	v, ok := c.FloatAt(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = c.FloatAt(1)
	assert.False(t, ok)
	_, ok = c.FloatAt(2)
	assert.False(t, ok)
}

func TestTable_TakeAndWithColumn(t *testing.T) {
	tbl := MustTable(
		NewTextColumn("name", []string{"a", "b", "c"}),
		NewNumericColumn("v", []float64{1, 2, 3}),
	)

	sub := tbl.Take([]int{2, 0})
	assert.Equal(t, 2, sub.NumRows())
	assert.Equal(t, []string{"c", "3"}, sub.Row(0))
	assert.Equal(t, []string{"a", "1"}, sub.Row(1))

	// Source untouched
	assert.Equal(t, 3, tbl.NumRows())

	replaced, err := tbl.WithColumn(NewNumericColumn("v", []float64{9, 9, 9}))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "v"}, replaced.Names())
	assert.Equal(t, 9.0, replaced.Column("v").Num[0])
	assert.Equal(t, 1.0, tbl.Column("v").Num[0])

	added, err := tbl.WithColumn(NewTextColumn("extra", []string{"x", "y", "z"}))
	require.NoError(t, err)
	assert.Equal(t, 2, added.ColumnIndex("extra"))

	_, err = tbl.WithColumn(NewTextColumn("short", []string{"x"}))
	assert.ErrorIs(t, err, ErrRaggedColumns)
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := MustTable(NewNumericColumn("v", []float64{1, 2}))
	cp := tbl.Clone()
	cp.Column("v").Num[0] = 100

	assert.Equal(t, 1.0, tbl.Column("v").Num[0])
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.Nil(t, tbl.Column("missing"))
}

func TestEvent_Percent(t *testing.T) {
	assert.Equal(t, 50, Event{Kind: EventProgress, Current: 1, Total: 2}.Percent())
	assert.Equal(t, 0, Event{Kind: EventProgress}.Percent())
	assert.Equal(t, 100, Event{Kind: EventDone}.Percent())
}
