package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindCategorical
	KindNumeric
	KindDatetime
)

func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	default:
		return "text"
	}
}

// IsNumeric reports whether the column carries float values in Num.
// Datetime columns qualify through their Unix-seconds form.
func (k Kind) IsNumeric() bool {
	return k == KindNumeric || k == KindDatetime
}

// DatetimeLayout is the string form used for datetime cells.
const DatetimeLayout = "2006-01-02 15:04:05"

// Column is a named, typed sequence of values.
//
// Storage depends on Kind:
//   - Text, Categorical: Text, "" is absent
//   - Numeric: Num, NaN is absent
//   - Datetime: Time (zero is absent) and Num holding Unix seconds
type Column struct {
	Name string
	Kind Kind
	Text []string
	Num  []float64
	Time []time.Time
}

// NewTextColumn builds an untyped column from raw cells.
func NewTextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindText, Text: values}
}

// NewNumericColumn builds a numeric column.
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Num: values}
}

// NewDatetimeColumn builds a datetime column and materializes Unix seconds.
func NewDatetimeColumn(name string, values []time.Time) *Column {
	num := make([]float64, len(values))
	for i, t := range values {
		if t.IsZero() {
			num[i] = math.NaN()
			continue
		}
		num[i] = float64(t.Unix())
	}
	return &Column{Name: name, Kind: KindDatetime, Time: values, Num: num}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Num)
	case KindDatetime:
		return len(c.Time)
	default:
		return len(c.Text)
	}
}

// IsNull reports whether row i holds the absent marker.
func (c *Column) IsNull(i int) bool {
	switch c.Kind {
	case KindNumeric:
		return math.IsNaN(c.Num[i])
	case KindDatetime:
		return c.Time[i].IsZero()
	default:
		return c.Text[i] == ""
	}
}

// StringAt returns the string representation of row i. Absent values are "".
func (c *Column) StringAt(i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	case KindDatetime:
		return c.Time[i].Format(DatetimeLayout)
	default:
		return c.Text[i]
	}
}

// FloatAt returns the numeric value of row i. For text columns the cell is
// parsed; ok is false for absent or non-numeric cells.
func (c *Column) FloatAt(i int) (float64, bool) {
	switch c.Kind {
	case KindNumeric, KindDatetime:
		v := c.Num[i]
		return v, !math.IsNaN(v)
	default:
		return ParseNumber(c.Text[i])
	}
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Text != nil {
		out.Text = append([]string(nil), c.Text...)
	}
	if c.Num != nil {
		out.Num = append([]float64(nil), c.Num...)
	}
	if c.Time != nil {
		out.Time = append([]time.Time(nil), c.Time...)
	}
	return out
}

// take returns a new column holding rows in the given order.
func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Text != nil {
		out.Text = make([]string, len(rows))
		for i, r := range rows {
			out.Text[i] = c.Text[r]
		}
	}
	if c.Num != nil {
		out.Num = make([]float64, len(rows))
		for i, r := range rows {
			out.Num[i] = c.Num[r]
		}
	}
	if c.Time != nil {
		out.Time = make([]time.Time, len(rows))
		for i, r := range rows {
			out.Time[i] = c.Time[r]
		}
	}
	return out
}

// Table is an ordered set of equal-length columns with unique names.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable validates the column invariants and builds a table.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d values, want %d", ErrRaggedColumns, col.Name, col.Len(), t.rows)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustTable is NewTable that panics on invalid input. Intended for tests
// and for callers that construct columns they already validated.
func MustTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// NumRows returns the shared row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order. Callers must not mutate them.
func (t *Table) Columns() []*Column { return t.columns }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	return MustTable(cols...)
}

// WithColumn returns a new table with col replacing the same-named column,
// or appended if the name is new. Other columns are shared, not copied.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	cols := append([]*Column(nil), t.columns...)
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return NewTable(cols...)
}

// Take returns a new table containing the given rows in the given order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	out := &Table{columns: cols, index: make(map[string]int, len(cols)), rows: len(rows)}
	for i, c := range cols {
		out.index[c.Name] = i
	}
	return out
}

// Row returns the string form of every cell in row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	for j, c := range t.columns {
		out[j] = c.StringAt(i)
	}
	return out
}
