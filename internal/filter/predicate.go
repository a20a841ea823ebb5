package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Op identifies a predicate kind.
type Op string

const (
	OpEquals         Op = "equals"
	OpNotEquals      Op = "not_equals"
	OpContains       Op = "contains"
	OpNotContains    Op = "not_contains"
	OpStartsWith     Op = "starts_with"
	OpEndsWith       Op = "ends_with"
	OpGreaterThan    Op = "greater_than"
	OpLessThan       Op = "less_than"
	OpGreaterOrEqual Op = "greater_equal"
	OpLessOrEqual    Op = "less_equal"
	OpBetween        Op = "between"
	OpInList         Op = "in_list"
	OpNotInList      Op = "not_in_list"
	OpIsNull         Op = "is_null"
	OpIsNotNull      Op = "is_not_null"
)

// Predicate is a single test against one column. The zero value is invalid;
// build predicates with the constructors below.
type Predicate struct {
	op     Op
	text   string
	num    float64 // Numeric operand, or lower bound for Between
	hi     float64 // Upper bound for Between
	isNum  bool    // text also parses as a number
	values []string
	set    map[string]struct{}
	nums   map[float64]struct{}
	err    error
}

// Equals matches cells equal to v. When both the cell and v are numeric the
// comparison is numeric, so "1.0" equals 1.
func Equals(v string) Predicate { return textual(OpEquals, v) }

// NotEquals matches every cell Equals(v) does not.
func NotEquals(v string) Predicate { return textual(OpNotEquals, v) }

// Contains matches cells whose string form contains s.
func Contains(s string) Predicate { return textual(OpContains, s) }

// NotContains matches cells whose string form does not contain s.
func NotContains(s string) Predicate { return textual(OpNotContains, s) }

// StartsWith matches cells whose string form has the prefix s.
func StartsWith(s string) Predicate { return textual(OpStartsWith, s) }

// EndsWith matches cells whose string form has the suffix s.
func EndsWith(s string) Predicate { return textual(OpEndsWith, s) }

// GreaterThan matches numeric cells > v.
func GreaterThan(v float64) Predicate { return numeric(OpGreaterThan, v) }

// LessThan matches numeric cells < v.
func LessThan(v float64) Predicate { return numeric(OpLessThan, v) }

// GreaterOrEqual matches numeric cells >= v.
func GreaterOrEqual(v float64) Predicate { return numeric(OpGreaterOrEqual, v) }

// LessOrEqual matches numeric cells <= v.
func LessOrEqual(v float64) Predicate { return numeric(OpLessOrEqual, v) }

// Between matches numeric cells in [lo, hi]. Requires lo <= hi.
func Between(lo, hi float64) Predicate {
	p := Predicate{op: OpBetween, num: lo, hi: hi}
	switch {
	case math.IsNaN(lo) || math.IsNaN(hi):
		p.err = fmt.Errorf("%w: between bounds must be numbers", core.ErrInvalidPredicate)
	case lo > hi:
		p.err = fmt.Errorf("%w: between lower bound %v exceeds upper bound %v", core.ErrInvalidPredicate, lo, hi)
	}
	return p
}

// InList matches cells equal to any of values.
func InList(values ...string) Predicate { return list(OpInList, values) }

// NotInList matches cells equal to none of values.
func NotInList(values ...string) Predicate { return list(OpNotInList, values) }

// IsNull matches absent cells.
func IsNull() Predicate { return Predicate{op: OpIsNull} }

// IsNotNull matches present cells.
func IsNotNull() Predicate { return Predicate{op: OpIsNotNull} }

// Parse builds a predicate from its string form, as entered in a filter
// dialog. Numeric kinds require numeric operands; Between uses value and
// value2; list kinds use values.
func Parse(op Op, value, value2 string, values []string) (Predicate, error) {
	var p Predicate
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		p = textual(op, value)
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		v, err := parseOperand(value)
		if err != nil {
			return Predicate{}, err
		}
		p = numeric(op, v)
	case OpBetween:
		lo, err := parseOperand(value)
		if err != nil {
			return Predicate{}, err
		}
		hi, err := parseOperand(value2)
		if err != nil {
			return Predicate{}, err
		}
		p = Between(lo, hi)
	case OpInList, OpNotInList:
		p = list(op, values)
	case OpIsNull:
		p = IsNull()
	case OpIsNotNull:
		p = IsNotNull()
	default:
		return Predicate{}, fmt.Errorf("%w: unknown operator %q", core.ErrInvalidPredicate, op)
	}
	return p, p.Validate()
}

// Op returns the predicate kind.
func (p Predicate) Op() Op { return p.op }

// Validate returns the construction error, if any.
func (p Predicate) Validate() error {
	if p.op == "" {
		return fmt.Errorf("%w: zero predicate", core.ErrInvalidPredicate)
	}
	return p.err
}

func (p Predicate) String() string {
	switch p.op {
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		return fmt.Sprintf("%s %v", p.op, p.num)
	case OpBetween:
		return fmt.Sprintf("%s %v and %v", p.op, p.num, p.hi)
	case OpInList, OpNotInList:
		return fmt.Sprintf("%s %q", p.op, p.values)
	case OpIsNull, OpIsNotNull:
		return string(p.op)
	default:
		return fmt.Sprintf("%s %q", p.op, p.text)
	}
}

// match reports whether row i of col satisfies the predicate.
func (p Predicate) match(col *core.Column, i int) bool {
	switch p.op {
	case OpIsNull:
		return col.IsNull(i)
	case OpIsNotNull:
		return !col.IsNull(i)
	case OpEquals:
		return p.equal(col, i)
	case OpNotEquals:
		return !p.equal(col, i)
	case OpContains:
		return strings.Contains(col.StringAt(i), p.text)
	case OpNotContains:
		return !strings.Contains(col.StringAt(i), p.text)
	case OpStartsWith:
		return strings.HasPrefix(col.StringAt(i), p.text)
	case OpEndsWith:
		return strings.HasSuffix(col.StringAt(i), p.text)
	case OpInList:
		return p.inList(col, i)
	case OpNotInList:
		return !p.inList(col, i)
	}

	v, ok := col.FloatAt(i)
	if !ok {
		return false
	}
	switch p.op {
	case OpGreaterThan:
		return v > p.num
	case OpLessThan:
		return v < p.num
	case OpGreaterOrEqual:
		return v >= p.num
	case OpLessOrEqual:
		return v <= p.num
	case OpBetween:
		return v >= p.num && v <= p.hi
	}
	return false
}

func (p Predicate) equal(col *core.Column, i int) bool {
	if p.isNum {
		if v, ok := col.FloatAt(i); ok {
			return v == p.num
		}
	}
	return col.StringAt(i) == p.text
}

func (p Predicate) inList(col *core.Column, i int) bool {
	if len(p.nums) > 0 {
		if v, ok := col.FloatAt(i); ok {
			if _, hit := p.nums[v]; hit {
				return true
			}
		}
	}
	_, hit := p.set[col.StringAt(i)]
	return hit
}

func textual(op Op, v string) Predicate {
	p := Predicate{op: op, text: v}
	if op == OpEquals || op == OpNotEquals {
		p.num, p.isNum = core.ParseNumber(v)
	}
	return p
}

func numeric(op Op, v float64) Predicate {
	p := Predicate{op: op, num: v}
	if math.IsNaN(v) {
		p.err = fmt.Errorf("%w: %s needs a number", core.ErrInvalidPredicate, op)
	}
	return p
}

func list(op Op, values []string) Predicate {
	p := Predicate{op: op, values: append([]string(nil), values...)}
	if len(values) == 0 {
		p.err = fmt.Errorf("%w: %s needs at least one value", core.ErrInvalidPredicate, op)
		return p
	}
	p.set = make(map[string]struct{}, len(values))
	for _, v := range values {
		p.set[v] = struct{}{}
		if f, ok := core.ParseNumber(v); ok {
			if p.nums == nil {
				p.nums = make(map[float64]struct{})
			}
			p.nums[f] = struct{}{}
		}
	}
	return p
}

func parseOperand(s string) (float64, error) {
	v, ok := core.ParseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", core.ErrInvalidPredicate, s)
	}
	return v, nil
}
