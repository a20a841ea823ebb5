package filter

import (
	"fmt"
	"strings"
)

// SortKey orders filtered rows by one column.
type SortKey struct {
	Column    string
	Ascending bool
}

// Clause is one column predicate of a Spec.
type Clause struct {
	Column    string
	Predicate Predicate
}

// Spec is the set of active predicates, at most one per column, plus an
// optional sort key. Clauses keep the order in which columns were first
// added. A Spec is edited by its owner and must not be mutated while
// another goroutine applies it.
type Spec struct {
	clauses []Clause
	sort    *SortKey
}

// NewSpec returns an empty spec. The zero value is also ready to use.
func NewSpec() *Spec {
	return &Spec{}
}

// Set installs p for column, replacing any existing predicate on it.
// Invalid predicates are rejected with ErrInvalidPredicate.
func (s *Spec) Set(column string, p Predicate) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("filter on %q: %w", column, err)
	}
	for i := range s.clauses {
		if s.clauses[i].Column == column {
			s.clauses[i].Predicate = p
			return nil
		}
	}
	s.clauses = append(s.clauses, Clause{Column: column, Predicate: p})
	return nil
}

// Remove drops the predicate on column and reports whether one existed.
func (s *Spec) Remove(column string) bool {
	for i := range s.clauses {
		if s.clauses[i].Column == column {
			s.clauses = append(s.clauses[:i], s.clauses[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every predicate. The sort key is kept.
func (s *Spec) Clear() {
	s.clauses = nil
}

// SetSort sets the sort key.
func (s *Spec) SetSort(column string, ascending bool) {
	s.sort = &SortKey{Column: column, Ascending: ascending}
}

// ClearSort removes the sort key.
func (s *Spec) ClearSort() {
	s.sort = nil
}

// Sort returns the sort key, if any.
func (s *Spec) Sort() (SortKey, bool) {
	if s == nil || s.sort == nil {
		return SortKey{}, false
	}
	return *s.sort, true
}

// Clauses returns a copy of the active predicates in insertion order.
func (s *Spec) Clauses() []Clause {
	if s == nil {
		return nil
	}
	return append([]Clause(nil), s.clauses...)
}

// Predicate returns the predicate on column, if any.
func (s *Spec) Predicate(column string) (Predicate, bool) {
	if s == nil {
		return Predicate{}, false
	}
	for _, c := range s.clauses {
		if c.Column == column {
			return c.Predicate, true
		}
	}
	return Predicate{}, false
}

// Len returns the number of predicates.
func (s *Spec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.clauses)
}

// IsEmpty reports whether the spec has neither predicates nor a sort key.
func (s *Spec) IsEmpty() bool {
	return s.Len() == 0 && (s == nil || s.sort == nil)
}

func (s *Spec) String() string {
	if s.IsEmpty() {
		return "no filters"
	}
	var b strings.Builder
	for i, c := range s.clauses {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s %s", c.Column, c.Predicate)
	}
	if key, ok := s.Sort(); ok {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		dir := "desc"
		if key.Ascending {
			dir = "asc"
		}
		fmt.Fprintf(&b, "ORDER BY %s %s", key.Column, dir)
	}
	return b.String()
}
