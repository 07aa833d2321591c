package simpsat

import (
	"fmt"
	"sort"
)

// A Model is the satisfying assignment found by a call to Solver.Solve.
// It lists one literal per decided variable in increasing variable order;
// variables whose value doesn't matter are absent.
//
// A Model is a view of its Solver's result buffer. Every method panics with
// ErrStaleModel once the Solver has been changed by NewVar, AddClause,
// another Solve, or Close. The zero Model is never valid.
type Model struct {
	s   *Solver
	gen uint64
}

// Valid reports whether m may still be used.
func (m Model) Valid() bool {
	return m.s != nil && m.s.state == SolvedSat && m.gen == m.s.gen
}

func (m Model) lits() []Lit {
	if !m.Valid() {
		panic(ErrStaleModel)
	}
	return m.s.model
}

// Len returns the number of literals in m.
func (m Model) Len() int { return len(m.lits()) }

// At returns the i'th literal of m.
func (m Model) At(i int) Lit { return m.lits()[i] }

// Lits returns a copy of the literals in m. The copy belongs to the caller
// and remains usable after m becomes stale.
func (m Model) Lits() []Lit {
	return m.AppendLits(nil)
}

// AppendLits appends the literals of m to dst and returns the result.
func (m Model) AppendLits(dst []Lit) []Lit {
	return append(dst, m.lits()...)
}

// Value reports the value assigned to v. If v is absent from the model
// (its value doesn't matter), ok is false.
func (m Model) Value(v Var) (value, ok bool) {
	lits := m.lits()
	i := sort.Search(len(lits), func(i int) bool { return lits[i].Var() >= v })
	if i == len(lits) || lits[i].Var() != v {
		return false, false
	}
	return !lits[i].IsNeg(), true
}

// Satisfies reports whether clause is true under m: some literal of clause
// is true in m, or clause contains a literal and its negation. Absent
// variables may take either value, so their literals alone do not satisfy
// clause.
func (m Model) Satisfies(clause []Lit) bool {
	for i, lit := range clause {
		if val, ok := m.Value(lit.Var()); ok && val != lit.IsNeg() {
			return true
		}
		for _, other := range clause[:i] {
			if other == lit.Not() {
				return true
			}
		}
	}
	return false
}

func (m Model) String() string {
	return fmt.Sprint(m.lits())
}
