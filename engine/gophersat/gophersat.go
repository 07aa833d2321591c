// Package gophersat adapts the gophersat CDCL solver to the engine boundary.
//
// gophersat has no assumption interface, so every Solve hands it the whole
// clause database plus one unit clause per assumption. The accumulated
// clauses are kept here in DIMACS form.
package gophersat

import (
	"github.com/crillab/gophersat/solver"
	"github.com/samber/lo"

	"github.com/cespare/simpsat/engine"
)

// Engine keeps a clause database and solves it with a fresh gophersat
// solver on every call.
type Engine struct {
	nvars   int32
	clauses [][]int
	// empty is set once an empty clause has been added.
	empty bool
	model []uint8

	numSolves    int64
	numConflicts int64
	numRestarts  int64
	numDecisions int64
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.StatsReporter = (*Engine)(nil)
)

// New returns an empty Engine.
func New() *Engine { return &Engine{} }

// Factory is an engine.Factory for gophersat engines.
func Factory() engine.Engine { return New() }

func dimacs(n int32) int {
	x := int(n>>1) + 1
	if n&1 == 1 {
		return -x
	}
	return x
}

func (e *Engine) AddVariable() int32 {
	v := e.nvars
	e.nvars++
	return v
}

func (e *Engine) VariableCount() int32 { return e.nvars }

func (e *Engine) AddClause(lits []int32) {
	if len(lits) == 0 {
		e.empty = true
		return
	}
	// gophersat expects clauses without repeated literals; tautologies
	// are dropped.
	cls := lo.Uniq(lo.Map(lits, func(n int32, _ int) int { return dimacs(n) }))
	if lo.SomeBy(cls, func(n int) bool { return lo.Contains(cls, -n) }) {
		return
	}
	e.clauses = append(e.clauses, cls)
}

func (e *Engine) Solve(assumptions []int32) engine.Status {
	e.numSolves++
	if e.empty {
		return engine.Unsat
	}
	cnf := make([][]int, 0, len(e.clauses)+len(assumptions))
	cnf = append(cnf, e.clauses...)
	for _, n := range assumptions {
		cnf = append(cnf, []int{dimacs(n)})
	}
	if len(cnf) == 0 {
		e.model = e.model[:0]
		for v := int32(0); v < e.nvars; v++ {
			e.model = append(e.model, engine.DontCare)
		}
		return engine.Sat
	}
	s := solver.New(solver.ParseSlice(cnf))
	st := s.Solve()
	e.numConflicts += int64(s.Stats.NbConflicts)
	e.numRestarts += int64(s.Stats.NbRestarts)
	e.numDecisions += int64(s.Stats.NbDecisions)
	switch st {
	case solver.Unsat:
		return engine.Unsat
	case solver.Sat:
	default:
		return engine.Unknown
	}
	// The model only covers variables up to the largest one mentioned.
	m := s.Model()
	e.model = e.model[:0]
	for v := 0; v < int(e.nvars); v++ {
		switch {
		case v >= len(m):
			e.model = append(e.model, engine.DontCare)
		case m[v]:
			e.model = append(e.model, engine.True)
		default:
			e.model = append(e.model, engine.False)
		}
	}
	return engine.Sat
}

func (e *Engine) ReadModel() []uint8 { return e.model }

func (e *Engine) Destroy() {
	e.clauses = nil
	e.model = nil
}

func (e *Engine) Stats() map[string]interface{} {
	return map[string]interface{}{
		"num solves":    e.numSolves,
		"num conflicts": e.numConflicts,
		"num restarts":  e.numRestarts,
		"num decisions": e.numDecisions,
	}
}
