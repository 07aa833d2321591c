// Package gini adapts the gini CDCL solver to the engine boundary.
//
// gini does not cope with clauses added after it has solved: its trail
// keeps assignments made against the old clause set. The adapter therefore
// keeps every clause and, when clauses arrive after a Solve, starts a fresh
// gini from the stored clauses before the next one. Assumptions still go
// through gini's own Assume.
package gini

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/cespare/simpsat/engine"
)

// Engine drives one gini.Gini instance.
type Engine struct {
	g     *gini.Gini
	nvars int32
	// clauses holds every clause added so far, each terminated by
	// z.LitNull as gini expects.
	clauses []z.Lit
	// solved is set once g has solved. Clauses added after that are only
	// stored and mark g stale; it is rebuilt before the next Solve.
	solved bool
	stale  bool
	// empty is set once an empty clause has been added.
	empty bool
	model []uint8
	buf   []z.Lit

	numSolves   int64
	numRebuilds int64
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.StatsReporter = (*Engine)(nil)
)

// New returns an empty Engine.
func New() *Engine {
	return &Engine{g: gini.New()}
}

// Factory is an engine.Factory for gini engines.
func Factory() engine.Engine { return New() }

// zlit converts a wire literal to gini's 1-based variable numbering.
func zlit(n int32) z.Lit {
	v := z.Var(n>>1 + 1)
	if n&1 == 1 {
		return v.Neg()
	}
	return v.Pos()
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
	start := len(e.clauses)
litLoop:
	for _, n := range lits {
		m := zlit(n)
		for _, prev := range e.clauses[start:] {
			switch prev {
			case m:
				continue litLoop
			case m.Not():
				// Tautology.
				e.clauses = e.clauses[:start]
				return
			}
		}
		e.clauses = append(e.clauses, m)
	}
	e.clauses = append(e.clauses, z.LitNull)
	if e.solved {
		e.stale = true
		return
	}
	for _, m := range e.clauses[start:] {
		e.g.Add(m)
	}
}

// rebuild replaces g with a fresh gini holding every stored clause.
func (e *Engine) rebuild() {
	e.g = gini.New()
	for _, m := range e.clauses {
		e.g.Add(m)
	}
	e.solved = false
	e.stale = false
	e.numRebuilds++
}

// Solve passes the assumptions to gini, which forgets them after the call.
// Variables gini has never seen in a clause are unconstrained, so assumptions
// on them are satisfied directly instead of being handed to gini.
func (e *Engine) Solve(assumptions []int32) engine.Status {
	e.numSolves++
	if e.empty {
		return engine.Unsat
	}
	if e.stale {
		e.rebuild()
	}
	e.solved = true
	maxVar := e.g.MaxVar()
	free := make(map[int32]uint8)
	e.buf = e.buf[:0]
	for _, n := range assumptions {
		m := zlit(n)
		if m.Var() <= maxVar {
			e.buf = append(e.buf, m)
			continue
		}
		val := engine.True
		if n&1 == 1 {
			val = engine.False
		}
		if prev, ok := free[n>>1]; ok && prev != val {
			return engine.Unsat
		}
		free[n>>1] = val
	}
	e.g.Assume(e.buf...)
	st := engine.Status(e.g.Solve())
	if st != engine.Sat {
		return st
	}
	e.model = e.model[:0]
	for v := int32(0); v < e.nvars; v++ {
		zv := z.Var(v + 1)
		switch {
		case zv <= maxVar:
			if e.g.Value(zv.Pos()) {
				e.model = append(e.model, engine.True)
			} else {
				e.model = append(e.model, engine.False)
			}
		default:
			val, ok := free[v]
			if !ok {
				val = engine.DontCare
			}
			e.model = append(e.model, val)
		}
	}
	return st
}

func (e *Engine) ReadModel() []uint8 { return e.model }

func (e *Engine) Destroy() {
	e.g = nil
	e.clauses = nil
	e.model = nil
	e.buf = nil
}

// Stats reports how often the engine solved and how often it had to start
// gini over.
func (e *Engine) Stats() map[string]interface{} {
	return map[string]interface{}{
		"num solves":   e.numSolves,
		"num rebuilds": e.numRebuilds,
	}
}
