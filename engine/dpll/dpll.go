// Package dpll implements an incremental SAT engine using the Davis-Putnam
// backtracking algorithm with unit propagation.
//
// Clauses accumulate across calls to Solve. Each Solve starts a fresh search
// over the whole clause database with the assumptions asserted as root-level
// units, so assumptions never outlive the call that made them.
package dpll

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cespare/simpsat/engine"
)

// Engine is the default simpsat engine.
type Engine struct {
	nvars int
	// clauses holds the normalized input clauses: no duplicate literals
	// and no tautologies (those are dropped entirely).
	clauses [][]literal
	// occurs lists, for each literal, the clauses that contain it
	// (len is 2*nvars).
	occurs [][]int
	// empty is set once an empty clause has been added.
	empty bool

	model []uint8

	log       *logrus.Entry
	destroyed bool

	numSolves       int64
	numDecisions    int64
	numImplications int64
	numConflicts    int64
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.StatsReporter = (*Engine)(nil)
)

// An Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to trace the search. Tracing only happens
// when the logger's level is logrus.TraceLevel.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New returns an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.NewEntry(logrus.StandardLogger())
	}
	e.log = e.log.WithField("engine", "dpll")
	return e
}

// Factory returns an engine.Factory that creates Engines with opts.
func Factory(opts ...Option) engine.Factory {
	return func() engine.Engine { return New(opts...) }
}

func (e *Engine) checkLive() {
	if e.destroyed {
		panic("dpll: use of destroyed engine")
	}
}

func (e *Engine) AddVariable() int32 {
	e.checkLive()
	v := e.nvars
	e.nvars++
	e.occurs = append(e.occurs, nil, nil)
	return int32(v)
}

func (e *Engine) VariableCount() int32 {
	e.checkLive()
	return int32(e.nvars)
}

func (e *Engine) AddClause(lits []int32) {
	e.checkLive()
	cls, taut := e.normalize(lits)
	if taut {
		return
	}
	if len(cls) == 0 {
		e.empty = true
		return
	}
	i := len(e.clauses)
	e.clauses = append(e.clauses, cls)
	for _, lit := range cls {
		e.occurs[lit] = append(e.occurs[lit], i)
	}
}

// normalize copies lits into engine-owned storage, dropping duplicate
// literals. It reports whether the clause is a tautology.
func (e *Engine) normalize(lits []int32) (cls []literal, taut bool) {
	cls = make([]literal, 0, len(lits))
litLoop:
	for _, n := range lits {
		lit := e.literal(n)
		for _, l := range cls {
			switch l {
			case lit:
				continue litLoop
			case lit ^ 1:
				return nil, true
			}
		}
		cls = append(cls, lit)
	}
	return cls, false
}

func (e *Engine) literal(n int32) literal {
	if n < 0 || int(n>>1) >= e.nvars {
		panic(fmt.Sprintf("dpll: literal %d refers to unknown variable", n))
	}
	return literal(n)
}

func (e *Engine) Solve(assumptions []int32) engine.Status {
	e.checkLive()
	e.numSolves++
	if e.empty {
		e.log.Trace("unsat (empty clause)")
		return engine.Unsat
	}
	assumed := make([]literal, len(assumptions))
	for i, n := range assumptions {
		assumed[i] = e.literal(n)
	}
	sv := newSolver(e)
	ok := sv.solve(assumed)
	e.numDecisions += sv.numDecisions
	e.numImplications += sv.numImplications
	e.numConflicts += sv.numConflicts
	if !ok {
		return engine.Unsat
	}
	e.model = sv.readModel(e.model[:0])
	return engine.Sat
}

func (e *Engine) ReadModel() []uint8 {
	e.checkLive()
	return e.model
}

func (e *Engine) Destroy() {
	e.checkLive()
	e.destroyed = true
	e.clauses = nil
	e.occurs = nil
	e.model = nil
}

// Stats reports cumulative search statistics over all calls to Solve.
func (e *Engine) Stats() map[string]interface{} {
	return map[string]interface{}{
		"num solves":       e.numSolves,
		"num decisions":    e.numDecisions,
		"num implications": e.numImplications,
		"num conflicts":    e.numConflicts,
	}
}
