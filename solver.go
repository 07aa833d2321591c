// Package simpsat is an incremental SAT solver handle.
//
// A Solver owns one engine instance for its whole lifetime. Clients create
// variables, add clauses, and repeatedly ask whether the clauses together
// with a set of assumption literals are satisfiable:
//
//	s := simpsat.New()
//	defer s.Close()
//	x, y := s.NewVar(), s.NewVar()
//	s.AddClause(x.Neg(), y.Pos())
//	if m, ok := s.Solve(x.Pos()); ok {
//		fmt.Println(m) // [x0 x1]
//	}
//
// A Model returned by Solve is only valid until the next call that changes
// the Solver (NewVar, AddClause, Solve, or Close). Using it afterwards
// panics with ErrStaleModel; use Model.Lits to keep a copy.
//
// A Solver must not be used from multiple goroutines at once. Distinct
// Solvers share nothing and may be used concurrently.
package simpsat

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/cespare/simpsat/engine"
	"github.com/cespare/simpsat/engine/dpll"
)

var (
	// ErrClosed is the panic value for any use of a closed Solver.
	ErrClosed = errors.New("simpsat: use of closed Solver")
	// ErrStaleModel is the panic value for any use of a Model after its
	// Solver changed.
	ErrStaleModel = errors.New("simpsat: use of stale Model")
)

// A ProtocolError describes an engine that broke the boundary contract.
// It is used as a panic value; there is no way to recover the Solver.
type ProtocolError struct {
	Op     string
	Status engine.Status
	Detail string
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("simpsat: engine protocol violation in %s", e.Op)
	if e.Op == "solve" {
		msg += fmt.Sprintf(": status %d", int32(e.Status))
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// State is the lifecycle state of a Solver.
type State uint8

const (
	Created State = iota
	Building
	SolvedSat
	SolvedUnsat
	Closed
)

func (st State) String() string {
	switch st {
	case Created:
		return "created"
	case Building:
		return "building"
	case SolvedSat:
		return "solved-sat"
	case SolvedUnsat:
		return "solved-unsat"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(st))
	}
}

// noCopy lets go vet's copylocks check flag copies of a Solver.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// A Solver is a handle to one incremental engine instance.
// Create one with New; the zero value is not usable.
type Solver struct {
	noCopy noCopy

	e     engine.Engine
	state State
	// gen is bumped by every call that changes the engine. A Model is
	// valid only while its gen matches.
	gen uint64

	nvars    int
	nclauses int
	model    []Lit

	newEngine engine.Factory
	log       logrus.FieldLogger
}

// An Option configures a Solver.
type Option func(*Solver)

// WithEngine sets the factory used to create the Solver's engine.
// The default is dpll.Factory().
func WithEngine(f engine.Factory) Option {
	return func(s *Solver) {
		s.newEngine = f
	}
}

// WithLogger sets the logger for solve events, which are logged at debug
// level. The default is logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Solver) {
		s.log = log
	}
}

// New creates a Solver and its engine. It panics if the engine cannot be
// allocated.
//
// The engine is released by Close or, if the Solver is abandoned without
// being closed, when it is garbage collected.
func New(opts ...Option) *Solver {
	s := &Solver{
		newEngine: dpll.Factory(),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.e = s.newEngine()
	if s.e == nil {
		panic("simpsat: engine allocation failed")
	}
	runtime.SetFinalizer(s, (*Solver).Close)
	return s
}

func (s *Solver) checkOpen() {
	if s.state == Closed {
		panic(ErrClosed)
	}
}

// State returns the lifecycle state of s.
func (s *Solver) State() State { return s.state }

// NumVars returns the number of variables known to s: those created with
// NewVar and any the engine introduced of its own.
func (s *Solver) NumVars() int { return s.nvars }

// NumClauses returns the number of clauses added with AddClause.
func (s *Solver) NumClauses() int { return s.nclauses }

// NewVar creates a variable and returns the index the engine assigned it.
// The first variable has index 0 and later ones increase; indexes the
// engine took for variables of its own are skipped.
func (s *Solver) NewVar() Var {
	s.checkOpen()
	s.gen++
	s.state = Building
	v := s.e.AddVariable()
	if int(v) < s.nvars {
		panic(&ProtocolError{
			Op:     "add_variable",
			Detail: fmt.Sprintf("got variable %d; want at least %d", v, s.nvars),
		})
	}
	s.nvars = int(v) + 1
	return Var(v)
}

// AddClause adds the disjunction of lits. An empty clause makes the formula
// unsatisfiable. Every literal must refer to a variable from NewVar.
func (s *Solver) AddClause(lits ...Lit) {
	s.checkOpen()
	s.checkLits(lits)
	s.gen++
	s.state = Building
	s.e.AddClause(wire(lits))
	s.nclauses++
}

// Solve reports whether the clauses added so far are satisfiable when every
// literal in assumptions is also true. Assumptions only apply to this call.
//
// If the formula is satisfiable, Solve returns a Model listing a value for
// each variable that matters to the solution, in increasing variable order.
func (s *Solver) Solve(assumptions ...Lit) (Model, bool) {
	s.checkOpen()
	s.checkLits(assumptions)
	s.gen++
	st := s.e.Solve(wire(assumptions))
	switch st {
	case engine.Sat:
		s.readModel()
		s.state = SolvedSat
	case engine.Unsat:
		s.state = SolvedUnsat
	default:
		panic(&ProtocolError{Op: "solve", Status: st})
	}
	s.log.WithFields(logrus.Fields{
		"vars":        s.nvars,
		"clauses":     s.nclauses,
		"assumptions": len(assumptions),
		"result":      st,
		"model":       len(s.model),
	}).Debug("solve")
	if st == engine.Unsat {
		return Model{}, false
	}
	return Model{s: s, gen: s.gen}, true
}

// readModel rebuilds s.model from the engine's assignment.
// The variable count is read after solving since the engine may have
// introduced variables of its own.
func (s *Solver) readModel() {
	nvar := int(s.e.VariableCount())
	if nvar > s.nvars {
		s.nvars = nvar
	}
	raw := s.e.ReadModel()
	if len(raw) < nvar {
		panic(&ProtocolError{
			Op:     "read_model",
			Status: engine.Sat,
			Detail: fmt.Sprintf("model has %d entries for %d variables", len(raw), nvar),
		})
	}
	s.model = s.model[:0]
	for i := 0; i < nvar; i++ {
		switch raw[i] {
		case engine.DontCare:
			continue
		case engine.True:
			s.model = append(s.model, NewLit(Var(i), false))
		case engine.False:
			s.model = append(s.model, NewLit(Var(i), true))
		default:
			panic(&ProtocolError{
				Op:     "read_model",
				Status: engine.Sat,
				Detail: fmt.Sprintf("variable %d has value %d", i, raw[i]),
			})
		}
	}
}

// Close destroys the engine. It is safe to call Close more than once;
// calls after the first do nothing. Every other method panics with
// ErrClosed once s is closed.
func (s *Solver) Close() error {
	if s.state == Closed {
		return nil
	}
	s.gen++
	s.state = Closed
	e := s.e
	s.e = nil
	s.model = nil
	runtime.SetFinalizer(s, nil)
	e.Destroy()
	return nil
}

// Stats returns the engine's statistics, or nil if the engine keeps none.
// The set of stats and their types may change at any time.
func (s *Solver) Stats() map[string]interface{} {
	s.checkOpen()
	if sr, ok := s.e.(engine.StatsReporter); ok {
		return sr.Stats()
	}
	return nil
}

func (s *Solver) checkLits(lits []Lit) {
	for _, lit := range lits {
		if lit < 0 || int(lit.Var()) >= s.nvars {
			panic(fmt.Sprintf("simpsat: literal %s refers to unknown variable", lit))
		}
	}
}

// wire reinterprets lits in the engine's int32 encoding without copying.
func wire(lits []Lit) []int32 {
	if len(lits) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&lits[0])), len(lits))
}
