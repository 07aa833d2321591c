// Package engine defines the boundary between a simpsat.Solver and the
// procedure that actually decides satisfiability.
//
// Every literal and variable crosses the boundary as an int32. Variables are
// zero-based indexes; a literal is 2*variable, plus 1 if it is negated.
//
// An Engine is owned by exactly one handle and is never used from more than
// one goroutine at a time. Implementations need no locking.
package engine

import "fmt"

// Status is the outcome of a call to Solve.
type Status int32

const (
	Unsat   Status = -1
	Unknown Status = 0
	Sat     Status = 1
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Values of the per-variable entries returned by ReadModel.
const (
	False    uint8 = 0
	True     uint8 = 1
	DontCare uint8 = 2
)

// Engine is an incremental SAT solver instance.
type Engine interface {
	// AddVariable creates a new variable and returns its index.
	// Indexes start at 0 and increase by one, skipping any the engine
	// took for variables of its own.
	AddVariable() int32
	// AddClause adds the disjunction of lits to the clause database.
	// The slice is only read for the duration of the call and must not be
	// retained. An empty clause makes the formula unsatisfiable.
	AddClause(lits []int32)
	// Solve decides the clause database under assumptions, which hold for
	// this call only. It returns Sat or Unsat.
	Solve(assumptions []int32) Status
	// ReadModel returns one entry per variable (False, True, or DontCare)
	// describing the model found by the last Solve. It is only meaningful
	// directly after Solve returned Sat and is invalidated by any other
	// call.
	ReadModel() []uint8
	// VariableCount returns the number of variables the engine knows about.
	// It may exceed the number of AddVariable calls if the engine introduces
	// variables of its own.
	VariableCount() int32
	// Destroy releases the engine. It is called exactly once and no other
	// method is called afterwards.
	Destroy()
}

// A Factory creates a fresh Engine. Returning nil means the engine could not
// be allocated.
type Factory func() Engine

// A StatsReporter is an Engine that keeps search statistics.
// The set of stats and their types may change at any time.
type StatsReporter interface {
	Stats() map[string]interface{}
}
