package engine

import "time"

// InstrumentedEngine wraps an Engine and reports the outcome and duration of
// every Solve, and each boundary call by name.
type InstrumentedEngine struct {
	Engine
	solveObserver func(Status, time.Duration)
	callObserver  func(op string)
}

var _ Engine = &InstrumentedEngine{}

// Instrumented returns e wrapped so that solveObserver is called after every
// Solve and callObserver (if non-nil) before every boundary call.
func Instrumented(e Engine, solveObserver func(Status, time.Duration), callObserver func(op string)) *InstrumentedEngine {
	return &InstrumentedEngine{
		Engine:        e,
		solveObserver: solveObserver,
		callObserver:  callObserver,
	}
}

// InstrumentedFactory applies Instrumented to every Engine f creates.
func InstrumentedFactory(f Factory, solveObserver func(Status, time.Duration), callObserver func(op string)) Factory {
	return func() Engine {
		e := f()
		if e == nil {
			return nil
		}
		return Instrumented(e, solveObserver, callObserver)
	}
}

func (ie *InstrumentedEngine) call(op string) {
	if ie.callObserver != nil {
		ie.callObserver(op)
	}
}

func (ie *InstrumentedEngine) AddVariable() int32 {
	ie.call("add_variable")
	return ie.Engine.AddVariable()
}

func (ie *InstrumentedEngine) AddClause(lits []int32) {
	ie.call("add_clause")
	ie.Engine.AddClause(lits)
}

func (ie *InstrumentedEngine) Solve(assumptions []int32) Status {
	ie.call("solve")
	start := time.Now()
	st := ie.Engine.Solve(assumptions)
	if ie.solveObserver != nil {
		ie.solveObserver(st, time.Since(start))
	}
	return st
}

func (ie *InstrumentedEngine) ReadModel() []uint8 {
	ie.call("read_model")
	return ie.Engine.ReadModel()
}

func (ie *InstrumentedEngine) VariableCount() int32 {
	ie.call("variable_count")
	return ie.Engine.VariableCount()
}

func (ie *InstrumentedEngine) Destroy() {
	ie.call("destroy")
	ie.Engine.Destroy()
}

// Stats forwards to the wrapped engine if it is a StatsReporter.
func (ie *InstrumentedEngine) Stats() map[string]interface{} {
	if sr, ok := ie.Engine.(StatsReporter); ok {
		return sr.Stats()
	}
	return nil
}
