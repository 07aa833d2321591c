package dpll

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/cespare/simpsat/engine"
	"github.com/cespare/simpsat/engine/enginetest"
)

func TestConformance(t *testing.T) {
	enginetest.Run(t, Factory())
}

func TestNormalize(t *testing.T) {
	e := New()
	for i := 0; i < 3; i++ {
		e.AddVariable()
	}
	e.AddClause([]int32{0, 2, 0, 4, 2})
	e.AddClause([]int32{0, 3, 1}) // tautology
	if len(e.clauses) != 1 {
		t.Fatalf("got %d clauses; want 1", len(e.clauses))
	}
	if got, want := len(e.clauses[0]), 3; got != want {
		t.Fatalf("got clause of %d literals; want %d", got, want)
	}
	if got := len(e.occurs[0]); got != 1 {
		t.Fatalf("literal 0 occurs in %d clauses; want 1", got)
	}
	if st := e.Solve([]int32{1, 3}); st != engine.Sat {
		t.Fatalf("Solve: got %s; want SAT", st)
	}
	if got := e.ReadModel(); got[2] != engine.True {
		t.Fatalf("model %v: want x2 true", got)
	}
}

func TestUnusedVarsAreDontCare(t *testing.T) {
	e := New()
	for i := 0; i < 4; i++ {
		e.AddVariable()
	}
	e.AddClause([]int32{2, 4})
	e.AddClause([]int32{6, 7}) // tautology: x3 never occurs
	if st := e.Solve(nil); st != engine.Sat {
		t.Fatalf("Solve: got %s; want SAT", st)
	}
	model := e.ReadModel()
	for _, v := range []int{0, 3} {
		if model[v] != engine.DontCare {
			t.Errorf("x%d: got %d; want don't-care", v, model[v])
		}
	}
	for _, v := range []int{1, 2} {
		if model[v] == engine.DontCare {
			t.Errorf("x%d: got don't-care; want a value", v)
		}
	}
}

func TestUnknownLiteralPanics(t *testing.T) {
	e := New()
	e.AddVariable()
	defer func() {
		if recover() == nil {
			t.Fatal("AddClause with unknown variable did not panic")
		}
	}()
	e.AddClause([]int32{2})
}

func TestStats(t *testing.T) {
	e := New()
	for i := 0; i < 3; i++ {
		e.AddVariable()
	}
	// x0 -> x1, x1 -> x2, and at least one of them.
	e.AddClause([]int32{1, 2})
	e.AddClause([]int32{3, 4})
	e.AddClause([]int32{0, 2, 4})
	e.Solve(nil)
	e.Solve([]int32{5})
	stats := e.Stats()
	if got := stats["num solves"]; got != int64(2) {
		t.Errorf("num solves: got %v; want 2", got)
	}
	if got := stats["num decisions"].(int64); got == 0 {
		t.Error("num decisions: got 0; want at least 1")
	}
}

func TestTrace(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	e := New(WithLogger(logrus.NewEntry(logger)))
	for i := 0; i < 2; i++ {
		e.AddVariable()
	}
	e.AddClause([]int32{0, 2})
	e.AddClause([]int32{0, 3})
	e.AddClause([]int32{1, 2})
	e.AddClause([]int32{1, 3})
	if st := e.Solve(nil); st != engine.Unsat {
		t.Fatalf("Solve: got %s; want UNSAT", st)
	}
	if len(hook.AllEntries()) == 0 {
		t.Fatal("no trace output")
	}
	for _, entry := range hook.AllEntries() {
		if entry.Data["engine"] != "dpll" {
			t.Fatalf("entry %q missing engine field", entry.Message)
		}
	}

	hook.Reset()
	logger.SetLevel(logrus.DebugLevel)
	e.Solve(nil)
	if n := len(hook.AllEntries()); n != 0 {
		t.Fatalf("got %d entries below trace level; want 0", n)
	}
}

func TestDestroy(t *testing.T) {
	e := New()
	e.AddVariable()
	e.Destroy()
	defer func() {
		if recover() == nil {
			t.Fatal("use after Destroy did not panic")
		}
	}()
	e.Solve(nil)
}
