// Package enginetest is a conformance suite for engine.Engine
// implementations. Engine packages call Run from their tests.
package enginetest

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/cespare/simpsat/engine"
)

// Run runs every conformance test against engines created by newEngine.
func Run(t *testing.T, newEngine engine.Factory) {
	for _, tt := range []struct {
		name string
		fn   func(*testing.T, engine.Engine)
	}{
		{"VariableIndexes", testVariableIndexes},
		{"EmptyProblem", testEmptyProblem},
		{"Toggling", testToggling},
		{"AssumptionsDoNotPersist", testAssumptionsDoNotPersist},
		{"EmptyClause", testEmptyClause},
		{"Pigeonhole", testPigeonhole},
		{"Randomized", testRandomized},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			require.NotNil(t, e)
			defer e.Destroy()
			tt.fn(t, e)
		})
	}
	t.Run("RandomIncremental", func(t *testing.T) {
		testRandomIncremental(t, newEngine)
	})
}

// Lit returns the wire literal of variable v.
func Lit(v int32, negated bool) int32 {
	if negated {
		return 2*v + 1
	}
	return 2 * v
}

func addVars(e engine.Engine, n int) []int32 {
	vars := make([]int32, n)
	for i := range vars {
		vars[i] = e.AddVariable()
	}
	return vars
}

func testVariableIndexes(t *testing.T, e engine.Engine) {
	require.Equal(t, int32(0), e.VariableCount())
	for i := int32(0); i < 10; i++ {
		require.Equal(t, i, e.AddVariable())
	}
	require.Equal(t, int32(10), e.VariableCount())
}

func testEmptyProblem(t *testing.T, e engine.Engine) {
	require.Equal(t, engine.Sat, e.Solve(nil))
	require.Empty(t, e.ReadModel())

	addVars(e, 3)
	require.Equal(t, engine.Sat, e.Solve(nil))
	require.Len(t, e.ReadModel(), 3)
}

func testToggling(t *testing.T, e engine.Engine) {
	x := addVars(e, 2)

	e.AddClause([]int32{Lit(x[0], true), Lit(x[1], false)})
	require.Equal(t, engine.Sat, e.Solve(nil))
	requireSatisfies(t, e.ReadModel(), [][]int32{{Lit(x[0], true), Lit(x[1], false)}})

	e.AddClause([]int32{Lit(x[0], false), Lit(x[1], true)})
	require.Equal(t, engine.Sat, e.Solve(nil))
	model := e.ReadModel()
	require.Equal(t, model[x[0]], model[x[1]], "x0 and x1 must be equal")

	e.AddClause([]int32{Lit(x[0], true), Lit(x[1], true)})
	require.Equal(t, engine.Sat, e.Solve(nil))
	require.Equal(t, []uint8{engine.False, engine.False}, e.ReadModel()[:2])

	e.AddClause([]int32{Lit(x[0], false), Lit(x[1], false)})
	require.Equal(t, engine.Unsat, e.Solve(nil))
	require.Equal(t, engine.Unsat, e.Solve(nil), "UNSAT must be stable without new clauses")
}

func testAssumptionsDoNotPersist(t *testing.T, e engine.Engine) {
	x := addVars(e, 2)
	e.AddClause([]int32{Lit(x[0], false)})

	require.Equal(t, engine.Unsat, e.Solve([]int32{Lit(x[0], true)}))
	require.Equal(t, engine.Sat, e.Solve(nil))
	require.Equal(t, engine.True, e.ReadModel()[x[0]])
	require.Equal(t, engine.Unsat, e.Solve([]int32{Lit(x[0], true)}))

	// x1 occurs in no clause.
	require.Equal(t, engine.Sat, e.Solve([]int32{Lit(x[1], true)}))
	require.Equal(t, engine.False, e.ReadModel()[x[1]])
	require.Equal(t, engine.Sat, e.Solve([]int32{Lit(x[1], false)}))
	require.Equal(t, engine.True, e.ReadModel()[x[1]])
	require.Equal(t, engine.Unsat, e.Solve([]int32{Lit(x[1], false), Lit(x[1], true)}))
	require.Equal(t, engine.Sat, e.Solve(nil))
}

func testEmptyClause(t *testing.T, e engine.Engine) {
	x := addVars(e, 1)
	e.AddClause([]int32{Lit(x[0], false)})
	require.Equal(t, engine.Sat, e.Solve(nil))
	e.AddClause(nil)
	require.Equal(t, engine.Unsat, e.Solve(nil))
	e.AddVariable()
	require.Equal(t, engine.Unsat, e.Solve(nil))
}

// testPigeonhole checks that 3 pigeons don't fit in 2 holes, which needs
// real backtracking to refute.
func testPigeonhole(t *testing.T, e engine.Engine) {
	const pigeons, holes = 3, 2
	var p [pigeons][holes]int32
	for i := range p {
		for j := range p[i] {
			p[i][j] = e.AddVariable()
		}
	}
	for i := range p {
		cls := make([]int32, holes)
		for j := range p[i] {
			cls[j] = Lit(p[i][j], false)
		}
		e.AddClause(cls)
	}
	require.Equal(t, engine.Sat, e.Solve(nil), "before exclusion clauses")
	for j := 0; j < holes; j++ {
		for a := 0; a < pigeons; a++ {
			for b := a + 1; b < pigeons; b++ {
				e.AddClause([]int32{Lit(p[a][j], true), Lit(p[b][j], true)})
			}
		}
	}
	require.Equal(t, engine.Unsat, e.Solve(nil))
}

func testRandomized(t *testing.T, e engine.Engine) {
	const numVars, numClauses = 12, 40
	rng := rand.New(rand.NewSource(1))
	planted := make([]bool, numVars)
	for i := range planted {
		planted[i] = rng.Intn(2) == 1
	}
	addVars(e, numVars)
	var clauses [][]int32
	for round := 0; round < 20; round++ {
		for i := 0; i < numClauses/20+1; i++ {
			cls := randomClause(rng, planted)
			clauses = append(clauses, cls)
			e.AddClause(cls)
		}
		v := int32(rng.Intn(numVars))
		assumption := Lit(v, !planted[v])
		msg := fmt.Sprintf("round %d, assuming %d", round, assumption)
		require.Equal(t, engine.Sat, e.Solve([]int32{assumption}), msg)
		model := e.ReadModel()
		requireSatisfies(t, model, append(clauses, []int32{assumption}))
	}
}

// randomClause returns a clause of 1 to 3 literals over distinct vars that
// is satisfied by planted.
func randomClause(rng *rand.Rand, planted []bool) []int32 {
	perm := rng.Perm(len(planted))
	n := rng.Intn(3) + 1
	fixed := rng.Intn(n) // pick one literal to match planted
	cls := make([]int32, n)
	for i := range cls {
		v := int32(perm[i])
		neg := rng.Intn(2) == 1
		if i == fixed {
			neg = !planted[v]
		}
		cls[i] = Lit(v, neg)
	}
	return cls
}

// requireSatisfies checks that every clause has a true literal in model or
// contains a literal and its negation.
func requireSatisfies(t *testing.T, model []uint8, clauses [][]int32) {
	t.Helper()
clauseLoop:
	for _, cls := range clauses {
		for _, lit := range cls {
			if lo.Contains(cls, lit^1) {
				continue clauseLoop
			}
			want := engine.True
			if lit&1 == 1 {
				want = engine.False
			}
			if int(lit>>1) < len(model) && model[lit>>1] == want {
				continue clauseLoop
			}
		}
		t.Fatalf("model %v does not satisfy clause %v", model, cls)
	}
}

// testRandomIncremental grows random unplanted formulas one clause at a time
// and checks every verdict, with and without assumptions, against
// exhaustive enumeration. Formulas usually become UNSAT partway through, so
// clauses keep arriving after both SAT and UNSAT results.
func testRandomIncremental(t *testing.T, newEngine engine.Factory) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		numVars := rng.Intn(6) + 3
		e := newEngine()
		addVars(e, numVars)
		var clauses [][]int32
		for step := 0; step < 4*numVars; step++ {
			cls := make([]int32, rng.Intn(3)+1)
			for i := range cls {
				cls[i] = Lit(int32(rng.Intn(numVars)), rng.Intn(2) == 1)
			}
			clauses = append(clauses, cls)
			e.AddClause(cls)

			var assumptions []int32
			for i := rng.Intn(3); i > 0; i-- {
				assumptions = append(assumptions, Lit(int32(rng.Intn(numVars)), rng.Intn(2) == 1))
			}
			for _, as := range [][]int32{nil, assumptions} {
				want := engine.Unsat
				if satisfiable(numVars, clauses, as) {
					want = engine.Sat
				}
				st := e.Solve(as)
				require.Equal(t, want, st, "seed %d, step %d, assumptions %v, clauses %v", seed, step, as, clauses)
				if st == engine.Sat {
					all := append(append([][]int32(nil), clauses...), lo.Map(as, func(lit int32, _ int) []int32 {
						return []int32{lit}
					})...)
					requireSatisfies(t, e.ReadModel(), all)
				}
			}
		}
		e.Destroy()
	}
}

// satisfiable reports by enumeration whether some assignment of numVars
// variables satisfies every clause and assumption.
func satisfiable(numVars int, clauses [][]int32, assumptions []int32) bool {
	isTrue := func(assn uint, lit int32) bool {
		val := assn>>uint(lit>>1)&1 == 1
		return val != (lit&1 == 1)
	}
assnLoop:
	for assn := uint(0); assn < 1<<uint(numVars); assn++ {
		for _, lit := range assumptions {
			if !isTrue(assn, lit) {
				continue assnLoop
			}
		}
		for _, cls := range clauses {
			if !lo.SomeBy(cls, func(lit int32) bool { return isTrue(assn, lit) }) {
				continue assnLoop
			}
		}
		return true
	}
	return false
}
