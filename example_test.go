package simpsat_test

import (
	"fmt"

	"github.com/cespare/simpsat"
)

func ExampleSolver() {
	// Problem: (¬x ∨ ¬y) ∧ (¬y ∨ z) ∧ (x ∨ ¬z ∨ y) ∧ y
	s := simpsat.New()
	defer s.Close()
	x, y, z := s.NewVar(), s.NewVar(), s.NewVar()
	s.AddClause(x.Neg(), y.Neg())
	s.AddClause(y.Neg(), z.Pos())
	s.AddClause(x.Pos(), z.Neg(), y.Pos())
	s.AddClause(y.Pos())

	m, ok := s.Solve()
	if !ok {
		fmt.Println("not satisfiable")
		return
	}
	fmt.Println("satisfiable:", m)

	// Assumptions only hold for a single call.
	if _, ok := s.Solve(z.Neg()); !ok {
		fmt.Println("not satisfiable with ¬z")
	}
	// Output:
	// satisfiable: [¬x0 x1 x2]
	// not satisfiable with ¬z
}
