package simpsat

import "fmt"

// A Var is a propositional variable. Vars are minted by a Solver starting
// at 0 and increasing by one with each call to NewVar.
type Var int32

// MaxVarIndex is the largest variable index whose literals still fit in the
// int32 wire encoding.
const MaxVarIndex = 1<<30 - 1

// VarFromIndex returns the Var with index i.
// It panics if i is negative or greater than MaxVarIndex.
func VarFromIndex(i int) Var {
	if i < 0 || i > MaxVarIndex {
		panic(fmt.Sprintf("simpsat: variable index %d out of range", i))
	}
	return Var(i)
}

// Index returns the zero-based index of v.
func (v Var) Index() int { return int(v) }

// Pos returns the positive literal of v.
func (v Var) Pos() Lit { return Lit(v << 1) }

// Neg returns the negated literal of v.
func (v Var) Neg() Lit { return Lit(v<<1 | 1) }

func (v Var) String() string { return fmt.Sprintf("x%d", int32(v)) }

// A Lit is a variable together with a polarity.
// The value is 2 times the variable index, plus 1 if the literal is negated.
// This is also the encoding passed to an engine.
type Lit int32

// NewLit returns the literal of v, negated if negated is set.
func NewLit(v Var, negated bool) Lit {
	l := v.Pos()
	if negated {
		l |= 1
	}
	return l
}

// LitFromDimacs converts a DIMACS-style literal (1-based variable, negative
// for negation) to a Lit. It panics if n is 0.
func LitFromDimacs(n int) Lit {
	switch {
	case n > 0:
		return VarFromIndex(n - 1).Pos()
	case n < 0:
		return VarFromIndex(-n - 1).Neg()
	default:
		panic("simpsat: zero DIMACS literal")
	}
}

// Var returns the variable of l.
func (l Lit) Var() Var { return Var(l >> 1) }

// IsNeg reports whether l is a negated literal.
func (l Lit) IsNeg() bool { return l&1 != 0 }

// Not returns the negation of l.
func (l Lit) Not() Lit { return l ^ 1 }

// Dimacs returns l in the DIMACS convention.
func (l Lit) Dimacs() int {
	n := int(l>>1) + 1
	if l.IsNeg() {
		return -n
	}
	return n
}

func (l Lit) String() string {
	if l.IsNeg() {
		return "¬" + l.Var().String()
	}
	return l.Var().String()
}
