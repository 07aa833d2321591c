// Package dimacs reads and writes problems in the DIMACS CNF format and
// loads them into a simpsat.Solver.
package dimacs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/cespare/simpsat"
)

// A CNF is a formula in conjunctive normal form. Each clause is a list of
// non-zero integers; negative integers are negated variables. Variables are
// numbered from 1.
type CNF struct {
	// Vars is the number of variables. It is at least the largest variable
	// appearing in Clauses.
	Vars    int
	Clauses [][]int
}

// Parse parses text in the DIMACS CNF format.
//
// For convenience, a few non-standard variations are accepted:
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in the
//     preamble.
//   - The problem line may be missing.
//   - A line containing a single % ends the input.
func Parse(r io.Reader) (*CNF, error) {
	var problem struct {
		seen    bool
		vars    int
		clauses int
	}
	var clauses [][]int
	var clause []int
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		// Some CNF formats attach extra data in a trailer after a line
		// containing a single %.
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 || len(clause) > 0 {
				return nil, errors.New("problem line appears after clauses")
			}
			if problem.seen {
				return nil, errors.New("multiple problem lines")
			}
			fields := strings.Fields(line)
			if len(fields) != 4 {
				return nil, fmt.Errorf("malformed problem line %q", line)
			}
			if fields[0] != "p" {
				return nil, fmt.Errorf("problem line starts with unexpected signifier %q", fields[0])
			}
			if fields[1] != "cnf" {
				return nil, fmt.Errorf("only cnf supported; got %q", fields[1])
			}
			var err error
			problem.vars, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("malformed #vars in problem line: %s", err)
			}
			problem.clauses, err = strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("malformed #clauses in problem line: %s", err)
			}
			if problem.vars < 0 {
				return nil, fmt.Errorf("invalid #vars %d", problem.vars)
			}
			if problem.clauses < 0 {
				return nil, fmt.Errorf("invalid #clauses %d", problem.clauses)
			}
			problem.seen = true
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid variable: %s", err)
			}
			if n == 0 {
				if clause == nil {
					clause = []int{}
				}
				clauses = append(clauses, clause)
				clause = nil
			} else {
				if n > simpsat.MaxVarIndex || n < -simpsat.MaxVarIndex {
					return nil, fmt.Errorf("variable %d out of range", n)
				}
				clause = append(clause, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	maxVar := 0
	for _, clause := range clauses {
		for _, v := range clause {
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	cnf := &CNF{Vars: maxVar, Clauses: clauses}
	if problem.seen {
		if maxVar > problem.vars {
			return nil, fmt.Errorf("formula contains var %d, but problem line asserts %d vars (only vars in [1, %d] expected)",
				maxVar, problem.vars, problem.vars)
		}
		if len(clauses) != problem.clauses {
			return nil, fmt.Errorf("problem line specifies %d clauses, but there are %d", problem.clauses, len(clauses))
		}
		// Allow some vars to be missing.
		cnf.Vars = problem.vars
	}
	return cnf, nil
}

// Write writes cnf to w in the DIMACS CNF format.
func Write(w io.Writer, cnf *CNF) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", cnf.Vars, len(cnf.Clauses))
	for _, clause := range cnf.Clauses {
		for _, n := range clause {
			bw.WriteString(strconv.Itoa(n))
			bw.WriteByte(' ')
		}
		bw.WriteString("0\n")
	}
	return bw.Flush()
}

// Load creates cnf.Vars new variables in s and adds every clause of cnf.
// DIMACS variable k corresponds to the k-1'th returned Var.
func Load(s *simpsat.Solver, cnf *CNF) []simpsat.Var {
	vars := lo.Times(cnf.Vars, func(int) simpsat.Var { return s.NewVar() })
	for _, clause := range cnf.Clauses {
		s.AddClause(Lits(vars, clause)...)
	}
	return vars
}

// Lits converts DIMACS literals to Lits of the variables returned by Load.
func Lits(vars []simpsat.Var, clause []int) []simpsat.Lit {
	return lo.Map(clause, func(n int, _ int) simpsat.Lit {
		if n < 0 {
			return vars[-n-1].Neg()
		}
		return vars[n-1].Pos()
	})
}

// Ints converts lits to DIMACS literals of the variables returned by Load.
// Load numbers its variables consecutively, so for a fresh Solver this is
// the same as calling Lit.Dimacs on each literal.
func Ints(vars []simpsat.Var, lits []simpsat.Lit) []int {
	if len(vars) == 0 {
		return []int{}
	}
	base := vars[0].Index()
	return lo.Map(lits, func(lit simpsat.Lit, _ int) int {
		n := lit.Var().Index() - base + 1
		if lit.IsNeg() {
			return -n
		}
		return n
	})
}
