package dimacs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cespare/simpsat"
)

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		text string
		want *CNF
	}{
		{
			text: `
c Trivial
p cnf 1 1
1 0
`,
			want: &CNF{Vars: 1, Clauses: [][]int{{1}}},
		},
		{
			text: `
c Empty clauses
p cnf 3 5
1 3 0 0 -3 0
0 -2 -1
`,
			want: &CNF{Vars: 3, Clauses: [][]int{{1, 3}, {}, {-3}, {}, {-2, -1}}},
		},
		{
			text: `
c DIMACS example file
c
p cnf 4 3
1 3 -4 0
4 0 2
-3
`,
			want: &CNF{Vars: 4, Clauses: [][]int{{1, 3, -4}, {4}, {2, -3}}},
		},
		{
			text: `
c Missing problem line
1 -2 0
c comment between clauses
2 5 0
`,
			want: &CNF{Vars: 5, Clauses: [][]int{{1, -2}, {2, 5}}},
		},
		{
			text: `
c Unused vars
p cnf 10 1
-7 0
%
this is ignored
`,
			want: &CNF{Vars: 10, Clauses: [][]int{{-7}}},
		},
	} {
		text := strings.TrimSpace(tt.text)
		name := strings.TrimPrefix(text[:strings.IndexByte(text, '\n')], "c ")
		t.Run(name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(text))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tt.want, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Parse (-got, +want):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		text string
		want string
	}{
		{"late problem line", "1 0\np cnf 1 1\n", "problem line appears after clauses"},
		{"two problem lines", "p cnf 1 1\np cnf 1 1\n1 0\n", "multiple problem lines"},
		{"not cnf", "p sat 1 1\n", `only cnf supported; got "sat"`},
		{"short problem line", "p cnf 1\n", `malformed problem line "p cnf 1"`},
		{"bad literal", "p cnf 1 1\n1 x 0\n", "invalid variable"},
		{"too many vars", "p cnf 2 1\n1 3 0\n", "formula contains var 3"},
		{"wrong clause count", "p cnf 2 2\n1 2 0\n", "problem line specifies 2 clauses, but there are 1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.text))
			if err == nil {
				t.Fatal("got nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got error %q; want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cnf := &CNF{Vars: 4, Clauses: [][]int{{1, -2}, {}, {3, 4, -1}}}
	var b strings.Builder
	if err := Write(&b, cnf); err != nil {
		t.Fatal(err)
	}
	const want = "p cnf 4 3\n1 -2 0\n0\n3 4 -1 0\n"
	if b.String() != want {
		t.Fatalf("Write: got\n%s\nwant\n%s", b.String(), want)
	}
	got, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, cnf, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Parse(Write(cnf)) (-got, +want):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	cnf := &CNF{Vars: 3, Clauses: [][]int{{1, -2}, {2}, {-1, 3}}}
	s := simpsat.New()
	defer s.Close()
	vars := Load(s, cnf)
	if len(vars) != 3 || s.NumVars() != 3 || s.NumClauses() != 3 {
		t.Fatalf("Load: got %d vars (%d in solver), %d clauses", len(vars), s.NumVars(), s.NumClauses())
	}
	m, ok := s.Solve()
	if !ok {
		t.Fatal("got UNSAT; want SAT")
	}
	if diff := cmp.Diff(Ints(vars, m.Lits()), []int{1, 2, 3}); diff != "" {
		t.Fatalf("model (-got, +want):\n%s", diff)
	}
	if _, ok := s.Solve(Lits(vars, []int{-3})...); ok {
		t.Fatal("got SAT under assumption -3; want UNSAT")
	}
}
