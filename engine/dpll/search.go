package dpll

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"

	"github.com/cespare/simpsat/engine"
)

// A literal represents an instance of a variable or its negation in a clause.
// The value is 2 times the variable value (index) or 2x+1 for negation.
type literal uint32

func (l literal) assn() assnVal {
	return assnVal(l&1) + 1
}

type assnVal uint8

const (
	unassigned assnVal = 0
	assnTrue   assnVal = 1
	assnFalse  assnVal = 2
)

func (a assnVal) inv() assnVal { return a ^ 3 }

func (a assnVal) String() string {
	switch a {
	case unassigned:
		return "unassigned"
	case assnTrue:
		return "true"
	case assnFalse:
		return "false"
	default:
		panic("unreached")
	}
}

type decision struct {
	trailIdx int // position of lit in the trail
	lit      literal
	flipped  bool // lit is the second polarity tried
}

// solver holds the state of a single search over an Engine's clauses.
type solver struct {
	clauses [][]literal
	occurs  [][]int

	assignments []assnVal
	trail       []literal // assigned literals in assignment order
	propIndex   int       // index of the first un-propagated trail literal
	decisions   []decision

	unassigned varHeap

	log   *logrus.Entry
	trace bool

	numDecisions    int64
	numImplications int64
	numConflicts    int64
}

func newSolver(e *Engine) *solver {
	sv := &solver{
		clauses:     e.clauses,
		occurs:      e.occurs,
		assignments: make([]assnVal, e.nvars),
		trail:       make([]literal, 0, e.nvars),
		log:         e.log,
		trace:       e.log.Logger.IsLevelEnabled(logrus.TraceLevel),
	}
	sv.unassigned = varHeap{
		scores: make([]int, e.nvars),
		inHeap: make([]bool, e.nvars),
	}
	for v := range sv.unassigned.scores {
		sv.unassigned.scores[v] = len(e.occurs[2*v]) + len(e.occurs[2*v+1])
	}
	return sv
}

// value returns the truth value of lit under the current assignment.
func (sv *solver) value(lit literal) assnVal {
	switch sv.assignments[lit>>1] {
	case unassigned:
		return unassigned
	case lit.assn():
		return assnTrue
	case lit.assn().inv():
		return assnFalse
	default:
		panic("bad assignment state")
	}
}

func (sv *solver) assign(lit literal) {
	sv.assignments[lit>>1] = lit.assn()
	sv.trail = append(sv.trail, lit)
}

// enqueue assigns lit at the root level. It returns false if lit is already
// false.
func (sv *solver) enqueue(lit literal) bool {
	switch sv.value(lit) {
	case assnTrue:
		return true
	case assnFalse:
		return false
	}
	sv.assign(lit)
	return true
}

func (sv *solver) solve(assumptions []literal) bool {
	for _, cls := range sv.clauses {
		if len(cls) == 1 && !sv.enqueue(cls[0]) {
			if sv.trace {
				sv.log.Tracef("unsat (contradicting unit %d)", sv.origLit(cls[0]))
			}
			return false
		}
	}
	for _, lit := range assumptions {
		if !sv.enqueue(lit) {
			if sv.trace {
				sv.log.Tracef("unsat (assumption %d is false)", sv.origLit(lit))
			}
			return false
		}
	}
	for v, score := range sv.unassigned.scores {
		if score > 0 && sv.assignments[v] == unassigned {
			sv.pushUnassigned(v)
		}
	}

	for {
		if !sv.bcp() {
			sv.numConflicts++
			if !sv.resolveConflict() {
				return false
			}
			continue
		}
		// Decide on the next var to set.
		lit, ok := sv.popUnassigned()
		if !ok {
			return true
		}
		sv.numDecisions++
		if sv.trace {
			sv.log.Tracef("assigning %d | %s", sv.origLit(lit), sv.stateString())
		}
		sv.decisions = append(sv.decisions, decision{
			trailIdx: len(sv.trail),
			lit:      lit,
		})
		sv.assign(lit)
	}
}

// bcp carries out boolean constraint propagation (BCP) which finds all the
// direct implications of the current variable state. It returns true once there
// are no more implications to be made or false if it locates a conflict.
func (sv *solver) bcp() bool {
	for sv.propIndex < len(sv.trail) {
		neg := sv.trail[sv.propIndex] ^ 1
		sv.propIndex++
	clauseLoop:
		for _, clauseIdx := range sv.occurs[neg] {
			unit := literal(0)
			free := 0
			for _, lit := range sv.clauses[clauseIdx] {
				switch sv.value(lit) {
				case assnTrue:
					// Clause is already satisfied.
					continue clauseLoop
				case unassigned:
					free++
					unit = lit
				}
			}
			switch free {
			case 0:
				if sv.trace {
					sv.log.Tracef("conflict at clause %d", clauseIdx)
				}
				return false
			case 1:
				if sv.trace {
					sv.log.Tracef("clause %d is unit (imp: %d)", clauseIdx, sv.origLit(unit))
				}
				sv.assign(unit)
				sv.numImplications++
			}
		}
	}
	return true
}

// resolveConflict tries to fix the current conflict by flipping the most
// recent decision that hasn't been tried both ways yet.
func (sv *solver) resolveConflict() bool {
	if sv.trace {
		sv.log.Tracef("resolveConflict | decisions: %s", pretty.Sprint(sv.decisions))
	}
	for len(sv.decisions) > 0 {
		di := len(sv.decisions) - 1
		d := sv.decisions[di]
		sv.undo(d.trailIdx)
		if d.flipped {
			sv.decisions = sv.decisions[:di]
			continue
		}
		// Flip d's assignment; the implications after it were rolled back.
		flipped := d.lit ^ 1
		sv.decisions[di] = decision{trailIdx: d.trailIdx, lit: flipped, flipped: true}
		sv.assign(flipped)
		sv.propIndex = d.trailIdx
		return true
	}
	return false // not satisfiable
}

// undo unassigns every trail literal at position n or later.
func (sv *solver) undo(n int) {
	for i := len(sv.trail) - 1; i >= n; i-- {
		v := int(sv.trail[i] >> 1)
		sv.assignments[v] = unassigned
		sv.pushUnassigned(v)
	}
	sv.trail = sv.trail[:n]
	if sv.propIndex > n {
		sv.propIndex = n
	}
}

func (sv *solver) readModel(dst []uint8) []uint8 {
	for _, a := range sv.assignments {
		switch a {
		case assnTrue:
			dst = append(dst, engine.True)
		case assnFalse:
			dst = append(dst, engine.False)
		default:
			// The var occurs in no clause and wasn't assumed.
			dst = append(dst, engine.DontCare)
		}
	}
	return dst
}

func (sv *solver) stateString() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, assn := range sv.assignments {
		var s string
		if i > 0 {
			s = ", "
		}
		fmt.Fprintf(&b, "%s%d:%c", s, i, assn.String()[0])
	}
	b.WriteString("}")
	return b.String()
}

func (sv *solver) origLit(lit literal) int {
	x := int(lit>>1) + 1
	if lit&1 == 1 {
		return -x
	}
	return x
}

// varHeap holds the unassigned vars as a max-heap ordered by how many
// clauses they occur in. Vars may be assigned while still in the heap;
// popUnassigned skips them.
type varHeap struct {
	scores []int
	inHeap []bool
	vars   []int
}

func (h *varHeap) Len() int { return len(h.vars) }

func (h *varHeap) Less(i, j int) bool {
	v0, v1 := h.vars[i], h.vars[j]
	if h.scores[v0] != h.scores[v1] {
		return h.scores[v0] > h.scores[v1]
	}
	return v0 < v1
}

func (h *varHeap) Swap(i, j int) { h.vars[i], h.vars[j] = h.vars[j], h.vars[i] }

func (h *varHeap) Push(x interface{}) {
	v := x.(int)
	h.inHeap[v] = true
	h.vars = append(h.vars, v)
}

func (h *varHeap) Pop() interface{} {
	v := h.vars[len(h.vars)-1]
	h.vars = h.vars[:len(h.vars)-1]
	h.inHeap[v] = false
	return v
}

func (sv *solver) pushUnassigned(v int) {
	if sv.unassigned.inHeap[v] || sv.unassigned.scores[v] == 0 {
		return
	}
	heap.Push(&sv.unassigned, v)
}

// popUnassigned returns the decision literal for the highest-scoring
// unassigned var, preferring the polarity that occurs more often.
func (sv *solver) popUnassigned() (literal, bool) {
	for sv.unassigned.Len() > 0 {
		v := heap.Pop(&sv.unassigned).(int)
		if sv.assignments[v] != unassigned {
			continue
		}
		pos := literal(v) << 1
		if len(sv.occurs[pos^1]) > len(sv.occurs[pos]) {
			return pos ^ 1, true
		}
		return pos, true
	}
	return 0, false
}
