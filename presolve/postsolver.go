package presolve

import (
	"github.com/pkg/errors"

	"github.com/crillab/gopresolve/solver"
)

// Postsolver records every clause removal a Presolver performs and
// replays those records, in reverse, to lift a model of the presolved
// problem back into a model of the original one. It owns its record
// arrays and reverse mapping exclusively; nothing else writes to them.
type Postsolver struct {
	// assocLit[i] is the associated literal used to remove record i's
	// clause (the pivot for SSR-as-removal cases don't apply here; for
	// BVE/BCE removals it is the occurrence of the eliminated variable in
	// that specific clause, and for probed equivalences it is the
	// literal side the equivalence was registered for).
	assocLit []solver.Lit
	// clauseLits is the CSR-style concatenation of every record's clause,
	// sliced by start.
	clauseLits []solver.Lit
	start      []int32 // start[i]..start[i+1] bounds record i's clause; len(start) == len(assocLit)+1

	// reverseMapping maps a variable in the *current* (most reduced)
	// space back to the original space. It starts as the identity and is
	// composed, right-to-left, with each ApplyMapping call.
	reverseMapping []solver.Var

	// assignment is the postsolver's private, original-space assignment,
	// built by PostsolveSolution and FixVariable.
	assignment []solver.Lit // assignment[v] is v's bound literal, or -1 if unassigned

	nbVars int    // size of the original variable space
	fixed  []bool // fixed[v] (original space) is true once FixVariable has set it
}

// NewPostsolver returns a Postsolver for a problem with n original
// variables. The reverse mapping starts as the identity.
func NewPostsolver(n int) *Postsolver {
	p := &Postsolver{
		start:          []int32{0},
		reverseMapping: make([]solver.Var, n),
		nbVars:         n,
		fixed:          make([]bool, n),
	}
	for v := range p.reverseMapping {
		p.reverseMapping[v] = solver.Var(v)
	}
	return p
}

// reverseVar maps a variable in the solver's current space back to the
// original space, panicking with an InvariantViolation if v has already
// been eliminated: reverse-mapping an eliminated variable is always a
// programmer error.
func (p *Postsolver) reverseVar(v solver.Var) solver.Var {
	if int(v) >= len(p.reverseMapping) {
		panicInvariant("reverseVar: variable %d out of range (have %d)", v, len(p.reverseMapping))
	}
	return p.reverseMapping[v]
}

func (p *Postsolver) reverseLit(l solver.Lit) solver.Lit {
	return p.reverseVar(l.Var()).SignedLit(!l.IsPositive())
}

// Add records that clause was removed with x as its associated literal.
// Both are translated through the current reverse mapping before being
// stored, so every stored record is already in original-variable space.
// clause must contain x (after mapping, this invariant still holds since
// the mapping is literal-wise).
func (p *Postsolver) Add(x solver.Lit, clause []solver.Lit) {
	origX := p.reverseLit(x)
	found := false
	for _, l := range clause {
		origL := p.reverseLit(l)
		p.clauseLits = append(p.clauseLits, origL)
		if origL == origX {
			found = true
		}
	}
	if !found {
		panicInvariant("Postsolver.Add: associated literal %d not found in recorded clause", origX.Int())
	}
	p.assocLit = append(p.assocLit, origX)
	p.start = append(p.start, int32(len(p.clauseLits)))
}

// FixVariable marks x as assigned true in the postsolver's private
// assignment (after translating through the reverse mapping), for
// variables that are fixed outright rather than eliminated by resolution
// (e.g. a unit clause discovered by probing). It fails if x's variable is
// already assigned to the opposite value.
func (p *Postsolver) FixVariable(x solver.Lit) error {
	orig := p.reverseLit(x)
	v := orig.Var()
	if p.ensureAssignment(); p.assignment[v] != -1 && p.assignment[v] != orig {
		return errors.Errorf("presolve: FixVariable: %d already assigned", orig.Int())
	}
	p.assignment[v] = orig
	p.fixed[v] = true
	return nil
}

func (p *Postsolver) ensureAssignment() bool {
	if p.assignment == nil {
		p.assignment = make([]solver.Lit, p.nbVars)
		for i := range p.assignment {
			p.assignment[i] = -1
		}
	}
	return true
}

// ApplyMapping composes a new variable renaming (old space -> new space,
// with -1 marking a variable absent from the new space) on top of the
// existing reverse mapping, so that records added after a further
// reduction still resolve back to the very first, original space. This
// is pushed by Presolver.LoadInto and by the prober whenever it merges
// equivalence classes that the caller chooses to represent by renaming.
func (p *Postsolver) ApplyMapping(oldToNew []solver.Var) {
	newReverse := make([]solver.Var, countSurvivors(oldToNew))
	for oldV, newV := range oldToNew {
		if newV == -1 {
			continue
		}
		newReverse[newV] = p.reverseMapping[oldV]
	}
	p.reverseMapping = newReverse
}

func countSurvivors(oldToNew []solver.Var) int {
	max := 0
	for _, v := range oldToNew {
		if v != -1 && int(v)+1 > max {
			max = int(v) + 1
		}
	}
	return max
}

// PostsolveSolution lifts a fully-assigned model of the presolved problem
// (indexed by the *current*, reduced variable space) back into a model of
// the original problem.
func (p *Postsolver) PostsolveSolution(reducedModel []bool) []bool {
	p.ensureAssignment()
	for v, r := range p.reverseMapping {
		if p.assignment[r] != -1 {
			continue // already fixed, e.g. by FixVariable
		}
		p.assignment[r] = r.SignedLit(!reducedModel[v])
	}
	for v, lit := range p.assignment {
		if lit == -1 { // defensive: no record should leave a gap, but cover it
			p.assignment[v] = solver.Var(v).Lit()
		}
	}
	p.postsolve()
	out := make([]bool, len(p.assignment))
	for v, lit := range p.assignment {
		out[v] = lit.IsPositive()
	}
	return out
}

// ExtractAndPostsolveSolution lifts the model of a solver that just
// answered Sat back into the original variable space. It is shorthand
// for PostsolveSolution(s.Model()).
func (p *Postsolver) ExtractAndPostsolveSolution(s *solver.Solver) []bool {
	return p.PostsolveSolution(s.Model())
}

// postsolve walks records from last to first, restoring every removed
// clause's satisfaction: if any literal of the recorded clause is
// already true, the record is satisfied and nothing changes; otherwise
// the associated literal is flipped to true. The invariant maintained is
// that after processing record i, every recorded clause with a higher
// index is satisfied.
func (p *Postsolver) postsolve() {
	for i := len(p.assocLit) - 1; i >= 0; i-- {
		clause := p.clauseLits[p.start[i]:p.start[i+1]]
		if p.clauseSatisfied(clause) {
			continue
		}
		assoc := p.assocLit[i]
		p.assignment[assoc.Var()] = assoc
	}
}

func (p *Postsolver) clauseSatisfied(clause []solver.Lit) bool {
	for _, l := range clause {
		if p.assignment[l.Var()] == l {
			return true
		}
	}
	return false
}
