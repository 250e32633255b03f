// Package probe discovers equivalent literals by probing a CDCL solver:
// each literal is tried as a decision, the implied literals form a
// directed graph, and literals in the same strongly connected component
// of that graph are equivalent in every model. Equivalences are returned
// as a literal-to-representative mapping and registered with a postsolver
// so that models expressed over representatives can be lifted back.
package probe

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/crillab/gopresolve/internal/scc"
	"github.com/crillab/gopresolve/presolve"
	"github.com/crillab/gopresolve/solver"
)

// implicationGraph exposes the solver's propagation behavior as adjacency
// over literal indices: the neighbors of a literal are the literals its
// assumption propagates. Once the deterministic-time budget is spent,
// every query returns no edges, which degrades the SCC result to a valid
// under-approximation instead of corrupting it.
type implicationGraph struct {
	s        *solver.Solver
	n        int32
	detLimit float64 // 0 means unbounded
	detStart float64
}

func (g *implicationGraph) NumNodes() int32 { return g.n }

func (g *implicationGraph) Neighbors(node int32) []int32 {
	if g.detLimit > 0 && g.s.DeterministicTime()-g.detStart > g.detLimit {
		return nil
	}
	lit := solver.Lit(node)
	if g.s.FixedLitStatus(lit) != solver.Indet {
		return nil
	}
	implied := g.s.EnqueueDecisionAndBackjumpOnConflict(lit)
	if len(implied) == 0 {
		return nil
	}
	out := make([]int32, len(implied))
	for i, l := range implied {
		out[i] = int32(l)
	}
	return out
}

// EquivalentLiterals probes every literal of s, merges the strongly
// connected components of the resulting implication graph, and writes a
// literal-to-representative mapping into mapping, which must have length
// 2*s.NbVars(). For every unfixed literal l whose representative r
// differs from l, the binary clause (l ∨ ¬r) is recorded with post under
// associated literal l; when one side of an equivalence is already fixed,
// the other side is promoted to a unit instead. detLimit bounds the
// solver's deterministic-time spend, 0 meaning unbounded.
//
// Failed-literal detection is a side effect: a literal whose assumption
// conflicts immediately gets its negation asserted as a permanent unit.
// If probing proves the problem unsatisfiable, ErrUnsatDetected is
// returned.
func EquivalentLiterals(s *solver.Solver, post *presolve.Postsolver, detLimit float64, mapping []solver.Lit) error {
	n := s.NbVars()
	if len(mapping) != 2*n {
		return errors.Errorf("probe: mapping has length %d, want %d", len(mapping), 2*n)
	}
	if s.ResetToBase() == solver.Unsat {
		return errors.Wrap(presolve.ErrUnsatDetected, "probe: conflicting units at base level")
	}
	g := &implicationGraph{s: s, n: int32(2 * n), detLimit: detLimit, detStart: s.DeterministicTime()}
	comps := scc.Components(g)
	if s.CurrentStatus() == solver.Unsat {
		// A failed literal's negation conflicted with the base bindings.
		return errors.Wrap(presolve.ErrUnsatDetected, "probe: failed literal")
	}

	uf := newUnionFind(2 * n)
	for _, comp := range comps {
		if len(comp) < 2 {
			continue
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		rep := solver.Lit(comp[0])
		for _, m := range comp[1:] {
			lit := solver.Lit(m)
			// The SCC of ¬lit need not contain ¬rep (propagation is not
			// symmetric in general), so the negations are merged
			// explicitly alongside to keep find symmetric under negation.
			uf.union(lit, rep)
			uf.union(lit.Negation(), rep.Negation())
		}
	}

	// Canonical representative of each class: its smallest literal. The
	// classes are mirror-symmetric by construction, and negation preserves
	// relative order between distinct variables, so the canonical
	// representatives are symmetric too; this is asserted below because
	// every later consumer of the mapping silently relies on it.
	canon := make([]solver.Lit, 2*n)
	for l := range canon {
		canon[l] = -1
	}
	for l := solver.Lit(0); int(l) < 2*n; l++ {
		root := uf.find(l)
		if canon[root] == -1 {
			canon[root] = l
		}
	}
	rep := func(l solver.Lit) solver.Lit { return canon[uf.find(l)] }
	for l := solver.Lit(0); int(l) < 2*n; l++ {
		if rep(l) == rep(l.Negation()) {
			return errors.Wrap(presolve.ErrUnsatDetected, "probe: literal equivalent to its negation")
		}
		if rep(l).Negation() != rep(l.Negation()) {
			panic(errors.Errorf("probe: representative symmetry broken at literal %d", l))
		}
	}

	for l := solver.Lit(0); int(l) < 2*n; l++ {
		r := rep(l)
		mapping[l] = r
		if r == l {
			continue
		}
		fl, fr := s.FixedLitStatus(l), s.FixedLitStatus(r)
		switch {
		case fl != solver.Indet && fr == solver.Indet:
			s.AddUnitClause(oriented(r, fl))
		case fr != solver.Indet && fl == solver.Indet:
			s.AddUnitClause(oriented(l, fr))
		case fl == solver.Indet && fr == solver.Indet:
			if post != nil {
				post.Add(l, []solver.Lit{l, r.Negation()})
			}
		}
		if s.CurrentStatus() == solver.Unsat {
			return errors.Wrap(presolve.ErrUnsatDetected, "probe: equivalence contradicts fixed literal")
		}
	}
	return nil
}

// oriented returns l when fixed is Sat and ¬l when fixed is Unsat.
func oriented(l solver.Lit, fixed solver.Status) solver.Lit {
	if fixed == solver.Sat {
		return l
	}
	return l.Negation()
}

// unionFind is a union-find over literal indices with path compression.
// Unions are always performed pairwise with their mirror under negation,
// which keeps the partition symmetric.
type unionFind struct {
	parent []solver.Lit
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]solver.Lit, n)}
	for i := range uf.parent {
		uf.parent[i] = solver.Lit(i)
	}
	return uf
}

func (uf *unionFind) find(l solver.Lit) solver.Lit {
	for uf.parent[l] != l {
		uf.parent[l] = uf.parent[uf.parent[l]]
		l = uf.parent[l]
	}
	return l
}

func (uf *unionFind) union(a, b solver.Lit) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}
