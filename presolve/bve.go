package presolve

import "github.com/crillab/gopresolve/solver"

// Bounded variable elimination with incidental blocked-clause
// elimination. Candidate variables are drawn from a min-heap keyed by how
// many clauses mention them, so cheap eliminations (pure literals, rarely
// used variables) are attempted first; the heap is refreshed whenever a
// removal or a new resolvent changes a variable's occurrence counts.

// eliminateVariables drives the elimination queue to exhaustion,
// interleaving a subsumption fixpoint over freshly added resolvents after
// each successful elimination. Returns false when unsat was derived.
func (ps *Presolver) eliminateVariables() bool {
	ps.pq = newVarQueue(ps.nbVars, func(v int32) int64 {
		pos := solver.Var(v).Lit()
		return int64(ps.st.size[pos]) + int64(ps.st.size[pos.Negation()])
	})
	for v := 0; v < ps.nbVars; v++ {
		ps.pq.push(int32(v))
	}
	for !ps.pq.empty() {
		v := solver.Var(ps.pq.popMin())
		ok, eliminated := ps.tryEliminate(v)
		if !ok {
			return false
		}
		if eliminated {
			if !ps.processAllClauses() {
				return false
			}
		}
	}
	ps.pq = nil
	return true
}

// tryEliminate decides whether eliminating x shrinks the formula and, if
// so, performs the elimination: all non-trivial resolvents on x are
// added, then every clause mentioning x is removed and recorded with the
// postsolver. Along the way, clauses with no non-trivial resolvent at all
// are blocked by x and removed immediately, even when the elimination
// itself is abandoned as too costly.
func (ps *Presolver) tryEliminate(x solver.Var) (ok, eliminated bool) {
	outer, inner := x.Lit(), x.Lit().Negation()
	s1, s2 := ps.st.size[outer], ps.st.size[inner]
	if s1 == 0 && s2 == 0 {
		return true, false
	}
	if s1 > 1 && s2 > 1 && int64(s1)*int64(s2) > int64(ps.params.BVEThreshold) {
		return true, false
	}
	ps.st.compactOcc(outer)
	ps.st.compactOcc(inner)
	if s1 > s2 {
		outer, inner = inner, outer
	}

	// Eliminating x replaces the clauses of both occurrence lists by the
	// resolvents, so the elimination pays off iff the resolvents' total
	// cost stays under the cost of what they replace.
	threshold := 0
	for _, id := range ps.st.occ[outer] {
		threshold += ps.params.BVEClauseWeight + len(ps.st.get(id))
	}
	for _, id := range ps.st.occ[inner] {
		threshold += ps.params.BVEClauseWeight + len(ps.st.get(id))
	}

	cost := 0
	tooLarge := false
	for _, ci := range append([]clauseID(nil), ps.st.occ[outer]...) {
		if !ps.st.live(ci) {
			continue
		}
		hasResolvent := false
		for _, cj := range ps.st.occ[inner] {
			if !ps.st.live(cj) {
				continue
			}
			rs := computeResolvantSize(outer, ps.st.get(ci), ps.st.get(cj))
			if rs < 0 {
				continue
			}
			hasResolvent = true
			cost += ps.params.BVEClauseWeight + rs
			if cost > threshold {
				tooLarge = true
			}
		}
		if !hasResolvent {
			// Every resolvent of ci on x is tautological: ci is blocked
			// by x and can go regardless of the elimination decision.
			ps.stats.BlockedClauses++
			ps.removeAndRegisterForPostsolve(ci, outer)
		}
	}
	if tooLarge {
		return true, false
	}

	outerIDs := liveIDs(ps.st, outer)
	innerIDs := liveIDs(ps.st, inner)
	var buf []solver.Lit
	for _, ci := range outerIDs {
		for _, cj := range innerIDs {
			res, ok := computeResolvant(outer, ps.st.get(ci), ps.st.get(cj), buf)
			buf = res
			if !ok {
				continue
			}
			if len(res) == 0 {
				return false, false
			}
			resolvent := make([]solver.Lit, len(res))
			copy(resolvent, res)
			ps.stats.ResolventsAdded++
			ps.addCanonical(resolvent)
		}
	}
	for _, ci := range outerIDs {
		ps.removeAndRegisterForPostsolve(ci, outer)
	}
	for _, ci := range innerIDs {
		ps.removeAndRegisterForPostsolve(ci, inner)
	}
	ps.stats.VariablesEliminated++
	if ps.log != nil {
		ps.log.WithField("var", int(x)+1).Debug("eliminated by resolution")
	}
	return true, true
}

// liveIDs snapshots the live entries of occ[lit]. The elimination loops
// both add clauses (resolvents) and remove clauses, so they must iterate
// over a copy taken before any mutation.
func liveIDs(st *store, lit solver.Lit) []clauseID {
	ids := make([]clauseID, 0, len(st.occ[lit]))
	for _, id := range st.occ[lit] {
		if st.live(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
