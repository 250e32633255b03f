package presolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/gopresolve/solver"
)

// checkOccurrences verifies the occurrence-index invariant: for every
// literal, size counts exactly the live clauses containing it, and every
// live clause is indexed under each of its literals exactly once.
func checkOccurrences(t *testing.T, ps *Presolver) {
	t.Helper()
	st := ps.st
	for l := 0; l < len(st.occ); l++ {
		lit := solver.Lit(l)
		live := 0
		for _, id := range st.occ[lit] {
			if !st.live(id) {
				continue
			}
			live++
			found := false
			for _, l2 := range st.get(id) {
				if l2 == lit {
					found = true
				}
			}
			require.True(t, found, "clause %d indexed under literal %d it does not contain", id, lit.Int())
		}
		require.EqualValues(t, st.size[lit], live, "size mismatch for literal %d", lit.Int())
	}
	for id := range st.clauses {
		if !st.live(clauseID(id)) {
			continue
		}
		for _, l := range st.get(clauseID(id)) {
			n := 0
			for _, id2 := range st.occ[l] {
				if id2 == clauseID(id) {
					n++
				}
			}
			require.Equal(t, 1, n, "clause %d appears %d times in occ[%d]", id, n, l.Int())
		}
	}
}

// liveClauses returns the live clauses as sorted CNF integer slices.
func liveClauses(ps *Presolver) [][]int {
	var res [][]int
	for id := range ps.st.clauses {
		if !ps.st.live(clauseID(id)) {
			continue
		}
		c := make([]int, 0, len(ps.st.get(clauseID(id))))
		for _, l := range ps.st.get(clauseID(id)) {
			c = append(c, int(l.Int()))
		}
		res = append(res, c)
	}
	return res
}

func addAll(t *testing.T, ps *Presolver, clauses [][]int) {
	t.Helper()
	for _, c := range clauses {
		require.NoError(t, ps.Add(lits(c...)))
	}
}

func TestAddCanonicalizes(t *testing.T) {
	ps := NewPresolver(3)
	require.NoError(t, ps.Add([]solver.Lit{
		solver.IntToLit(3), solver.IntToLit(1), solver.IntToLit(3), solver.IntToLit(-2),
	}))
	got := liveClauses(ps)
	require.Equal(t, [][]int{{1, -2, 3}}, got)
	checkOccurrences(t, ps)
}

func TestAddTrivialClause(t *testing.T) {
	ps := NewPresolver(2)
	require.NoError(t, ps.Add(lits(1, -1, 2)))
	require.Equal(t, 0, ps.NumClauses())
	require.EqualValues(t, 1, ps.Stats().TrivialClauses)
}

func TestAddEmptyClause(t *testing.T) {
	ps := NewPresolver(1)
	err := ps.Add(nil)
	require.ErrorIs(t, err, ErrUnsatDetected)
}

func TestSubsumptionRemovesClause(t *testing.T) {
	ps := NewPresolver(3)
	addAll(t, ps, [][]int{{1, 2, 3}, {1, 2}})
	require.True(t, ps.Presolve())
	checkOccurrences(t, ps)
	require.EqualValues(t, 1, ps.Stats().ClausesSubsumed)
	// The subsumed {1,2,3} must be gone; {1,2} then falls to variable
	// elimination since every variable is cheap to eliminate.
	for _, c := range liveClauses(ps) {
		require.NotEqual(t, []int{1, 2, 3}, c)
	}
}

func TestSelfSubsumingResolution(t *testing.T) {
	ps := NewPresolver(3)
	// {a,b,c} and {¬a,b}: SSR strengthens the first to {b,c}.
	addAll(t, ps, [][]int{{1, 2, 3}, {-1, 2}})
	require.True(t, ps.processAllClauses())
	checkOccurrences(t, ps)
	require.EqualValues(t, 1, ps.Stats().ClausesStrengthened)
	require.Equal(t, [][]int{{2, 3}, {-1, 2}}, liveClauses(ps))
}

func TestSSRToEmptyClauseIsUnsat(t *testing.T) {
	ps := NewPresolver(1)
	addAll(t, ps, [][]int{{1}, {-1}})
	require.False(t, ps.Presolve())
}

func TestBlockedClauseElimination(t *testing.T) {
	// {a,b} and {a,¬c}: a is pure positive, so eliminating it removes
	// both clauses without generating a single resolvent.
	ps := NewPresolver(3)
	post := NewPostsolver(3)
	ps.SetPostsolver(post)
	addAll(t, ps, [][]int{{1, 2}, {1, -3}})
	require.True(t, ps.Presolve())
	require.Equal(t, 0, ps.NumClauses())
	require.EqualValues(t, 0, ps.Stats().ResolventsAdded)

	// Whatever values the reduced problem leaves for b and c, the
	// postsolver must repair the removed clauses.
	model := post.PostsolveSolution([]bool{false, false, true})
	require.Len(t, model, 3)
	require.True(t, model[0] || model[1], "{a,b} not satisfied by %v", model)
	require.True(t, model[0] || !model[2], "{a,¬c} not satisfied by %v", model)
}

// directBVE eliminates exactly one variable, bypassing the priority
// queue, so the elimination order is under the test's control.
func directBVE(t *testing.T, ps *Presolver, v int) {
	t.Helper()
	ok, eliminated := ps.tryEliminate(solver.Var(v - 1))
	require.True(t, ok)
	require.True(t, eliminated)
}

func TestBVEByResolution(t *testing.T) {
	// {a,b}, {¬a,c}: eliminating a adds the resolvent {b,c} and removes
	// both originals. a is eliminated explicitly so the record layout
	// is under the test's control: first {a,b} under a, then {¬a,c}
	// under ¬a.
	ps := NewPresolver(3)
	post := NewPostsolver(3)
	ps.SetPostsolver(post)
	addAll(t, ps, [][]int{{1, 2}, {-1, 3}})
	directBVE(t, ps, 1)
	checkOccurrences(t, ps)
	require.Equal(t, [][]int{{2, 3}}, liveClauses(ps))
	require.EqualValues(t, 1, ps.Stats().ResolventsAdded)

	// Walking the records in reverse on a model with b=F, c=T: the
	// record for {¬a,c} is satisfied by c, the record for {a,b} is not
	// and flips a to true.
	model := post.PostsolveSolution([]bool{false, false, true})
	require.Equal(t, []bool{true, false, true}, model)
}

func TestPresolveRoundTrip(t *testing.T) {
	// End-to-end equisatisfiability: presolve, solve the reduced
	// problem, postsolve, and check the lifted model against the
	// original clauses.
	problems := [][][]int{
		{{1, 2, 3}, {1, 2}, {-1, 3}, {-2, -3}, {2, 3}},
		{{1, -2}, {2, -3}, {3, -4}, {4, -1}, {1, 2, 3, 4}},
		{{-1, 2}, {-2, 1}, {1, 3}, {-3, -2, 4}},
		{{1}, {-1, 2}, {-2, 3}},
	}
	for i, clauses := range problems {
		nbVars := 0
		for _, c := range clauses {
			for _, v := range c {
				if v < 0 {
					v = -v
				}
				if v > nbVars {
					nbVars = v
				}
			}
		}
		ps := NewPresolver(nbVars)
		post := NewPostsolver(nbVars)
		ps.SetPostsolver(post)
		addAll(t, ps, clauses)
		require.True(t, ps.Presolve(), "problem %d is satisfiable but presolve says unsat", i)
		s := ps.LoadInto(solver.New)
		require.Equal(t, solver.Sat, s.Solve(), "problem %d", i)
		model := post.PostsolveSolution(s.Model())
		require.Len(t, model, nbVars)
		for _, c := range clauses {
			sat := false
			for _, v := range c {
				if v > 0 && model[v-1] || v < 0 && !model[-v-1] {
					sat = true
					break
				}
			}
			require.True(t, sat, "problem %d: clause %v not satisfied by lifted model %v", i, c, model)
		}
	}
}

func TestPresolveUnsat(t *testing.T) {
	problems := [][][]int{
		{{1, 2}, {1, -2}, {-1, 2}, {-1, -2}},
		{{1}, {-1, 2}, {-2}},
	}
	for i, clauses := range problems {
		ps := NewPresolver(2)
		post := NewPostsolver(2)
		ps.SetPostsolver(post)
		addAll(t, ps, clauses)
		if ps.Presolve() {
			// Presolve may legitimately leave the contradiction for the
			// solver when no rule exposes it.
			s := ps.LoadInto(solver.New)
			require.Equal(t, solver.Unsat, s.Solve(), "problem %d should be unsat", i)
		}
	}
}

func TestVariableMappingIsDense(t *testing.T) {
	// Variable 2 never occurs; variables 1, 3 and 4 do and must be
	// numbered densely in order. Only the subsumption pass runs, so no
	// variable is eliminated along the way.
	ps := NewPresolver(4)
	addAll(t, ps, [][]int{{1, 3}, {-1, 4}, {3, 4}})
	require.True(t, ps.processAllClauses())
	mapping := ps.VariableMapping()
	require.Len(t, mapping, 4)
	require.EqualValues(t, 0, mapping[0])
	require.EqualValues(t, -1, mapping[1])
	require.EqualValues(t, 1, mapping[2])
	require.EqualValues(t, 2, mapping[3])
}

func TestEquivalenceMappingOnAdd(t *testing.T) {
	ps := NewPresolver(3)
	// b is represented by a: every inserted b becomes a.
	mapping := make([]solver.Lit, 6)
	for l := range mapping {
		mapping[l] = solver.Lit(l)
	}
	a, b := solver.IntToLit(1), solver.IntToLit(2)
	mapping[b] = a
	mapping[b.Negation()] = a.Negation()
	ps.SetEquivalenceMapping(mapping)

	require.NoError(t, ps.Add(lits(2, 3)))
	require.Equal(t, [][]int{{1, 3}}, liveClauses(ps))
	// {¬a, b} becomes {¬a, a}: trivial.
	require.NoError(t, ps.Add(lits(-1, 2)))
	require.EqualValues(t, 1, ps.Stats().TrivialClauses)
}
