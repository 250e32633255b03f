package presolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/gopresolve/solver"
)

func TestPostsolveWalksRecordsInReverse(t *testing.T) {
	// Records as bounded variable elimination on a would leave them for
	// {a,b} and {¬a,c}: the walk must process {¬a,c} first, see it
	// satisfied, then repair {a,b} by flipping a.
	post := NewPostsolver(3)
	post.Add(lits(1)[0], lits(1, 2))
	post.Add(lits(-1)[0], lits(-1, 3))
	model := post.PostsolveSolution([]bool{false, false, true})
	require.Equal(t, []bool{true, false, true}, model)
}

func TestPostsolveFlipOrder(t *testing.T) {
	// Both records are unsatisfied by the incoming model; the later
	// record is repaired first, which satisfies the earlier one too.
	post := NewPostsolver(2)
	post.Add(lits(1)[0], lits(1, 2))
	post.Add(lits(2)[0], lits(1, 2))
	model := post.PostsolveSolution([]bool{false, false})
	require.Equal(t, []bool{false, true}, model)
}

func TestPostsolveSatisfiedRecordsUntouched(t *testing.T) {
	post := NewPostsolver(2)
	post.Add(lits(1)[0], lits(1, -2))
	model := post.PostsolveSolution([]bool{false, false})
	// ¬b already satisfies the record: a stays false.
	require.Equal(t, []bool{false, false}, model)
}

func TestAddRequiresAssociatedLiteral(t *testing.T) {
	post := NewPostsolver(2)
	require.Panics(t, func() {
		post.Add(lits(1)[0], lits(2))
	})
}

func TestApplyMappingComposes(t *testing.T) {
	// Original vars {a,b,c,d}; first reduction keeps {a,c} as {0,1},
	// second keeps only the new 1 (i.e c) as 0. A record added after
	// both reductions must land on c.
	post := NewPostsolver(4)
	post.ApplyMapping([]solver.Var{0, -1, 1, -1})
	post.ApplyMapping([]solver.Var{-1, 0})
	post.Add(solver.IntToLit(1), []solver.Lit{solver.IntToLit(1)})
	model := post.PostsolveSolution([]bool{false})
	require.Len(t, model, 4)
	require.True(t, model[2], "record on reduced var 0 must repair original c")
}

func TestFixVariable(t *testing.T) {
	post := NewPostsolver(2)
	require.NoError(t, post.FixVariable(solver.IntToLit(-2)))
	require.Error(t, post.FixVariable(solver.IntToLit(2)))
	model := post.PostsolveSolution([]bool{true, true})
	require.Equal(t, []bool{true, false}, model)
}

func TestReverseMappingEliminatedVarPanics(t *testing.T) {
	post := NewPostsolver(2)
	post.ApplyMapping([]solver.Var{0, -1})
	require.Panics(t, func() {
		// Reduced space has a single variable; reverse-mapping var 1 is
		// out of range and therefore a programmer error.
		post.Add(solver.IntToLit(2), []solver.Lit{solver.IntToLit(2)})
	})
}
