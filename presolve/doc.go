/*
Package presolve implements the presolve/postsolve pipeline for CNF SAT
problems: subsumption and self-subsuming resolution, bounded variable
elimination with incidental blocked-clause elimination, and the dense
variable remapping that hands a reduced problem off to a CDCL engine.

A Presolver is fed clauses one at a time with Add, tuned with
SetParameters, then run with Presolve. If it returns true, the survivors
can be loaded into a solver.Solver with LoadInto; the companion Postsolver
records every removal so that a model of the reduced problem can be lifted
back into a model of the original one with PostsolveSolution.

Describing a presolve run

	ps := presolve.NewPresolver(nbVars)
	post := presolve.NewPostsolver(nbVars)
	ps.SetPostsolver(post)
	for _, clause := range clauses {
	    if err := ps.Add(clause); err != nil {
	        // err is ErrUnsatDetected
	    }
	}
	if !ps.Presolve() {
	    // problem is UNSAT
	}
	s := ps.LoadInto(solver.New)
	status := s.Solve()
	if status == solver.Sat {
	    original := post.PostsolveSolution(s.Model())
	}
*/
package presolve
