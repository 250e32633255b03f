/*
Package optimize minimizes a weighted sum of literals over the models of
a SAT problem, using the core-guided (OLL-style) strategy: the solver is
called under assumptions stating that no objective literal beyond the
proven lower bound is true, and every unsatisfiable core it returns is
relaxed by growing a lazy totalizer encoding over the implicated terms.

Heavy objective terms are handled first through a stratified bound, so
early solutions are already good, and every bound the optimizer reports
is proven: LowerBound never decreases, UpperBound never increases, and
they meet exactly when OptimalSolutionFound is returned.

	opt := optimize.FromSolver(s)
	limit := optimize.NewTimeLimit(params, s)
	for {
	    switch opt.Optimize(params, limit) {
	    case optimize.Continue:
	        continue // budget ran out, re-enter
	    case optimize.SolutionFound:
	        continue // better solution found, keep going
	    case optimize.OptimalSolutionFound:
	        model := opt.BestModel()
	        ...
	    case optimize.Infeasible:
	        ...
	    }
	}
*/
package optimize
