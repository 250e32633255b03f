/*
Package optim provides a high-level interface for solving weighted
partial MAXSAT and pseudo-boolean optimization problems over named
variables.

Hard constraints must be satisfied; soft constraints may be violated at
the price of their weight. The returned model minimizes the total price.
Unlike package maxsat, which minimizes through iterated solution
improvement, this package drives the core-guided optimizer from package
optimize.

	pb := optim.New(
	    optim.HardClause(optim.Var("a"), optim.Var("b")),
	    optim.WeightedClause([]optim.Lit{optim.Not("a")}, 3),
	)
	model, cost := pb.Solve()
*/
package optim
