package solver

// The bounded-variable-elimination sketch that used to live here (dead,
// commented-out code never wired into Problem) has been promoted into a
// real implementation in package presolve (see presolve/bve.go), which
// operates on clauses before they ever reach a Solver. This file is kept
// only so the package layout matches the upstream project; Problem itself
// does no preprocessing of its own beyond the unit propagation already
// performed by simplify and simplifyPB in problem.go.
