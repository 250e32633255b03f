package presolve

// Parameters groups the presolve, probing and optimization tunables. A
// Parameters zero value is not ready to use; call DefaultParameters to
// get the documented defaults and override from there (the CLI in
// cmd/gopresolve binds Cobra flags onto exactly these fields).
type Parameters struct {
	// BVEThreshold bounds the work bounded variable elimination is
	// allowed to do on a single variable: a variable whose positive and
	// negative occurrence counts multiply beyond this value is skipped
	// outright.
	BVEThreshold int
	// BVEClauseWeight is added per clause (not per literal) when
	// computing BVE's cost threshold, penalizing many small clauses
	// relative to fewer large ones.
	BVEClauseWeight int
	// ProbeDeterministicTimeLimit bounds how much of the SAT solver's
	// deterministic-time budget the equivalent-literal prober may spend
	// before its graph queries start returning empty adjacency.
	ProbeDeterministicTimeLimit float64
	// RandomSeed seeds any randomized tie-breaking. Presolve itself is
	// fully deterministic given ordered input; this exists because
	// Parameters is shared with the optimizer, whose SAT solver calls may
	// consult it.
	RandomSeed int64
	// MaxNumberOfConflicts bounds a single SAT solver call used by the
	// optimizer; 0 means unbounded.
	MaxNumberOfConflicts int64
	// MaxTimeInSeconds bounds wall-clock time for a full optimize run.
	MaxTimeInSeconds float64
	// MaxDeterministicTime bounds solver.Solver.DeterministicTime() for a
	// full optimize run. Probing is bounded by ProbeDeterministicTimeLimit.
	MaxDeterministicTime float64
}

// DefaultParameters returns the documented defaults.
func DefaultParameters() Parameters {
	return Parameters{
		BVEThreshold:                10000,
		BVEClauseWeight:             3,
		ProbeDeterministicTimeLimit: 1.0,
		RandomSeed:                  1,
		MaxNumberOfConflicts:        0,
		MaxTimeInSeconds:            0,
		MaxDeterministicTime:        0,
	}
}
