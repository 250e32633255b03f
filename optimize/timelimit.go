package optimize

import (
	"time"

	"github.com/crillab/gopresolve/presolve"
	"github.com/crillab/gopresolve/solver"
)

// A TimeLimit bounds an optimization run two ways: by wall clock and by
// the solver's deterministic-time counter. Either limit may be absent.
// The optimizer polls Reached between iterations; no operation is
// interrupted midway, so a limit can be overshot by up to one solver
// call.
type TimeLimit struct {
	deadline time.Time // zero means no wall-clock limit
	maxDet   float64   // 0 means no deterministic-time limit
	baseDet  float64
}

// NewTimeLimit derives a limit from the parameters, anchored at the
// solver's current deterministic time and the current wall clock.
func NewTimeLimit(params presolve.Parameters, s *solver.Solver) *TimeLimit {
	tl := &TimeLimit{
		maxDet:  params.MaxDeterministicTime,
		baseDet: s.DeterministicTime(),
	}
	if params.MaxTimeInSeconds > 0 {
		tl.deadline = time.Now().Add(time.Duration(params.MaxTimeInSeconds * float64(time.Second)))
	}
	return tl
}

// Reached reports whether either budget is spent.
func (tl *TimeLimit) Reached(s *solver.Solver) bool {
	if !tl.deadline.IsZero() && time.Now().After(tl.deadline) {
		return true
	}
	return tl.maxDet > 0 && s.DeterministicTime()-tl.baseDet > tl.maxDet
}
