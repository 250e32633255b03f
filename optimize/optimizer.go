package optimize

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/crillab/gopresolve/presolve"
	"github.com/crillab/gopresolve/solver"
)

// Result is the outcome of one Optimize call.
type Result int

const (
	// Continue means a budget ran out before anything was decided; the
	// caller is expected to call Optimize again later.
	Continue Result = iota
	// SolutionFound means a new, better feasible solution was found but
	// optimality is not proven yet.
	SolutionFound
	// OptimalSolutionFound means the best known solution is optimal.
	OptimalSolutionFound
	// Infeasible means the hard constraints cannot be satisfied.
	Infeasible
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "CONTINUE"
	case SolutionFound:
		return "SOLUTION_FOUND"
	case OptimalSolutionFound:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Stats counts what the optimizer did across all Optimize calls.
type Stats struct {
	SolverCalls    int64
	CoresProcessed int64
	NodesCreated   int64
	NodesMerged    int64
	SolutionsFound int64
}

// An Optimizer minimizes a weighted sum of literals over the models of a
// SAT problem, using the unsatisfiable cores the solver produces under
// assumptions. It borrows the solver for the duration of each Optimize
// call; nothing else may touch the solver in between calls.
type Optimizer struct {
	s    *solver.Solver
	repo *Repository
	log  *logrus.Logger

	objLits    []solver.Lit
	objWeights []int64
	offset     int64

	active       []nodeID // nodes still carrying weight, in creation order
	lowerBound   int64
	upperBound   int64 // math.MaxInt64 until a solution is known
	stratifiedLB int64

	haveSolution bool
	bestModel    []bool

	stats Stats
}

// New returns an optimizer for the objective lits·weights + offset over
// the problem held by s. Objective literals are counted when true, so
// minimizing pushes them false. The objective may be empty, in which case
// ShouldBeRun reports false and Optimize degenerates to a single
// satisfiability check.
func New(s *solver.Solver, lits []solver.Lit, weights []int64, offset int64) *Optimizer {
	o := &Optimizer{
		s:          s,
		repo:       NewRepository(),
		objLits:    lits,
		objWeights: weights,
		offset:     offset,
		upperBound: math.MaxInt64,
	}
	for i, lit := range lits {
		if weights[i] == 0 {
			continue
		}
		id := o.repo.NewLeaf(lit, weights[i])
		o.active = append(o.active, id)
		o.stats.NodesCreated++
		if weights[i] > o.stratifiedLB {
			o.stratifiedLB = weights[i]
		}
	}
	return o
}

// FromSolver builds an optimizer from the minimization objective the
// problem was parsed with.
func FromSolver(s *solver.Solver) *Optimizer {
	lits, weights := s.Objective()
	w64 := make([]int64, len(lits))
	for i := range lits {
		if weights == nil {
			w64[i] = 1
		} else {
			w64[i] = int64(weights[i])
		}
	}
	return New(s, lits, w64, 0)
}

// SetLogger attaches a logger for per-iteration progress. Nil (the
// default) disables logging.
func (o *Optimizer) SetLogger(log *logrus.Logger) { o.log = log }

// ShouldBeRun reports whether running the optimizer makes sense: false
// iff the objective is empty.
func (o *Optimizer) ShouldBeRun() bool { return len(o.active) > 0 }

// LowerBound returns the best proven lower bound on the objective,
// including the offset. It never decreases across Optimize calls.
func (o *Optimizer) LowerBound() int64 { return o.lowerBound + o.offset }

// UpperBound returns the cost of the best known solution, including the
// offset, or math.MaxInt64 when none is known yet.
func (o *Optimizer) UpperBound() int64 {
	if !o.haveSolution {
		return math.MaxInt64
	}
	return o.upperBound
}

// BestModel returns the best model found so far, or nil. The model
// covers the solver's variable space, including any encoding variables
// the optimizer introduced.
func (o *Optimizer) BestModel() []bool { return o.bestModel }

// Stats returns the counters accumulated so far.
func (o *Optimizer) Stats() Stats { return o.stats }

// Optimize runs the core-guided loop until optimality or infeasibility
// is proven, or a budget runs out (Continue). Re-entering after Continue
// resumes where the previous call stopped: all state lives in the
// optimizer and the solver.
func (o *Optimizer) Optimize(params presolve.Parameters, limit *TimeLimit) Result {
	if !o.ShouldBeRun() {
		switch o.s.Solve() {
		case solver.Sat:
			o.recordSolution()
			o.lowerBound = o.upperBound - o.offset
			return OptimalSolutionFound
		case solver.Unsat:
			return Infeasible
		default:
			return Continue
		}
	}
	for {
		if limit != nil && limit.Reached(o.s) {
			return Continue
		}
		if o.s.ResetToBase() == solver.Unsat {
			return o.terminal()
		}
		if r, done := o.reduceAndBound(); done {
			return r
		}
		assumps := o.buildAssumptions()
		o.stats.SolverCalls++
		status := o.s.ResetAndSolveWithBudget(assumps, params.MaxNumberOfConflicts)
		switch status {
		case solver.Indet:
			return Continue
		case solver.Sat:
			o.stats.SolutionsFound++
			o.recordSolution()
			if done := o.lowerStratification(); done {
				o.lowerBound = o.upperBound - o.offset
				return OptimalSolutionFound
			}
			return SolutionFound
		default: // Unsat under assumptions
			core := o.s.GetLastIncompatibleDecisions()
			if len(core) == 0 {
				return o.terminal()
			}
			core = o.minimizeCore(core, params.MaxNumberOfConflicts)
			if o.s.ResetToBase() == solver.Unsat {
				return o.terminal()
			}
			o.processCore(core)
			if o.s.CurrentStatus() == solver.Unsat {
				return o.terminal()
			}
		}
	}
}

// terminal converts a solver-level Unsat into the optimizer's verdict:
// with a feasible solution in hand the search space below the upper
// bound is exhausted, so that solution is optimal; without one the hard
// constraints themselves are infeasible.
func (o *Optimizer) terminal() Result {
	if o.haveSolution {
		o.lowerBound = o.upperBound - o.offset
		return OptimalSolutionFound
	}
	return Infeasible
}

// recordSolution reads the solver's model, computes its objective value
// and keeps it if it beats the incumbent.
func (o *Optimizer) recordSolution() {
	model := o.s.Model()
	cost := o.offset
	for i, lit := range o.objLits {
		v := lit.Var()
		if int(v) < len(model) && model[v] == lit.IsPositive() {
			cost += o.objWeights[i]
		}
	}
	if !o.haveSolution || cost < o.upperBound {
		o.haveSolution = true
		o.upperBound = cost
		o.bestModel = model
		if o.log != nil {
			o.log.WithFields(logrus.Fields{
				"cost":        cost,
				"lower_bound": o.LowerBound(),
			}).Info("solution found")
		}
	}
}

// reduceAndBound absorbs fixed literals into every active node's paid
// prefix, drops saturated nodes, closes the gap test and applies the
// per-node upper bound. It reports a terminal result when the bounds
// meet. Called at the base level.
func (o *Optimizer) reduceAndBound() (Result, bool) {
	for {
		kept := o.active[:0]
		for _, id := range o.active {
			o.lowerBound += int64(o.repo.Reduce(o.s, id)) * o.repo.Weight(id)
			if o.repo.Saturated(id) {
				continue
			}
			kept = append(kept, id)
		}
		o.active = kept
		if !o.haveSolution {
			return 0, false
		}
		gap := o.upperBound - o.offset - o.lowerBound
		if gap <= 0 {
			o.lowerBound = o.upperBound - o.offset
			return OptimalSolutionFound, true
		}
		kept = o.active[:0]
		unitAdded := false
		for _, id := range o.active {
			k := gap / o.repo.Weight(id)
			if k == 0 {
				// The node may not grow at all anymore: its assumption
				// becomes a fact.
				if o.repo.ApplyUpperBound(o.s, id, 0) {
					unitAdded = true
				}
				continue
			}
			if o.repo.ApplyUpperBound(o.s, id, k) {
				unitAdded = true
			}
			kept = append(kept, id)
			if o.s.CurrentStatus() == solver.Unsat {
				break
			}
		}
		o.active = kept
		if o.s.CurrentStatus() == solver.Unsat {
			return o.terminal(), true
		}
		if !unitAdded {
			return 0, false
		}
		// New units may have fixed further node literals: reduce again
		// before building assumptions.
	}
}

// buildAssumptions emits the negated frontier literal of every active
// node in the current stratum.
func (o *Optimizer) buildAssumptions() []solver.Lit {
	var assumps []solver.Lit
	for _, id := range o.active {
		if o.repo.Weight(id) < o.stratifiedLB {
			continue
		}
		assumps = append(assumps, o.repo.FirstLiteral(id).Negation())
	}
	return assumps
}

// lowerStratification moves the stratification threshold down to the
// heaviest node weight strictly below the current one. It reports true
// when no lighter stratum exists, i.e. every node was already assumed
// and the last solution is optimal.
func (o *Optimizer) lowerStratification() bool {
	var next int64
	for _, id := range o.active {
		if w := o.repo.Weight(id); w < o.stratifiedLB && w > next {
			next = w
		}
	}
	if next == 0 {
		return true
	}
	o.stratifiedLB = next
	if o.log != nil {
		o.log.WithField("stratum", next).Debug("lowering stratification bound")
	}
	return false
}

// minimizeCore shrinks a core by re-solving under the core itself as
// assumptions: the conflict analysis frequently implicates fewer
// literals the second time. One round only; diminishing returns set in
// quickly and each round costs a solver call.
func (o *Optimizer) minimizeCore(core []solver.Lit, maxConflicts int64) []solver.Lit {
	if len(core) <= 1 {
		return core
	}
	if o.s.ResetAndSolveWithBudget(core, maxConflicts) != solver.Unsat {
		return core
	}
	smaller := o.s.GetLastIncompatibleDecisions()
	if len(smaller) == 0 || len(smaller) >= len(core) {
		return core
	}
	return smaller
}

// processCore relaxes the nodes implicated in an unsatisfiable core, per
// the OLL-style weight splitting: the minimum implicated weight m moves
// from the implicated nodes onto a fresh node summing all their leaves,
// whose first literal is known true (the core says at least one leaf
// fires). Called at the base level.
func (o *Optimizer) processCore(core []solver.Lit) {
	o.stats.CoresProcessed++
	inCore := make(map[solver.Lit]bool, len(core))
	for _, l := range core {
		inCore[l] = true
	}
	var touched []nodeID
	for _, id := range o.active {
		if inCore[o.repo.FirstLiteral(id).Negation()] {
			touched = append(touched, id)
		}
	}
	if len(touched) == 0 {
		// Every core literal belonged to a node dropped since the
		// assumptions were built; nothing to relax.
		return
	}
	if len(touched) == 1 {
		// A single implicated node: its frontier literal is simply true.
		// Grow it one level so the next frontier exists, assert, and let
		// the next Reduce collect the bound increase.
		id := touched[0]
		o.repo.IncreaseNodeSize(o.s, id)
		o.s.AddUnitClause(o.repo.FirstLiteral(id))
		return
	}
	m := o.repo.Weight(touched[0])
	for _, id := range touched[1:] {
		if w := o.repo.Weight(id); w < m {
			m = w
		}
	}
	kept := o.active[:0]
	for _, id := range o.active {
		if inCore[o.repo.FirstLiteral(id).Negation()] {
			o.repo.at(id).weight -= m
			if o.repo.at(id).weight == 0 {
				continue
			}
		}
		kept = append(kept, id)
	}
	o.active = kept
	merged := o.repo.Merge(o.s, touched)
	o.stats.NodesMerged += int64(len(touched))
	o.stats.NodesCreated++
	o.repo.at(merged).weight = m
	o.repo.IncreaseNodeSize(o.s, merged)
	o.s.AddUnitClause(o.repo.FirstLiteral(merged))
	o.active = append(o.active, merged)
	if o.log != nil {
		o.log.WithFields(logrus.Fields{
			"core_size": len(core),
			"weight":    m,
		}).Debug("core processed")
	}
}
