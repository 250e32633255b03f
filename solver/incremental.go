package solver

import "fmt"

// This file bridges the CDCL engine to the assumption-based, incremental
// usage pattern required by the core-guided optimizer and the
// equivalent-literal prober: repeated Solve calls under a changing set of
// assumptions, plus a handful of primitives (decide one literal and read
// off propagation, fetch the assumptions implicated in the last conflict,
// add a permanent unit clause, grow the variable space, read a
// deterministic work counter) that those callers need but that a plain
// CDCL loop has no reason to expose on its own.
//
// A central subtlety: cleanupBindings(0) erases every binding, including
// problem units and units learned at the base level. Incremental callers
// reset the solver between calls, so units that must survive a reset are
// tracked in permanentUnits and replayed by assumeAtBase.

// addLearned registers a newly learned, non-unit clause with the watcher
// list and, when certification is on, emits it on the certificate stream.
func (s *Solver) addLearned(c *Clause) {
	if s.Certified {
		s.writeCertClause(c)
	}
	s.addClause(c)
}

// addLearnedUnit emits a learned unit literal on the certificate stream.
// Trail and model bookkeeping for the unit is the caller's responsibility;
// this only accounts for the certificate, exactly like addLearned does for
// longer clauses.
func (s *Solver) addLearnedUnit(lit Lit) {
	if s.Certified {
		s.writeCertClause(NewClause([]Lit{lit}))
	}
}

func (s *Solver) writeCertClause(c *Clause) {
	line := c.CNF()
	if s.CertChan == nil {
		fmt.Printf("%s\n", line)
	} else {
		s.CertChan <- line
	}
}

// propagate runs unit propagation over the literals already appended to
// the trail starting at index ptr, binding each one to lvl as it is
// reached. It is the batch counterpart of unifyLiteral, used once several
// literals have been pushed onto the trail at once instead of one at a
// time.
func (s *Solver) propagate(ptr int, lvl decLevel) *Clause {
	for ptr < len(s.trail) {
		lit := s.trail[ptr]
		if s.model[lit.Var()] == 0 {
			s.model[lit.Var()] = lvlToSignedLvl(lit, lvl)
		}
		for _, w := range s.wl.wlistBin[lit] {
			v2 := w.other.Var()
			if assign := s.model[v2]; assign == 0 {
				s.reason[v2] = w.clause
				w.clause.lock()
				s.model[v2] = lvlToSignedLvl(w.other, lvl)
				s.trail = append(s.trail, w.other)
			} else if (assign > 0) != w.other.IsPositive() {
				return w.clause
			}
		}
		for _, c := range s.wl.wlist[lit] {
			res, units := s.simplifyWatchedClause(c)
			switch res {
			case Unsat:
				return c
			case Unit:
				for _, unit := range units {
					v := unit.Var()
					if s.model[v] != 0 {
						continue
					}
					s.reason[v] = c
					c.lock()
					s.model[v] = lvlToSignedLvl(unit, lvl)
					s.trail = append(s.trail, unit)
				}
			}
		}
		ptr++
	}
	return nil
}

// enqueueBase binds lit at the base level without propagating. It returns
// false when lit contradicts an existing binding.
func (s *Solver) enqueueBase(lit Lit) bool {
	if v := s.model[lit.Var()]; v != 0 {
		return (v > 0) == lit.IsPositive()
	}
	s.model[lit.Var()] = lvlToSignedLvl(lit, 1)
	s.trail = append(s.trail, lit)
	return true
}

// assumeAtBase rebuilds the level-1 trail from scratch: every permanent
// unit first, then the given assumption literals, then one batch of unit
// propagation. On conflict it leaves the solver Unsat with lastConflict
// set so that GetLastIncompatibleDecisions can extract a core.
func (s *Solver) assumeAtBase(assumps []Lit) Status {
	if s.status == Unsat && s.nbVars == 0 {
		// Solver built from a problem already proven unsat: there is no
		// state to reset and the verdict is final.
		return Unsat
	}
	s.lastConflict = nil
	s.cleanupBindings(0)
	s.trail = s.trail[:0]
	s.assumptions = make([]bool, s.nbVars)
	s.status = Indet
	for _, lit := range s.permanentUnits {
		if !s.enqueueBase(lit) {
			// Two contradicting permanent units: unsat regardless of any
			// assumption, hence no conflict clause and an empty core.
			s.status = Unsat
			return Unsat
		}
	}
	for _, lit := range assumps {
		s.assumptions[lit.Var()] = true
		s.addLearnedUnit(lit)
		if !s.enqueueBase(lit) {
			// The assumption alone contradicts the base bindings; the
			// singleton core is materialized as a synthetic conflict
			// clause so callers extract it the usual way.
			s.lastConflict = NewClause([]Lit{lit.Negation()})
			s.status = Unsat
			return Unsat
		}
	}
	if conflict := s.propagate(0, 1); conflict != nil {
		s.lastConflict = conflict
		s.status = Unsat
		return Unsat
	}
	return Indet
}

// ResetToBase backtracks the solver to its base level: all bindings are
// undone, then every permanent unit (problem units plus units added with
// AddUnitClause) is reasserted and propagated. After it returns Indet, the
// only bindings left are the ones implied by the formula itself, which is
// what FixedLitStatus and the prober rely on.
func (s *Solver) ResetToBase() Status {
	return s.assumeAtBase(nil)
}

// ResetAndSolveWithAssumptions backtracks to the base level, asserts
// assumps and solves from there. Equivalent to
// ResetAndSolveWithBudget(assumps, 0).
func (s *Solver) ResetAndSolveWithAssumptions(assumps []Lit) Status {
	return s.ResetAndSolveWithBudget(assumps, 0)
}

// ResetAndSolveWithBudget backtracks to the base level, asserts assumps,
// and solves under a conflict budget: once maxConflicts additional
// conflicts have been spent (0 meaning unbounded), the search stops at the
// next restart and Indet is returned so the caller can re-enter later.
func (s *Solver) ResetAndSolveWithBudget(assumps []Lit, maxConflicts int64) Status {
	if status := s.assumeAtBase(assumps); status == Unsat {
		return status
	}
	s.rebuildOrderHeap()
	return s.solveWithBudget(maxConflicts)
}

// solveWithBudget is Solve's restart loop with a conflict cap and without
// the verbose ticker. The cap is only checked between restarts, so the
// budget can be overshot by at most one restart's worth of conflicts.
func (s *Solver) solveWithBudget(maxConflicts int64) Status {
	if s.status == Unsat {
		return s.status
	}
	s.status = Indet
	s.localNbRestarts = 0
	start := int64(s.Stats.NbConflicts)
	for s.status == Indet {
		s.search()
		if s.status == Indet {
			s.Stats.NbRestarts++
			if maxConflicts > 0 && int64(s.Stats.NbConflicts)-start >= maxConflicts {
				return Indet
			}
			s.rebuildOrderHeap()
		}
	}
	if s.status == Sat {
		s.lastModel = make(Model, len(s.model))
		copy(s.lastModel, s.model)
	}
	return s.status
}

// GetLastIncompatibleDecisions returns the subset of assumption literals
// implicated in the conflict that caused the most recent
// ResetAndSolveWithAssumptions call to return Unsat. The conflict clause
// is expanded through the implication graph (reason clauses) so that
// assumptions reached only transitively are part of the core too. An
// empty result means the problem is unsat regardless of assumptions.
// The core is valid but not necessarily minimal; minimization, if wanted,
// is the caller's job (see package optimize).
func (s *Solver) GetLastIncompatibleDecisions() []Lit {
	if s.lastConflict == nil {
		return nil
	}
	seen := make([]bool, s.nbVars)
	var core []Lit
	stack := make([]Lit, 0, s.lastConflict.Len())
	for i := 0; i < s.lastConflict.Len(); i++ {
		stack = append(stack, s.lastConflict.Get(i))
	}
	for len(stack) > 0 {
		lit := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := lit.Var()
		if seen[v] {
			continue
		}
		seen[v] = true
		if s.assumptions[v] {
			core = append(core, lit.Negation())
		} else if r := s.reason[v]; r != nil {
			for i := 0; i < r.Len(); i++ {
				if other := r.Get(i); other.Var() != v {
					stack = append(stack, other)
				}
			}
		}
	}
	return core
}

// EnqueueDecisionAndBackjumpOnConflict makes lit a decision at level 2
// over the current base bindings (the solver must be at the base level,
// as the prober ensures with ResetToBase) and returns the literals
// propagated as a consequence. If asserting lit conflicts immediately,
// ¬lit is asserted as a permanent unit via AddUnitClause, the solver goes
// back to the base level, and nil is returned: the node has no out-edges.
func (s *Solver) EnqueueDecisionAndBackjumpOnConflict(lit Lit) []Lit {
	if s.model[lit.Var()] != 0 {
		return nil // already bound at the base level: no new edges
	}
	s.Stats.NbDecisions++
	start := len(s.trail)
	if conflict := s.unifyLiteral(lit, 2); conflict != nil {
		s.cleanupBindings(1)
		s.AddUnitClause(lit.Negation())
		return nil
	}
	implied := make([]Lit, 0, len(s.trail)-start-1)
	for i := start + 1; i < len(s.trail); i++ {
		implied = append(implied, s.trail[i])
	}
	s.cleanupBindings(1)
	return implied
}

// AddUnitClause asserts lit as a permanent unit binding at the base
// level, outside of search. The unit survives later resets. If lit
// contradicts an established base binding the solver becomes Unsat; a
// binding above the base level means the caller did not backtrack first,
// which is a programmer error.
func (s *Solver) AddUnitClause(lit Lit) {
	if v := s.model[lit.Var()]; v != 0 {
		if abs(v) > 1 {
			panic(fmt.Sprintf("AddUnitClause: %d bound above the base level", lit.Int()))
		}
		if (v > 0) == lit.IsPositive() {
			return // already implied: nothing to record
		}
		// Recorded so that the contradiction is found again after a reset.
		s.permanentUnits = append(s.permanentUnits, lit)
		s.lastConflict = nil
		s.status = Unsat
		return
	}
	s.addLearnedUnit(lit)
	s.permanentUnits = append(s.permanentUnits, lit)
	s.model[lit.Var()] = lvlToSignedLvl(lit, 1)
	s.trail = append(s.trail, lit)
	if conflict := s.propagate(len(s.trail)-1, 1); conflict != nil {
		s.lastConflict = conflict
		s.status = Unsat
	}
}

// AddPermanentClause adds a clause that must survive later resets to the
// base level. The solver must be at the base level. The clause is
// simplified against the base bindings, which are reproducible (they are
// re-propagated from the permanent units on every reset), so dropping
// satisfied clauses and false literals here is safe. A clause simplified
// down to one literal is recorded as a permanent unit; an empty one makes
// the solver Unsat. AppendClause is not suitable for this: its unit path
// binds the literal without recording it, so the binding would vanish at
// the next reset.
func (s *Solver) AddPermanentClause(lits []Lit) {
	kept := make([]Lit, 0, len(lits))
	for _, lit := range lits {
		switch s.FixedLitStatus(lit) {
		case Sat:
			return // satisfied at the base level for good
		case Indet:
			kept = append(kept, lit)
		}
	}
	switch len(kept) {
	case 0:
		s.lastConflict = nil
		s.status = Unsat
	case 1:
		s.AddUnitClause(kept[0])
	default:
		s.appendClause(NewClause(kept))
	}
}

// FixedLitStatus returns Sat or Unsat when lit is bound at the base
// level, Indet otherwise. It is only meaningful right after ResetToBase,
// when no assumption or decision bindings are present.
func (s *Solver) FixedLitStatus(lit Lit) Status {
	v := s.model[lit.Var()]
	if v == 0 || abs(v) > 1 {
		return Indet
	}
	if (v > 0) == lit.IsPositive() {
		return Sat
	}
	return Unsat
}

// NewVar grows the variable space by one and returns the new variable.
// The variable starts free, unwatched and with zero activity. The order
// heap is rebuilt since it aliases the activity slice.
func (s *Solver) NewVar() Var {
	v := Var(s.nbVars)
	s.nbVars++
	s.model = append(s.model, 0)
	s.activity = append(s.activity, 0)
	s.polarity = append(s.polarity, false)
	s.assumptions = append(s.assumptions, false)
	s.reason = append(s.reason, nil)
	s.trailBuf = append(s.trailBuf, 0)
	s.wl.wlistBin = append(s.wl.wlistBin, nil, nil)
	s.wl.wlist = append(s.wl.wlist, nil, nil)
	s.varQueue = newQueue(s.activity)
	s.rebuildOrderHeap()
	return v
}

// NbVars returns the current number of variables, including any added
// with NewVar.
func (s *Solver) NbVars() int { return s.nbVars }

// CurrentStatus returns the solver's status as of the last operation.
func (s *Solver) CurrentStatus() Status { return s.status }

// Objective returns the literals and weights of the problem's
// minimization objective, or nil slices for a pure decision problem.
func (s *Solver) Objective() ([]Lit, []int) { return s.minLits, s.minWeights }

// DeterministicTime returns a monotonic, reproducible work counter
// advanced purely by conflict and decision work already tracked in Stats,
// independent of wall-clock time. It is the budget the prober and the
// optimizer poll to decide when to stop early.
func (s *Solver) DeterministicTime() float64 {
	return float64(s.Stats.NbConflicts) + 0.1*float64(s.Stats.NbDecisions)
}
