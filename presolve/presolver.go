package presolve

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/gopresolve/solver"
)

// Stats counts what a presolve run did. All counters are cumulative over
// the Presolver's lifetime and remain readable after Presolve returns,
// including when it proved the problem unsat.
type Stats struct {
	ClausesProcessed    int64 // clauses popped from the to-process queue
	ClausesSubsumed     int64
	ClausesStrengthened int64 // clauses shrunk by self-subsuming resolution
	ResolventsAdded     int64
	VariablesEliminated int64
	BlockedClauses      int64 // clauses removed because all their resolvents were tautological
	TrivialClauses      int64 // inserted clauses dropped for containing both polarities of a var
}

// A Presolver reduces a CNF problem before it reaches a CDCL engine. It
// runs a subsumption and self-subsuming-resolution fixpoint, then bounded
// variable elimination with incidental blocked-clause elimination, and
// finally remaps the surviving variables densely for the downstream
// solver. Removals are reported to an attached Postsolver so a model of
// the reduced problem can be lifted back.
//
// A Presolver is created per problem and is not safe for concurrent use.
type Presolver struct {
	st     *store
	params Parameters
	post   *Postsolver
	log    *logrus.Logger

	// equivMapping, when non-nil, substitutes every literal of a newly
	// inserted clause by its representative. Indexed by literal; must be
	// symmetric (mapping[l.Negation()] == mapping[l].Negation()).
	equivMapping []solver.Lit

	fifo    []clauseID // to-process queue, strict FIFO
	head    int        // index of the next clause to pop from fifo
	inQueue []bool     // inQueue[id] is true iff id is waiting in fifo

	pq *varQueue // only non-nil during the elimination pass

	stats  Stats
	nbVars int
}

// NewPresolver returns a Presolver for a problem with at most nbVars
// variables. The variable space grows on demand if clauses mention
// larger variables.
func NewPresolver(nbVars int) *Presolver {
	ps := &Presolver{st: newStore(), params: DefaultParameters(), nbVars: nbVars}
	ps.st.growTo(nbVars)
	return ps
}

// SetParameters overrides the presolve tunables.
func (ps *Presolver) SetParameters(p Parameters) { ps.params = p }

// SetPostsolver attaches the Postsolver that will receive a record for
// every clause removed by variable or blocked-clause elimination. Without
// one, presolve still reduces the problem but models of the reduced
// problem cannot be lifted back.
func (ps *Presolver) SetPostsolver(post *Postsolver) { ps.post = post }

// SetLogger attaches a logger for pass progress and summary statistics.
// A nil logger (the default) disables logging entirely.
func (ps *Presolver) SetLogger(log *logrus.Logger) { ps.log = log }

// SetEquivalenceMapping installs a literal substitution applied to every
// clause subsequently inserted with Add, typically the output of
// equivalent-literal probing. mapping must be symmetric under negation.
func (ps *Presolver) SetEquivalenceMapping(mapping []solver.Lit) {
	for l, r := range mapping {
		if mapping[solver.Lit(l).Negation()] != r.Negation() {
			panicInvariant("equivalence mapping not symmetric at literal %d", l)
		}
	}
	ps.equivMapping = mapping
}

// NumVariables returns the size of the presolver's variable space.
func (ps *Presolver) NumVariables() int { return ps.nbVars }

// NumClauses returns the number of live clauses.
func (ps *Presolver) NumClauses() int {
	n := 0
	for id := range ps.st.clauses {
		if ps.st.live(clauseID(id)) {
			n++
		}
	}
	return n
}

// Stats returns the counters accumulated so far.
func (ps *Presolver) Stats() Stats { return ps.stats }

// Add inserts a clause, given as a sequence of literals. The literals are
// substituted through the equivalence mapping, sorted and deduplicated;
// a clause containing both polarities of a variable is counted as trivial
// and dropped. An empty input is the caller telling us the problem
// contains the empty clause, which is reported as ErrUnsatDetected.
func (ps *Presolver) Add(lits []solver.Lit) error {
	if len(lits) == 0 {
		return errors.Wrap(ErrUnsatDetected, "empty clause")
	}
	clause := make([]solver.Lit, len(lits))
	copy(clause, lits)
	if ps.equivMapping != nil {
		for i, l := range clause {
			if int(l) < len(ps.equivMapping) {
				clause[i] = ps.equivMapping[l]
			}
		}
	}
	sort.Slice(clause, func(i, j int) bool { return clause[i] < clause[j] })
	j := 0
	for _, l := range clause {
		if j > 0 && l == clause[j-1] {
			continue
		}
		if j > 0 && l == clause[j-1].Negation() {
			ps.stats.TrivialClauses++
			return nil
		}
		clause[j] = l
		j++
	}
	ps.addCanonical(clause[:j])
	return nil
}

// addCanonical inserts an already-canonical clause (sorted, duplicate
// free, no opposite pair): the fast path shared by Add and by resolvent
// generation, which builds its outputs canonical by construction.
func (ps *Presolver) addCanonical(lits []solver.Lit) clauseID {
	id := ps.st.addClauseInternal(lits)
	if n := ps.st.nbVars(); n > ps.nbVars {
		ps.nbVars = n
	}
	ps.enqueue(id)
	if ps.pq != nil {
		for _, l := range lits {
			ps.pq.push(int32(l.Var()))
		}
	}
	return id
}

// enqueue pushes id onto the to-process queue unless it already waits
// there. The membership bitmap makes re-enqueueing idempotent.
func (ps *Presolver) enqueue(id clauseID) {
	for int(id) >= len(ps.inQueue) {
		ps.inQueue = append(ps.inQueue, false)
	}
	if ps.inQueue[id] {
		return
	}
	ps.inQueue[id] = true
	ps.fifo = append(ps.fifo, id)
}

// pop removes and returns the oldest queued clause id, or -1 when the
// queue is empty.
func (ps *Presolver) pop() clauseID {
	if ps.head >= len(ps.fifo) {
		ps.fifo = ps.fifo[:0]
		ps.head = 0
		return -1
	}
	id := ps.fifo[ps.head]
	ps.head++
	ps.inQueue[id] = false
	return id
}

// requeueVar reschedules a variable in the elimination queue after its
// occurrence counts changed. A no-op outside the elimination pass.
func (ps *Presolver) requeueVar(v solver.Var) {
	if ps.pq != nil {
		ps.pq.push(int32(v))
	}
}

// removeClause empties a clause and reschedules every variable it
// contained.
func (ps *Presolver) removeClause(id clauseID) {
	lits := ps.st.get(id)
	ps.st.remove(id)
	for _, l := range lits {
		ps.requeueVar(l.Var())
	}
}

// removeAndRegisterForPostsolve removes a clause eliminated by BVE or
// BCE, recording it with the given associated literal so the postsolver
// can repair a model of the reduced problem. assoc must be the occurrence
// of the eliminated variable inside this specific clause.
func (ps *Presolver) removeAndRegisterForPostsolve(id clauseID, assoc solver.Lit) {
	if ps.post != nil {
		ps.post.Add(assoc, ps.st.get(id))
	}
	ps.removeClause(id)
}

// Presolve runs the pipeline to fixpoint: subsumption and self-subsuming
// resolution over every clause inserted so far, then bounded variable
// elimination interleaved with further subsumption over the resolvents.
// It returns false when the problem was proven unsatisfiable.
func (ps *Presolver) Presolve() bool {
	before := ps.NumClauses()
	if !ps.processAllClauses() {
		ps.logSummary(before, false)
		return false
	}
	if !ps.eliminateVariables() {
		ps.logSummary(before, false)
		return false
	}
	ps.logSummary(before, true)
	return true
}

func (ps *Presolver) logSummary(before int, ok bool) {
	if ps.log == nil {
		return
	}
	ps.log.WithFields(logrus.Fields{
		"clauses_before":   before,
		"clauses_after":    ps.NumClauses(),
		"subsumed":         ps.stats.ClausesSubsumed,
		"strengthened":     ps.stats.ClausesStrengthened,
		"vars_eliminated":  ps.stats.VariablesEliminated,
		"blocked_clauses":  ps.stats.BlockedClauses,
		"resolvents_added": ps.stats.ResolventsAdded,
		"trivial":          ps.stats.TrivialClauses,
		"sat_possible":     ok,
	}).Info("presolve done")
}

// processAllClauses drains the to-process queue, running each clause
// through the subsumption/SSR scan. It returns false when strengthening
// emptied a clause, proving the problem unsat.
func (ps *Presolver) processAllClauses() bool {
	for {
		id := ps.pop()
		if id == -1 {
			return true
		}
		if !ps.st.live(id) {
			continue
		}
		ps.stats.ClausesProcessed++
		if !ps.processClause(id) {
			return false
		}
	}
}

// processClause scans for clauses subsumed or strengthened by ci. The
// scan walks the occurrence list of ci's rarest literal (any clause
// containing every literal of ci must contain that one), then the list of
// its negation, where only SSR results are possible since the pivot is
// the scanned literal itself.
func (ps *Presolver) processClause(ci clauseID) bool {
	clause := ps.st.get(ci)
	best := clause[0]
	for _, l := range clause[1:] {
		if ps.st.size[l] < ps.st.size[best] {
			best = l
		}
	}
	if !ps.scanOccurrences(ci, best) {
		return false
	}
	return ps.scanOccurrences(ci, best.Negation())
}

// scanOccurrences runs simplifyClause(ci, cj) for every live cj in
// occ[lit], compacting the list in place as it goes: dead ids and ids
// that lost lit through SSR are dropped.
func (ps *Presolver) scanOccurrences(ci clauseID, lit solver.Lit) bool {
	lst := ps.st.occ[lit]
	j := 0
	for _, cj := range lst {
		if !ps.st.live(cj) {
			continue
		}
		if cj == ci {
			lst[j] = cj
			j++
			continue
		}
		res, pivot := simplifyClause(ps.st.get(ci), &ps.st.clauses[cj])
		switch res {
		case simplifySubsumes:
			ps.stats.ClausesSubsumed++
			ps.removeClause(cj)
			continue // cj is dead: drop it from occ[lit]
		case simplifySSR:
			ps.stats.ClausesStrengthened++
			if len(ps.st.get(cj)) == 0 {
				return false // strengthened into the empty clause
			}
			if pivot == lit {
				// cj no longer contains the scanned literal: account for
				// it here instead of searching the list we are rewriting.
				ps.st.size[lit]--
			} else {
				ps.st.removeLitFromOcc(pivot, cj)
			}
			ps.requeueVar(pivot.Var())
			ps.enqueue(cj)
			if pivot == lit {
				continue
			}
		}
		lst[j] = cj
		j++
	}
	ps.st.occ[lit] = lst[:j]
	return true
}

// VariableMapping returns the dense renaming from the presolver's
// variable space to the reduced space handed to the solver: mapping[v] is
// v's new index, or -1 when v no longer occurs in any live clause.
func (ps *Presolver) VariableMapping() []solver.Var {
	mapping := make([]solver.Var, ps.nbVars)
	for v := range mapping {
		mapping[v] = -1
	}
	next := solver.Var(0)
	for id := range ps.st.clauses {
		if !ps.st.live(clauseID(id)) {
			continue
		}
		for _, l := range ps.st.get(clauseID(id)) {
			if mapping[l.Var()] == -1 {
				mapping[l.Var()] = -2 // occurs; numbered densely below
			}
		}
	}
	for v := range mapping {
		if mapping[v] == -2 {
			mapping[v] = next
			next++
		}
	}
	return mapping
}

// LoadInto hands the surviving clauses, remapped to the dense variable
// space, to a freshly constructed solver. The mapping is pushed to the
// attached postsolver so that records added later (by the prober, for
// instance) still resolve back to the original space. The presolver's
// internal indexes are cleared; it must not be used afterwards except for
// statistics.
func (ps *Presolver) LoadInto(newSolver func(*solver.Problem) *solver.Solver) *solver.Solver {
	mapping := ps.VariableMapping()
	if ps.post != nil {
		ps.post.ApplyMapping(mapping)
	}
	var cnf [][]int
	for id := range ps.st.clauses {
		if !ps.st.live(clauseID(id)) {
			continue
		}
		lits := ps.st.get(clauseID(id))
		line := make([]int, len(lits))
		for i, l := range lits {
			line[i] = int(mapping[l.Var()].SignedLit(!l.IsPositive()).Int())
		}
		cnf = append(cnf, line)
	}
	ps.st = newStore()
	ps.fifo = nil
	ps.inQueue = nil
	ps.head = 0
	ps.pq = nil
	return newSolver(solver.ParseSlice(cnf))
}
