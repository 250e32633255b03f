package presolve

import "github.com/crillab/gopresolve/solver"

// clauseID identifies a clause in a store. IDs are handed out in
// insertion order and are never reused: removing a clause empties its
// literal slice in place rather than freeing the slot, so postsolver
// records and occurrence lists keep referring to a stable id.
type clauseID int32

// store is an append-only clause database plus a per-literal occurrence
// index, modeled on the watcher list in solver/watcher.go but indexed by
// (not watched at two positions of) every literal a live clause contains.
type store struct {
	clauses [][]solver.Lit // clauses[id] is nil/empty iff removed
	occ     [][]clauseID   // occ[lit] lists ids of live clauses containing lit
	size    []int32        // size[lit] == number of live entries in occ[lit]
	trivial int64          // clauses dropped for containing both polarities of a var
}

func newStore() *store {
	return &store{}
}

// growTo ensures the occurrence arrays can index every literal of nbVars
// variables, growing (never shrinking) on demand as new variables appear.
func (st *store) growTo(nbVars int) {
	need := nbVars * 2
	if len(st.occ) >= need {
		return
	}
	occ := make([][]clauseID, need)
	copy(occ, st.occ)
	size := make([]int32, need)
	copy(size, st.size)
	st.occ = occ
	st.size = size
}

func (st *store) nbVars() int { return len(st.occ) / 2 }

// live reports whether a clause id still denotes a nonempty clause.
func (st *store) live(id clauseID) bool {
	return int(id) < len(st.clauses) && len(st.clauses[id]) > 0
}

// get returns the literals of a live clause. Callers must check live first.
func (st *store) get(id clauseID) []solver.Lit { return st.clauses[id] }

// addClauseInternal appends lits as a new clause without any
// canonicalization: callers must already have sorted, deduplicated and
// equivalence-substituted it, and verified it contains no opposite pair.
// This is the fast path used to insert BVE resolvents, which are built
// already canonical by computeResolvant.
func (st *store) addClauseInternal(lits []solver.Lit) clauseID {
	id := clauseID(len(st.clauses))
	st.clauses = append(st.clauses, lits)
	st.growTo(maxVarPlus1(lits))
	for _, lit := range lits {
		st.occ[lit] = append(st.occ[lit], id)
		st.size[lit]++
	}
	return id
}

func maxVarPlus1(lits []solver.Lit) int {
	max := 0
	for _, lit := range lits {
		if n := int(lit.Var()) + 1; n > max {
			max = n
		}
	}
	return max
}

// remove empties a clause in place, decrementing size for every literal
// it used to contain. The clause id remains allocated but stops appearing
// in the live occurrence lists (occ entries are compacted lazily).
func (st *store) remove(id clauseID) {
	lits := st.clauses[id]
	st.clauses[id] = nil
	for _, lit := range lits {
		st.size[lit]--
	}
}

// removeLitFromOcc removes id from occ[lit] without touching the clause
// itself (used after SSR has already erased lit from the clause's own
// literal slice, so the occurrence index must catch up separately).
func (st *store) removeLitFromOcc(lit solver.Lit, id clauseID) {
	lst := st.occ[lit]
	for i, cid := range lst {
		if cid == id {
			lst[i] = lst[len(lst)-1]
			st.occ[lit] = lst[:len(lst)-1]
			st.size[lit]--
			return
		}
	}
}

// compactOcc drops dead (emptied) clause ids from occ[lit] in place,
// called opportunistically whenever the list is about to be scanned
// anyway.
func (st *store) compactOcc(lit solver.Lit) {
	lst := st.occ[lit]
	j := 0
	for _, id := range lst {
		if st.live(id) {
			lst[j] = id
			j++
		}
	}
	st.occ[lit] = lst[:j]
}
