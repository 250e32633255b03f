package optimize

import "github.com/crillab/gopresolve/solver"

// nodeID is a weak reference into a Repository. Nodes reference their
// children by id, never by pointer, so the encoding graph (a DAG once
// partially-paid nodes are merged) involves no cyclic ownership.
type nodeID int32

const noNode nodeID = -1

// A node encodes a cardinality view over a set of objective literals: its
// output literal at absolute index t is true whenever at least t+1 of the
// leaves below it are true. Output literals are materialized lazily, one
// level at a time, and a prefix of them becomes fixed true as the lower
// bound grows; offset counts that paid-for prefix, so lits[offset] is the
// node's current frontier. Nodes only ever grow.
type node struct {
	lits    []solver.Lit // materialized output literals, in absolute order
	offset  int          // how many leading literals are fixed true and already counted
	maxSize int          // number of leaves below: the materialization limit
	weight  int64
	left    nodeID // noNode for leaves
	right   nodeID
}

// Repository is the arena owning every encoding node. It outlives all of
// them; the optimizer and the nodes themselves address each other through
// it.
type Repository struct {
	nodes []node
}

func NewRepository() *Repository { return &Repository{} }

// NewLeaf creates a size-1 node whose single output literal is the
// objective literal itself.
func (r *Repository) NewLeaf(lit solver.Lit, weight int64) nodeID {
	r.nodes = append(r.nodes, node{
		lits:    []solver.Lit{lit},
		maxSize: 1,
		weight:  weight,
		left:    noNode,
		right:   noNode,
	})
	return nodeID(len(r.nodes) - 1)
}

func (r *Repository) at(id nodeID) *node { return &r.nodes[id] }

// Size returns the number of materialized, not-yet-paid output literals:
// the node's usable frontier depth.
func (r *Repository) Size(id nodeID) int {
	n := r.at(id)
	return len(n.lits) - n.offset
}

// Saturated reports whether every output literal the node can ever have
// is materialized and paid for, i.e. all its leaves are known true.
func (r *Repository) Saturated(id nodeID) bool {
	n := r.at(id)
	return n.offset == n.maxSize
}

// FirstLiteral returns the frontier literal, whose negation is the
// node's assumption: asserting it false asserts that no further leaf
// below the node is true.
func (r *Repository) FirstLiteral(id nodeID) solver.Lit {
	n := r.at(id)
	return n.lits[n.offset]
}

// Weight returns the node's current weight.
func (r *Repository) Weight(id nodeID) int64 { return r.at(id).weight }

// Reduce absorbs output literals the solver has fixed true at its base
// level into the node's paid prefix and returns how many were absorbed;
// each one raises the provable objective lower bound by the node's
// weight. When the whole materialized frontier is absorbed but leaves
// remain, the next level is materialized so the node keeps a frontier.
func (r *Repository) Reduce(s *solver.Solver, id nodeID) int {
	n := r.at(id)
	reduced := 0
	for n.offset < len(n.lits) && s.FixedLitStatus(n.lits[n.offset]) == solver.Sat {
		n.offset++
		reduced++
	}
	if n.offset == len(n.lits) && n.offset < n.maxSize {
		r.IncreaseNodeSize(s, id)
	}
	return reduced
}

// ApplyUpperBound caps the node's contribution at k more satisfied
// leaves: the output literal k past the frontier, if materialized, is
// asserted false. Thanks to the ordering clauses between consecutive
// output literals, that single unit also falsifies every deeper one.
// With k == 0 the node is fully capped; the caller should then drop it
// from the active set, since its assumption became a fixed fact. The
// return value reports whether a new unit was actually asserted.
func (r *Repository) ApplyUpperBound(s *solver.Solver, id nodeID, k int64) bool {
	n := r.at(id)
	idx := n.offset + int(k)
	if idx >= len(n.lits) || s.FixedLitStatus(n.lits[idx]) != solver.Indet {
		return false
	}
	s.AddUnitClause(n.lits[idx].Negation())
	return true
}

// IncreaseNodeSize materializes the node's next output literal, growing
// children first when the new level needs deeper child literals than they
// have. The clauses added encode one direction only (enough leaves true
// forces the output literal true), which both uses need: assumptions
// refute it, upper bounds cap it.
func (r *Repository) IncreaseNodeSize(s *solver.Solver, id nodeID) {
	n := r.at(id)
	if len(n.lits) >= n.maxSize {
		return
	}
	t := len(n.lits) // absolute index of the literal being materialized
	if n.left == noNode {
		panic("optimize: leaf nodes cannot grow")
	}
	r.materializeTo(s, n.left, t+1)
	r.materializeTo(s, n.right, t+1)

	out := s.NewVar().Lit()
	n.lits = append(n.lits, out)
	left, right := r.at(n.left), r.at(n.right)

	// sum_left >= i+1 and sum_right >= j+1 force sum >= t+1 whenever
	// (i+1)+(j+1) == t+1; i or j may be -1, meaning no requirement on
	// that side.
	for i := -1; i <= t; i++ {
		j := t - 1 - i
		if i >= len(left.lits) || j >= len(right.lits) || (i < 0 && j < 0) {
			continue
		}
		var lits []solver.Lit
		if i >= 0 {
			lits = append(lits, left.lits[i].Negation())
		}
		if j >= 0 {
			lits = append(lits, right.lits[j].Negation())
		}
		lits = append(lits, out)
		s.AddPermanentClause(lits)
	}
	if t > 0 {
		// Ordering between consecutive output literals: sum >= t+1
		// implies sum >= t.
		s.AddPermanentClause([]solver.Lit{out.Negation(), n.lits[t-1]})
	}
}

// materializeTo grows id until it has at least want materialized output
// literals (bounded by its leaf count).
func (r *Repository) materializeTo(s *solver.Solver, id nodeID, want int) {
	for len(r.at(id).lits) < want && len(r.at(id).lits) < r.at(id).maxSize {
		r.IncreaseNodeSize(s, id)
	}
}

// Merge combines the given nodes into a single fresh node summing all
// their leaves, materializing only the first output literal of each new
// parent. Children are merged pairwise, first to last, so the shape is
// deterministic. The new node's weight starts at zero; the caller sets
// it.
func (r *Repository) Merge(s *solver.Solver, ids []nodeID) nodeID {
	if len(ids) == 0 {
		panic("optimize: merging zero nodes")
	}
	for len(ids) > 1 {
		var next []nodeID
		for i := 0; i+1 < len(ids); i += 2 {
			next = append(next, r.mergeTwo(s, ids[i], ids[i+1]))
		}
		if len(ids)%2 == 1 {
			next = append(next, ids[len(ids)-1])
		}
		ids = next
	}
	return ids[0]
}

func (r *Repository) mergeTwo(s *solver.Solver, a, b nodeID) nodeID {
	parent := node{
		maxSize: r.at(a).maxSize + r.at(b).maxSize,
		left:    a,
		right:   b,
	}
	r.nodes = append(r.nodes, parent)
	id := nodeID(len(r.nodes) - 1)
	r.IncreaseNodeSize(s, id)
	return id
}
