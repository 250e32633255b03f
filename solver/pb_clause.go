package solver

import (
	"fmt"
	"strings"
)

// Pseudo-boolean extension of Clause: a clause may carry a weight for
// each literal, turning "at least card lits are true" into "the weights
// of the true lits sum to at least card".

// NewPBClause returns a pseudo-boolean constraint: the sum of the weights
// of the satisfied lits must be at least card. A nil weights slice means
// all weights are 1, i.e a cardinality constraint.
func NewPBClause(lits []Lit, weights []int, card int) *Clause {
	if card < 1 {
		panic("Invalid cardinality value")
	}
	return &Clause{lits: lits, weights: weights, lbdValue: uint32(card - 1)}
}

// PseudoBoolean returns true iff the clause has explicit weights, i.e at
// least one literal might count for more than 1.
func (c *Clause) PseudoBoolean() bool {
	return c.weights != nil
}

// Weight returns the weight of the ith literal.
func (c *Clause) Weight(i int) int {
	if c.weights == nil {
		return 1
	}
	return c.weights[i]
}

// WeightSum returns the sum of the weights of all the clause's literals.
func (c *Clause) WeightSum() int {
	if c.weights == nil {
		return len(c.lits)
	}
	res := 0
	for _, w := range c.weights {
		res += w
	}
	return res
}

// removeLit removes the ith literal from the clause, along with its
// weight. The last literal takes its place, so the ordering of the
// remaining lits is not preserved.
func (c *Clause) removeLit(i int) {
	last := len(c.lits) - 1
	c.lits[i] = c.lits[last]
	c.lits = c.lits[:last]
	if c.weights != nil {
		c.weights[i] = c.weights[last]
		c.weights = c.weights[:last]
	}
}

// updateCardinality adds incr (typically negative) to the clause's
// cardinality. The stored cardinality never goes below 1: a clause whose
// cardinality would drop to 0 is satisfied and should be discarded by the
// caller anyway.
func (c *Clause) updateCardinality(incr int) {
	card := c.Cardinality() + incr
	if card < 1 {
		card = 1
	}
	c.lbdValue = (c.lbdValue & bothMasks) | uint32(card-1)
}

// PBString returns a representation of the clause as a pseudo-boolean
// constraint in the OPB syntax.
func (c *Clause) PBString() string {
	terms := make([]string, len(c.lits))
	for i, lit := range c.lits {
		val := lit.Int()
		sign := ""
		if val < 0 {
			val = -val
			sign = "~"
		}
		terms[i] = fmt.Sprintf("%d %sx%d", c.Weight(i), sign, val)
	}
	return fmt.Sprintf("%s >= %d ;", strings.Join(terms, " +"), c.Cardinality())
}

// SimplifyPB statically simplifies a pseudo-boolean constraint: literals
// whose weight is large enough that the constraint cannot be satisfied
// without them are returned as units and removed, to fixpoint. It returns
// the forced literals, the simplified constraint (nil if the units alone
// satisfy it) and false iff the constraint cannot be satisfied at all.
// The receiver is left untouched.
func (c *Clause) SimplifyPB() (units []Lit, simplified *Clause, ok bool) {
	lits := make([]Lit, len(c.lits))
	copy(lits, c.lits)
	weights := make([]int, len(lits))
	for i := range lits {
		weights[i] = c.Weight(i)
	}
	card := c.Cardinality()
	wSum := 0
	for _, w := range weights {
		wSum += w
	}
	modified := true
	for modified {
		modified = false
		if wSum < card {
			return nil, nil, false
		}
		if card <= 0 {
			return units, nil, true
		}
		i := 0
		for i < len(lits) {
			if wSum-weights[i] < card {
				units = append(units, lits[i])
				card -= weights[i]
				wSum -= weights[i]
				lits = append(lits[:i], lits[i+1:]...)
				weights = append(weights[:i], weights[i+1:]...)
				modified = true
			} else {
				i++
			}
		}
	}
	if card <= 0 {
		return units, nil, true
	}
	return units, NewPBClause(lits, weights, card), true
}
