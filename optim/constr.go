package optim

// A Lit is a potentially-negated boolean variable.
type Lit struct {
	Name    string
	Negated bool
}

// Var returns a new positive Lit whose var is named "name".
func Var(name string) Lit {
	return Lit{Name: name}
}

// Not returns a new negated Lit whose var is named "name".
func Not(name string) Lit {
	return Lit{Name: name, Negated: true}
}

func (l Lit) String() string {
	if l.Negated {
		return "¬" + l.Name
	}
	return l.Name
}

// Negation returns the logical negation of l.
func (l Lit) Negation() Lit {
	return Lit{Name: l.Name, Negated: !l.Negated}
}

// A Constr is a weighted pseudo-boolean constraint.
type Constr struct {
	Lits    []Lit // The literals appearing in the constraint.
	Coeffs  []int // The coefficient of each literal. If nil, all coeffs are 1.
	AtLeast int   // Minimal weighted sum for the constr to be satisfied.
	Weight  int   // The cost of violating the constr, or 0 for a hard constr.
}

// HardClause returns a propositional clause that must be satisfied.
func HardClause(lits ...Lit) Constr {
	return Constr{Lits: lits, AtLeast: 1}
}

// SoftClause returns an optional propositional clause of weight 1.
func SoftClause(lits ...Lit) Constr {
	return Constr{Lits: lits, AtLeast: 1, Weight: 1}
}

// WeightedClause returns an optional propositional clause of the given
// weight.
func WeightedClause(lits []Lit, weight int) Constr {
	return Constr{Lits: lits, AtLeast: 1, Weight: weight}
}

// HardPBConstr returns a pseudo-boolean constraint that must be
// satisfied.
func HardPBConstr(lits []Lit, coeffs []int, atLeast int) Constr {
	return Constr{Lits: lits, Coeffs: coeffs, AtLeast: atLeast}
}

// SoftPBConstr returns an optional pseudo-boolean constraint of weight 1.
func SoftPBConstr(lits []Lit, coeffs []int, atLeast int) Constr {
	return Constr{Lits: lits, Coeffs: coeffs, AtLeast: atLeast, Weight: 1}
}

// WeightedPBConstr returns an optional pseudo-boolean constraint of the
// given weight.
func WeightedPBConstr(lits []Lit, coeffs []int, atLeast int, weight int) Constr {
	return Constr{Lits: lits, Coeffs: coeffs, AtLeast: atLeast, Weight: weight}
}
