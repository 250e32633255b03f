package optim

import (
	"fmt"

	"github.com/crillab/gopresolve/optimize"
	"github.com/crillab/gopresolve/presolve"
	"github.com/crillab/gopresolve/solver"
)

// A Model associates variable names with a binding.
type Model map[string]bool

// A Problem is a set of hard and soft constraints over named variables,
// minimized with the core-guided optimizer: each soft constraint gets a
// blocking literal whose weight is the constraint's violation cost, and
// the optimizer minimizes the weighted sum of blocking literals.
type Problem struct {
	solver  *solver.Solver
	opt     *optimize.Optimizer
	intVars map[string]int // for each var name, its integer counterpart
	varInts []string       // for each int value, the associated name; "" for blocking lits
}

// New returns a new problem associated with the given constraints.
func New(constrs ...Constr) *Problem {
	pb := &Problem{intVars: make(map[string]int)}
	var (
		clauses      []solver.PBConstr
		blockLits    []solver.Lit
		blockWeights []int64
	)
	for _, constr := range constrs {
		lits := make([]int, len(constr.Lits))
		for j, lit := range constr.Lits {
			name := lit.Name
			if _, ok := pb.intVars[name]; !ok {
				pb.varInts = append(pb.varInts, name)
				pb.intVars[name] = len(pb.varInts)
			}
			lits[j] = pb.intVars[name]
			if lit.Negated {
				lits[j] = -lits[j]
			}
		}
		var coeffs []int
		if len(constr.Coeffs) != 0 {
			coeffs = make([]int, len(constr.Coeffs))
			copy(coeffs, constr.Coeffs)
		} else if constr.Weight != 0 && constr.AtLeast > 1 {
			// A soft cardinality constraint needs explicit unit coeffs so
			// its blocking literal can carry the full cardinality.
			coeffs = make([]int, len(lits))
			for i := range coeffs {
				coeffs[i] = 1
			}
		}
		if constr.Weight != 0 { // Soft constraint: add a blocking literal
			pb.varInts = append(pb.varInts, "")
			bl := len(pb.varInts)
			blockLits = append(blockLits, solver.IntToLit(int32(bl)))
			blockWeights = append(blockWeights, int64(constr.Weight))
			lits = append(lits, bl)
			if coeffs != nil {
				coeffs = append(coeffs, constr.AtLeast)
			}
		}
		clauses = append(clauses, solver.GtEq(lits, coeffs, constr.AtLeast))
	}
	pb.solver = solver.New(solver.ParsePBConstrs(clauses))
	pb.opt = optimize.New(pb.solver, blockLits, blockWeights, 0)
	return pb
}

// Output outputs the problem to stdout in the OPB format.
func (pb *Problem) Output() {
	fmt.Println(pb.solver.PBString())
}

// Solver gives access to the underlying solver.Solver. Unless you have
// specific needs you will usually want to call pb.Solve() instead.
func (pb *Problem) Solver() *solver.Solver {
	return pb.solver
}

// Solve returns an optimal Model for the problem and the associated
// cost, i.e the sum of the weights of the violated soft constraints. If
// the model is nil, the hard constraints could not be satisfied and the
// cost is -1.
func (pb *Problem) Solve() (Model, int) {
	params := presolve.DefaultParameters()
	for {
		switch pb.opt.Optimize(params, nil) {
		case optimize.SolutionFound, optimize.Continue:
			// keep going: no budget was set, so progress is guaranteed
		case optimize.OptimalSolutionFound:
			return pb.model(pb.opt.BestModel()), int(pb.opt.UpperBound())
		case optimize.Infeasible:
			return nil, -1
		}
	}
}

func (pb *Problem) model(bindings []bool) Model {
	res := make(Model, len(pb.intVars))
	for i, name := range pb.varInts {
		if name != "" { // Skip blocking lits
			res[name] = bindings[i]
		}
	}
	return res
}
