package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/gopresolve/presolve"
	"github.com/crillab/gopresolve/probe"
	"github.com/crillab/gopresolve/solver"
)

var probing bool

var solveCmd = &cobra.Command{
	Use:   "solve file.cnf",
	Short: "presolve and solve a DIMACS CNF problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			// Invariant violations abort library-side; at the CLI
			// boundary they become a plain error and a non-zero exit.
			if r := recover(); r != nil {
				if iv, ok := r.(*presolve.InvariantViolation); ok {
					err = errors.Wrap(iv, "internal error")
					return
				}
				panic(r)
			}
		}()
		return solve(args[0])
	},
}

func init() {
	solveCmd.Flags().BoolVar(&probing, "probe", false, "probe for equivalent literals and reduce again before solving")
}

func solve(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open problem")
	}
	defer f.Close()
	pb, err := solver.ParseCNF(f)
	if err != nil {
		return errors.Wrapf(err, "could not parse DIMACS file %q", path)
	}
	if pb.Status == solver.Unsat {
		fmt.Println("s UNSATISFIABLE")
		return nil
	}

	ps := presolve.NewPresolver(pb.NbVars)
	post := presolve.NewPostsolver(pb.NbVars)
	ps.SetParameters(params)
	ps.SetPostsolver(post)
	ps.SetLogger(log)
	for _, unit := range pb.Units {
		if err := ps.Add([]solver.Lit{unit}); err != nil {
			fmt.Println("s UNSATISFIABLE")
			return nil
		}
	}
	for _, c := range pb.Clauses {
		lits := make([]solver.Lit, c.Len())
		for i := range lits {
			lits[i] = c.Get(i)
		}
		if err := ps.Add(lits); err != nil {
			fmt.Println("s UNSATISFIABLE")
			return nil
		}
	}
	if !ps.Presolve() {
		fmt.Println("s UNSATISFIABLE")
		return nil
	}
	var reduced *solver.Problem
	s := ps.LoadInto(func(pb *solver.Problem) *solver.Solver {
		reduced = pb // keep the reduced clauses around for the probing pass
		return solver.New(pb)
	})

	if probing {
		s, err = probeAndReduce(s, reduced, post)
		if err != nil {
			if errors.Is(err, presolve.ErrUnsatDetected) {
				fmt.Println("s UNSATISFIABLE")
				return nil
			}
			return err
		}
	}

	switch s.Solve() {
	case solver.Unsat:
		fmt.Println("s UNSATISFIABLE")
	case solver.Sat:
		model := post.PostsolveSolution(s.Model())
		fmt.Println("s SATISFIABLE")
		fmt.Print("v ")
		for v, val := range model {
			if val {
				fmt.Printf("%d ", v+1)
			} else {
				fmt.Printf("%d ", -v-1)
			}
		}
		fmt.Println("0")
	default:
		fmt.Println("s INDETERMINATE")
	}
	log.WithFields(logrus.Fields{
		"conflicts": s.Stats.NbConflicts,
		"decisions": s.Stats.NbDecisions,
		"restarts":  s.Stats.NbRestarts,
	}).Info("search done")
	return nil
}

// probeAndReduce probes for equivalent literals and, when any were
// merged, runs a second presolve round over the reduced clauses with the
// mapping installed, so every merged literal is rewritten to its
// representative and the freed variables are dropped. Units the prober
// fixed are carried over as unit clauses. The postsolver keeps
// accumulating records on top of its existing reverse mapping, so models
// of the twice-reduced problem still lift back to the original space.
func probeAndReduce(s *solver.Solver, reduced *solver.Problem, post *presolve.Postsolver) (*solver.Solver, error) {
	mapping := make([]solver.Lit, 2*s.NbVars())
	if err := probe.EquivalentLiterals(s, post, params.ProbeDeterministicTimeLimit, mapping); err != nil {
		return nil, err
	}
	merged := 0
	for l, r := range mapping {
		if solver.Lit(l) != r {
			merged++
		}
	}
	log.WithField("literals_merged", merged).Info("probing done")
	if merged == 0 {
		return s, nil
	}

	ps := presolve.NewPresolver(reduced.NbVars)
	ps.SetParameters(params)
	ps.SetPostsolver(post)
	ps.SetLogger(log)
	ps.SetEquivalenceMapping(mapping)
	for v := 0; v < reduced.NbVars; v++ {
		lit := solver.Var(v).Lit()
		switch s.FixedLitStatus(lit) {
		case solver.Sat:
			if err := ps.Add([]solver.Lit{lit}); err != nil {
				return nil, err
			}
		case solver.Unsat:
			if err := ps.Add([]solver.Lit{lit.Negation()}); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range reduced.Clauses {
		lits := make([]solver.Lit, c.Len())
		for i := range lits {
			lits[i] = c.Get(i)
		}
		if err := ps.Add(lits); err != nil {
			return nil, err
		}
	}
	if !ps.Presolve() {
		return nil, errors.Wrap(presolve.ErrUnsatDetected, "equivalence reduction")
	}
	log.WithFields(logrus.Fields{
		"variables": ps.NumVariables(),
		"clauses":   ps.NumClauses(),
	}).Debug("equivalence reduction done")
	return ps.LoadInto(solver.New), nil
}
