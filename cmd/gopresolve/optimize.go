package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/gopresolve/maxsat"
	"github.com/crillab/gopresolve/optimize"
	"github.com/crillab/gopresolve/solver"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize (file.opb|file.wcnf)",
	Short: "minimize a pseudo-boolean or weighted MAXSAT objective",
	Long: `optimize parses an OPB problem with a "min:" objective or a weighted
partial MAXSAT problem in WCNF format, then minimizes the objective with
the core-guided strategy: the solver runs under assumptions keeping the
objective at its proven lower bound, and each unsatisfiable core it
returns relaxes the bound by the smallest implicated weight.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOptimize(args[0])
	},
}

func runOptimize(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open problem")
	}
	defer f.Close()

	var (
		s      *solver.Solver
		nbVars int
	)
	switch {
	case strings.HasSuffix(path, ".opb"):
		pb, err := solver.ParseOPB(f)
		if err != nil {
			return errors.Wrapf(err, "could not parse OPB file %q", path)
		}
		s = solver.New(pb)
		nbVars = pb.NbVars
	case strings.HasSuffix(path, ".wcnf"):
		iface, err := maxsat.ParseWCNF(f)
		if err != nil {
			return errors.Wrapf(err, "could not parse WCNF file %q", path)
		}
		ms := iface.(*maxsat.Solver)
		s = ms.Solver()
		nbVars = ms.NbProblemVars()
	default:
		return errors.Errorf("invalid file format for %q", path)
	}

	opt := optimize.FromSolver(s)
	opt.SetLogger(log)
	limit := optimize.NewTimeLimit(params, s)
	for {
		res := opt.Optimize(params, limit)
		switch res {
		case optimize.SolutionFound:
			fmt.Printf("o %d\n", opt.UpperBound())
		case optimize.Continue:
			if limit.Reached(s) {
				printBest(opt, nbVars, false)
				return nil
			}
		case optimize.OptimalSolutionFound:
			fmt.Printf("o %d\n", opt.UpperBound())
			printBest(opt, nbVars, true)
			log.WithFields(logrus.Fields{
				"cores":     opt.Stats().CoresProcessed,
				"conflicts": s.Stats.NbConflicts,
			}).Info("optimization done")
			return nil
		case optimize.Infeasible:
			fmt.Println("s UNSATISFIABLE")
			return nil
		}
	}
}

func printBest(opt *optimize.Optimizer, nbVars int, optimal bool) {
	model := opt.BestModel()
	if model == nil {
		fmt.Println("s UNKNOWN")
		return
	}
	if optimal {
		fmt.Println("s OPTIMUM FOUND")
	} else {
		fmt.Println("s SATISFIABLE")
	}
	fmt.Print("v ")
	for v := 0; v < nbVars && v < len(model); v++ {
		if model[v] {
			fmt.Printf("%d ", v+1)
		} else {
			fmt.Printf("%d ", -v-1)
		}
	}
	fmt.Println("0")
}
