package main

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/gopresolve/presolve"
)

var (
	params  = presolve.DefaultParameters()
	verbose bool
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "gopresolve",
	Short:         "presolve, solve and optimize CNF and pseudo-boolean problems",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetGCPercent(300)
		log.SetLevel(logrus.WarnLevel)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.BoolVarP(&verbose, "verbose", "v", false, "log pass progress and statistics")
	bindParameters(fs, &params)
	rootCmd.AddCommand(solveCmd, optimizeCmd)
}

// bindParameters maps every tunable from presolve.Parameters onto a
// flag, so the flag set is the single source of truth for defaults shown
// in --help.
func bindParameters(fs *pflag.FlagSet, p *presolve.Parameters) {
	fs.IntVar(&p.BVEThreshold, "bve-threshold", p.BVEThreshold,
		"maximum occurrence product considered for bounded variable elimination")
	fs.IntVar(&p.BVEClauseWeight, "bve-clause-weight", p.BVEClauseWeight,
		"cost charged per clause when sizing a variable elimination")
	fs.Float64Var(&p.ProbeDeterministicTimeLimit, "probe-deterministic-time-limit", p.ProbeDeterministicTimeLimit,
		"deterministic-time budget for equivalent-literal probing")
	fs.Int64Var(&p.RandomSeed, "seed", p.RandomSeed,
		"seed for randomized tie-breaking")
	fs.Int64Var(&p.MaxNumberOfConflicts, "max-conflicts", p.MaxNumberOfConflicts,
		"conflict budget per solver call, 0 for unbounded")
	fs.Float64Var(&p.MaxTimeInSeconds, "max-time", p.MaxTimeInSeconds,
		"wall-clock budget in seconds, 0 for unbounded")
	fs.Float64Var(&p.MaxDeterministicTime, "max-deterministic-time", p.MaxDeterministicTime,
		"deterministic-time budget, 0 for unbounded")
}
