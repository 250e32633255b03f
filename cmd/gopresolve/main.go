// Command gopresolve presolves, solves and optimizes SAT and
// pseudo-boolean problems: clauses are reduced by subsumption, bounded
// variable elimination and equivalent-literal probing before reaching the
// CDCL engine, and models of the reduced problem are lifted back to the
// original variables.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
