// Command ironautomata is the thin CLI wiring around the generator,
// optimizer, compiler and engine packages — the four external collaborator
// surfaces described by the pipeline's CLI contract: pattern generation,
// graph optimization, Eudoxus compilation, and running a compiled
// automaton against an input stream.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ironautomata/ironautomata/metrics"
)

var cfgFile string

// appMetrics is shared by every subcommand so a single process exposes one
// consistent set of counters regardless of which subcommand ran.
var appMetrics = metrics.New(prometheus.DefaultRegisterer)

var rootCmd = &cobra.Command{
	Use:   "ironautomata",
	Short: "Build, optimize, compile, and run Aho-Corasick automata",
	Long: `ironautomata turns a set of patterns into a compact,
position-independent binary automaton (Eudoxus) and runs it against
input streams.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file of default flag values")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
