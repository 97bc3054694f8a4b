package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/intermediate"
	"github.com/ironautomata/ironautomata/optimizer"
)

var (
	optimizeFast           bool
	optimizeSpacePreset    bool
	optimizeEdges          bool
	optimizeDedupe         bool
	optimizeTranslateLevel string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run optimizer passes over an intermediate-format automaton",
	Long: `optimize reads an automaton in intermediate-stream format from standard
input, runs the requested passes, and writes the result back to standard
output in the same format.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeFast, "fast", false, "preset: edge canonicalization and conservative non-advancing translation only")
	optimizeCmd.Flags().BoolVar(&optimizeSpacePreset, "space", false, "preset: every pass at its most aggressive, including output dedup")
	optimizeCmd.Flags().BoolVar(&optimizeEdges, "edges", true, "canonicalize and elide each node's edges")
	optimizeCmd.Flags().BoolVar(&optimizeDedupe, "dedupe", true, "merge identical output records")
	optimizeCmd.Flags().StringVar(&optimizeTranslateLevel, "translate", "conservative", "non-advancing edge translation: none, conservative, aggressive, structural")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	switch {
	case optimizeFast:
		optimizeEdges, optimizeDedupe, optimizeTranslateLevel = true, false, "conservative"
	case optimizeSpacePreset:
		optimizeEdges, optimizeDedupe, optimizeTranslateLevel = true, true, "structural"
	}

	rd, err := intermediate.NewReader(cmd.InOrStdin(), appMetrics.Sink())
	if err != nil {
		return fmt.Errorf("ironautomata: optimize: %w", err)
	}
	defer rd.Close()
	a, err := rd.ReadAll()
	if err != nil {
		return fmt.Errorf("ironautomata: optimize: %w", err)
	}

	if optimizeEdges {
		if err := runOptimizeEdges(a); err != nil {
			return fmt.Errorf("ironautomata: optimize: %w", err)
		}
	}

	if err := runTranslate(a, optimizeTranslateLevel); err != nil {
		return fmt.Errorf("ironautomata: optimize: %w", err)
	}

	if optimizeDedupe {
		if _, err := optimizer.DeduplicateOutputs(a); err != nil {
			return fmt.Errorf("ironautomata: optimize: %w", err)
		}
	}

	wr, err := intermediate.NewWriter(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("ironautomata: optimize: %w", err)
	}
	if err := wr.WriteAutomaton(a); err != nil {
		return fmt.Errorf("ironautomata: optimize: %w", err)
	}

	return wr.Close()
}

func runOptimizeEdges(a *automaton.Automaton) error {
	var nodes []automaton.NodeID
	err := a.BreadthFirst(a.StartNode(), func(n automaton.NodeID, _ automaton.EdgeID, _ int) error {
		nodes = append(nodes, n)

		return nil
	})
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if _, err := optimizer.OptimizeEdges(a, n); err != nil {
			return err
		}
	}

	return nil
}

func runTranslate(a *automaton.Automaton, level string) error {
	var err error
	switch level {
	case "none":
	case "conservative":
		_, err = optimizer.TranslateNonAdvancingConservative(a)
	case "aggressive":
		_, err = optimizer.TranslateNonAdvancingAggressive(a)
	case "structural":
		_, err = optimizer.TranslateNonAdvancingStructural(a)
	default:
		return fmt.Errorf("unknown --translate level %q", level)
	}

	return err
}
