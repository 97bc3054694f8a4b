package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironautomata/ironautomata/generator"
	"github.com/ironautomata/ironautomata/intermediate"
)

var generateChunkSize int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build an Aho-Corasick automaton from patterns read on standard input",
	Long: `generate reads one pattern per line from standard input and writes the
resulting automaton in intermediate-stream format to standard output.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateChunkSize, "chunk-size", 0, "intermediate stream chunk size in node records (0 = single chunk)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	g := generator.New()
	if err := g.Begin(); err != nil {
		return fmt.Errorf("ironautomata: generate: %w", err)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := g.AddPattern(line); err != nil {
			return fmt.Errorf("ironautomata: generate: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ironautomata: generate: %w", err)
	}

	a, err := g.Finish()
	if err != nil {
		return fmt.Errorf("ironautomata: generate: %w", err)
	}

	var opts []intermediate.Option
	if generateChunkSize > 0 {
		opts = append(opts, intermediate.WithChunkSize(generateChunkSize))
	}
	wr, err := intermediate.NewWriter(cmd.OutOrStdout(), opts...)
	if err != nil {
		return fmt.Errorf("ironautomata: generate: %w", err)
	}
	if err := wr.WriteAutomaton(a); err != nil {
		return fmt.Errorf("ironautomata: generate: %w", err)
	}

	return wr.Close()
}
