package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironautomata/ironautomata/eudoxus"
	"github.com/ironautomata/ironautomata/intermediate"
)

var (
	compileInput          string
	compileOutput         string
	compileIDWidth        int
	compileAlignTo        int
	compileHighNodeWeight float64
)

var compileCmd = &cobra.Command{
	Use:   "compile [input]",
	Short: "Compile an intermediate-format automaton into a Eudoxus buffer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "input", "i", "", "intermediate input path (default stdin)")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "compiled output path (default: input path with .e suffix)")
	compileCmd.Flags().IntVarP(&compileIDWidth, "id-width", "w", 0, "identifier width: 0 to minimize, else one of 1, 2, 4, 8")
	compileCmd.Flags().IntVarP(&compileAlignTo, "align-to", "a", 1, "node record alignment, in bytes")
	compileCmd.Flags().Float64VarP(&compileHighNodeWeight, "high-node-weight", "h", 1.0, "cost multiplier for a high-degree node representation")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		fc, err := loadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("ironautomata: compile: %w", err)
		}
		if !cmd.Flags().Changed("id-width") {
			compileIDWidth = fc.IDWidth
		}
		if !cmd.Flags().Changed("align-to") {
			compileAlignTo = fc.AlignTo
		}
		if !cmd.Flags().Changed("high-node-weight") {
			compileHighNodeWeight = fc.HighNodeWeight
		}
	}

	inputPath := compileInput
	if len(args) == 1 {
		inputPath = args[0]
	}

	in := cmd.InOrStdin()
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("ironautomata: compile: %w", err)
		}
		defer f.Close()
		in = f
	}

	rd, err := intermediate.NewReader(in, appMetrics.Sink())
	if err != nil {
		return fmt.Errorf("ironautomata: compile: %w", err)
	}
	defer rd.Close()
	a, err := rd.ReadAll()
	if err != nil {
		return fmt.Errorf("ironautomata: compile: %w", err)
	}

	buf, stats, err := eudoxus.Compile(a, eudoxus.Config{
		IDWidth:        compileIDWidth,
		AlignTo:        compileAlignTo,
		HighNodeWeight: compileHighNodeWeight,
	})
	if err != nil {
		return fmt.Errorf("ironautomata: compile: %w", err)
	}
	appMetrics.RecordCompile(compileIDWidth, stats)

	outputPath := compileOutput
	if outputPath == "" {
		base := inputPath
		if base == "" {
			base = "a"
		}
		outputPath = strings.TrimSuffix(base, filepath.Ext(base)) + ".e"
	}
	if err := os.WriteFile(outputPath, buf, 0o644); err != nil {
		return fmt.Errorf("ironautomata: compile: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"output=%s total_bytes=%d id_width=%d ids_used=%d padding_bytes=%d nodes=%d outputs=%d\n",
		outputPath, stats.TotalBytes, stats.IDWidth, stats.IDsUsed, stats.PaddingBytes, stats.NodesEmitted, stats.OutputsEmitted)

	return nil
}
