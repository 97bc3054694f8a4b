package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ironautomata/ironautomata/eudoxus/engine"
)

var (
	runAutomatonPath string
	runInputPath     string
	runOutputPath    string
	runOutputType    string
	runRecordMode    string
	runBlockSize     int
	runOverlap       int
	runRepetitions   int
	runListAll       bool
	runOnlyFinal     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a compiled Eudoxus automaton against an input stream",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runAutomatonPath, "automaton", "a", "", "compiled automaton path (required)")
	runCmd.Flags().StringVarP(&runInputPath, "input", "i", "", "input path (default stdin)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "output path (default stdout)")
	runCmd.Flags().StringVarP(&runOutputType, "type", "t", "auto", "output content interpretation: auto, string, length, integer, nop")
	runCmd.Flags().StringVarP(&runRecordMode, "record", "r", "list", "match recording mode: list, count, nop")
	runCmd.Flags().IntVarP(&runBlockSize, "block-size", "s", 64*1024, "input read block size in bytes")
	runCmd.Flags().IntVarP(&runOverlap, "overlap", "l", 0, "accepted for interface compatibility; has no effect, since the engine's State already carries position across blocks")
	runCmd.Flags().IntVarP(&runRepetitions, "repetitions", "n", 1, "number of times to run the whole input through a fresh state")
	runCmd.Flags().BoolVarP(&runListAll, "list-all-outputs", "L", false, "list every output regardless of --record")
	runCmd.Flags().BoolVarP(&runOnlyFinal, "only-final", "f", false, "report only outputs reached at the last input byte")
	_ = runCmd.MarkFlagRequired("automaton")
	rootCmd.AddCommand(runCmd)
}

type recordedMatch struct {
	pos     int64
	content string
}

func runRun(cmd *cobra.Command, _ []string) error {
	buf, err := os.ReadFile(runAutomatonPath)
	if err != nil {
		return fmt.Errorf("ironautomata: run: %w", err)
	}
	eng, err := engine.Load(buf)
	if err != nil {
		return fmt.Errorf("ironautomata: run: %w", err)
	}

	in := cmd.InOrStdin()
	if runInputPath != "" {
		f, err := os.Open(runInputPath)
		if err != nil {
			return fmt.Errorf("ironautomata: run: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	if runOutputPath != "" {
		f, err := os.Create(runOutputPath)
		if err != nil {
			return fmt.Errorf("ironautomata: run: %w", err)
		}
		defer f.Close()
		out = f
	}

	input, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("ironautomata: run: %w", err)
	}

	reps := runRepetitions
	if reps < 1 {
		reps = 1
	}

	for i := 0; i < reps; i++ {
		if err := runOnce(eng, input, out); err != nil {
			return fmt.Errorf("ironautomata: run: %w", err)
		}
	}

	return nil
}

func runOnce(eng *engine.Engine, input []byte, out io.Writer) error {
	var matches []recordedMatch
	st := engine.NewState(eng, func(content []byte, pos int64) engine.Decision {
		matches = append(matches, recordedMatch{pos: pos, content: formatOutput(content, runOutputType)})

		return engine.Continue
	}, nil)

	blockSize := runBlockSize
	if blockSize < 1 {
		blockSize = len(input)
		if blockSize == 0 {
			blockSize = 1
		}
	}

	for off := 0; off < len(input) || off == 0; {
		end := off + blockSize
		if end > len(input) {
			end = len(input)
		}
		before := len(matches)
		status, err := st.Execute(input[off:end])
		appMetrics.RecordEngineStep(status, len(matches)-before)
		if err != nil {
			return err
		}
		off = end
		if status == engine.Ended {
			break
		}
		if off >= len(input) {
			break
		}
	}

	if runOnlyFinal {
		matches = filterFinal(matches, st.Pos())
	}

	return writeMatches(out, matches)
}

// filterFinal keeps only the matches reported while consuming the last
// input byte, discarding every intermediate match.
func filterFinal(matches []recordedMatch, finalPos int64) []recordedMatch {
	var out []recordedMatch
	for _, m := range matches {
		if m.pos == finalPos {
			out = append(out, m)
		}
	}

	return out
}

func writeMatches(out io.Writer, matches []recordedMatch) error {
	switch runRecordMode {
	case "nop":
		if runListAll {
			return listMatches(out, matches)
		}

		return nil
	case "count":
		if runListAll {
			if err := listMatches(out, matches); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(out, "matches=%d\n", len(matches))

		return err
	default: // "list"
		return listMatches(out, matches)
	}
}

func listMatches(out io.Writer, matches []recordedMatch) error {
	for _, m := range matches {
		if _, err := fmt.Fprintf(out, "%d\t%s\n", m.pos, m.content); err != nil {
			return err
		}
	}

	return nil
}

func formatOutput(content []byte, kind string) string {
	switch kind {
	case "string":
		return string(content)
	case "length":
		return strconv.Itoa(len(content))
	case "integer":
		return strconv.FormatUint(decodeUint(content), 10)
	case "nop":
		return ""
	default: // "auto"
		if utf8.Valid(content) && isPrintable(content) {
			return string(content)
		}

		return strconv.Itoa(len(content))
	}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c == 0x7f {
			return false
		}
	}

	return true
}

func decodeUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		return 0
	}
}
