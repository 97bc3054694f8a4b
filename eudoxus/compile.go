// File: compile.go
// Role: §4.5 compiler entry point — BFS id assignment, low-node-only
// layout, two-pass identifier-width minimization, statistics.
//
// Grounded on matrix/builder.go's builder-that-returns-statistics shape,
// generalized from a dense-matrix assembler to a variable-length binary
// record assembler.
package eudoxus

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/automaton/buffer"
)

// Compile serializes a into a compiled Eudoxus buffer per cfg.
func Compile(a *automaton.Automaton, cfg Config) ([]byte, Stats, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, Stats{}, err
	}

	nodeOrder, outputOrder, err := plan(a)
	if err != nil {
		return nil, Stats{}, err
	}

	if cfg.IDWidth == 0 {
		probe, err := layout(a, nodeOrder, outputOrder, 8, cfg.AlignTo)
		if err != nil {
			return nil, Stats{}, err
		}
		width := minimalWidth(len(probe.buf.Bytes()))

		final, err := layout(a, nodeOrder, outputOrder, width, cfg.AlignTo)
		if err != nil {
			return nil, Stats{}, err
		}

		return assemble(a, final, width)
	}

	final, err := layout(a, nodeOrder, outputOrder, cfg.IDWidth, cfg.AlignTo)
	if err != nil {
		return nil, Stats{}, err
	}
	if !fitsWidth(len(final.buf.Bytes()), cfg.IDWidth) {
		return nil, Stats{}, ErrIDTooSmall
	}

	return assemble(a, final, cfg.IDWidth)
}

func validateConfig(cfg Config) error {
	switch cfg.IDWidth {
	case 0, 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: id width %d not in {0,1,2,4,8}", ErrInvalidConfig, cfg.IDWidth)
	}
	if cfg.AlignTo < 1 {
		return fmt.Errorf("%w: align_to %d must be >= 1", ErrInvalidConfig, cfg.AlignTo)
	}

	return nil
}

// plan computes BFS node order and first-discovery output order. Nodes
// unreachable from the start node are permitted to exist but ignored by
// compilation (§3).
func plan(a *automaton.Automaton) ([]automaton.NodeID, []automaton.OutputID, error) {
	var nodeOrder []automaton.NodeID
	err := a.BreadthFirst(a.StartNode(), func(node automaton.NodeID, _ automaton.EdgeID, _ int) error {
		nodeOrder = append(nodeOrder, node)

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("eudoxus: plan: %w", err)
	}

	var outputOrder []automaton.OutputID
	seen := make(map[automaton.OutputID]bool)
	for _, nid := range nodeOrder {
		first, err := a.FirstOutput(nid)
		if err != nil {
			return nil, nil, fmt.Errorf("eudoxus: plan: %w", err)
		}
		for id := first; id != automaton.NoOutput && !seen[id]; {
			seen[id] = true
			outputOrder = append(outputOrder, id)
			next, err := a.OutputNext(id)
			if err != nil {
				return nil, nil, fmt.Errorf("eudoxus: plan: %w", err)
			}
			id = next
		}
	}

	return nodeOrder, outputOrder, nil
}

// layoutResult holds the data-section buffer and the offset maps needed
// both to patch forward references and to report final statistics.
type layoutResult struct {
	buf          *buffer.Buffer
	nodeOffset   map[automaton.NodeID]int
	outputOffset map[automaton.OutputID]int
	stats        Stats
}

type patch struct {
	at       int
	isOutput bool
	node     automaton.NodeID
	output   automaton.OutputID
	none     bool
}

// layout emits the data section once, using idWidth-byte placeholder id
// fields patched to their final offsets once every record has been
// written (§4.5 step 4).
func layout(a *automaton.Automaton, nodeOrder []automaton.NodeID, outputOrder []automaton.OutputID, idWidth, alignTo int) (*layoutResult, error) {
	buf := buffer.New(0)
	buf.AppendByte(0) // reserved: offset 0 means "no referent" (§3)

	nodeOffset := make(map[automaton.NodeID]int, len(nodeOrder))
	outputOffset := make(map[automaton.OutputID]int, len(outputOrder))
	var patches []patch
	var stats Stats

	for _, oid := range outputOrder {
		content, err := a.OutputContent(oid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: layout output %d: %w", oid, err)
		}
		next, err := a.OutputNext(oid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: layout output %d: %w", oid, err)
		}

		start := buf.Len()
		var lenField [4]byte
		binary.LittleEndian.PutUint32(lenField[:], uint32(len(content)))
		buf.Append(lenField[:])
		outputOffset[oid] = start

		nextAt := buf.Pad(idWidth)
		patches = append(patches, patch{at: nextAt, isOutput: true, output: next, none: next == automaton.NoOutput})

		buf.Append(content)

		stats.OutputsEmitted++
		stats.OutputBytes += buf.Len() - start
	}

	for _, nid := range nodeOrder {
		if buf.Len()%alignTo != 0 {
			pad := alignTo - buf.Len()%alignTo
			buf.Pad(pad)
			stats.PaddingBytes += pad
		}
		start := buf.Len()
		nodeOffset[nid] = start

		rows, err := computeRows(a, nid)
		if err != nil {
			return nil, err
		}
		if len(rows) > 255 {
			return nil, fmt.Errorf("%w: node %d has %d rows", ErrOutDegreeOverflow, nid, len(rows))
		}

		firstOutput, err := a.FirstOutput(nid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: layout node %d: %w", nid, err)
		}
		defaultTarget, advanceOnDefault, err := a.DefaultTarget(nid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: layout node %d: %w", nid, err)
		}

		header := byte(NodeTypeLow)
		if firstOutput != automaton.NoOutput {
			header |= NodeFlagHasOutput
		}
		if defaultTarget != automaton.NoNode {
			header |= NodeFlagHasDefault
			if advanceOnDefault {
				header |= NodeFlagAdvanceDefault
			}
		}
		hasNonAdvancing := false
		for _, r := range rows {
			if !r.advance {
				hasNonAdvancing = true

				break
			}
		}
		if hasNonAdvancing {
			header |= NodeFlagHasNonAdvancing
		}

		buf.AppendByte(header)
		buf.AppendByte(byte(len(rows)))

		if firstOutput != automaton.NoOutput {
			at := buf.Pad(idWidth)
			patches = append(patches, patch{at: at, isOutput: true, output: firstOutput})
		}
		if defaultTarget != automaton.NoNode {
			at := buf.Pad(idWidth)
			patches = append(patches, patch{at: at, node: defaultTarget})
		}
		if hasNonAdvancing {
			bitmap := make([]byte, (len(rows)+7)/8)
			for i, r := range rows {
				if r.advance {
					bitmap[i/8] |= 1 << uint(i%8)
				}
			}
			buf.Append(bitmap)
		}
		for _, r := range rows {
			buf.AppendByte(r.value)
			at := buf.Pad(idWidth)
			patches = append(patches, patch{at: at, node: r.target})
		}

		stats.NodesEmitted++
		stats.LowNodeBytes += buf.Len() - start
	}

	for _, p := range patches {
		off := 0
		if !p.none {
			if p.isOutput {
				off = outputOffset[p.output]
			} else {
				off = nodeOffset[p.node]
			}
		}
		buf.PatchBytes(p.at, encodeID(off, idWidth))
	}

	stats.IDWidth = idWidth
	stats.IDsUsed = len(nodeOrder) + len(outputOrder)

	return &layoutResult{buf: buf, nodeOffset: nodeOffset, outputOffset: outputOffset, stats: stats}, nil
}

// computeRows flattens node's own edges (excluding its default) into one
// row per matching byte value, sorted by ascending byte value. Edges are
// scanned in insertion order and a byte already claimed by an earlier edge
// is skipped; for a deterministic automaton (§3) no byte is covered by
// more than one edge, so this only matters for non-deterministic input.
func computeRows(a *automaton.Automaton, node automaton.NodeID) ([]row, error) {
	edgeIDs, err := a.NodeEdges(node)
	if err != nil {
		return nil, fmt.Errorf("eudoxus: node %d edges: %w", node, err)
	}

	seen := make(map[byte]bool, 256)
	var rows []row
	for _, eid := range edgeIDs {
		target, err := a.EdgeTarget(eid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: edge %d: %w", eid, err)
		}
		advance, err := a.EdgeAdvance(eid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: edge %d: %w", eid, err)
		}
		isEpsilon, err := a.EdgeIsEpsilon(eid)
		if err != nil {
			return nil, fmt.Errorf("eudoxus: edge %d: %w", eid, err)
		}

		var values []byte
		if isEpsilon {
			values = fullAlphabet()
		} else {
			values, err = a.EdgeValues(eid)
			if err != nil {
				return nil, fmt.Errorf("eudoxus: edge %d: %w", eid, err)
			}
		}

		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			rows = append(rows, row{value: v, target: target, advance: advance})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].value < rows[j].value })

	return rows, nil
}

func fullAlphabet() []byte {
	out := make([]byte, 256)
	for i := range out {
		out[i] = byte(i)
	}

	return out
}

// encodeID encodes v as a width-byte little-endian field.
func encodeID(v, width int) []byte {
	out := make([]byte, width)
	switch width {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(out, uint64(v))
	}

	return out
}

func fitsWidth(totalLen, width int) bool {
	if width >= 8 {
		return true
	}

	return uint64(totalLen) <= (uint64(1)<<(8*uint(width)))-1
}

func minimalWidth(totalLen int) int {
	for _, w := range []int{1, 2, 4, 8} {
		if fitsWidth(totalLen, w) {
			return w
		}
	}

	return 8
}

// assemble prepends the fixed header to a laid-out data section and
// finalizes Stats.
func assemble(a *automaton.Automaton, lr *layoutResult, idWidth int) ([]byte, Stats, error) {
	data := lr.buf.Bytes()

	header := make([]byte, HeaderFixedSize+idWidth)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	header[4] = FormatVersion
	header[5] = byte(idWidth)
	header[6] = EndiannessLittle
	if a.NoAdvanceNoOutput() {
		header[7] = FlagNoAdvanceNoOutput
	}
	header[8] = 0 // reserved

	nodeCount := lr.stats.NodesEmitted
	outputCount := lr.stats.OutputsEmitted
	binary.LittleEndian.PutUint32(header[9:13], uint32(nodeCount))
	binary.LittleEndian.PutUint32(header[13:17], uint32(outputCount))
	binary.LittleEndian.PutUint32(header[17:21], uint32(len(data)))
	copy(header[HeaderFixedSize:], encodeID(lr.nodeOffset[a.StartNode()], idWidth))

	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	out = append(out, data...)

	stats := lr.stats
	stats.TotalBytes = len(out)

	return out, stats, nil
}
