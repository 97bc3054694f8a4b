// File: writer.go
// Role: §4.2 writer — accepts an in-memory graph and emits one or more
// chunks, each framed per §6 (4-byte big-endian length + zstd-compressed
// gob payload), bounded by an optional chunk_size.
package intermediate

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/ironautomata/ironautomata/automaton"
)

// Writer serializes an automaton.Automaton to the §6 chunked stream format.
type Writer struct {
	w         io.Writer
	chunkSize int
	enc       *zstd.Encoder
}

// Option configures a Writer.
type Option func(*Writer)

// WithChunkSize bounds the number of combined node+output records per
// chunk (§4.2's "optional chunk_size"). A negative n makes NewWriter fail
// with ErrChunkSize; 0 is the same as not bounding chunks at all.
func WithChunkSize(n int) Option {
	return func(wr *Writer) { wr.chunkSize = n }
}

// NewWriter returns a Writer over w. Call Close when done to release the
// underlying zstd encoder's resources.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("intermediate: new zstd encoder: %w", err)
	}

	wr := &Writer{w: w, enc: enc}
	for _, opt := range opts {
		opt(wr)
	}
	if wr.chunkSize < 0 {
		return nil, ErrChunkSize
	}

	return wr, nil
}

// Close releases the writer's zstd encoder.
func (wr *Writer) Close() error {
	return wr.enc.Close()
}

// WriteAutomaton emits a, possibly split across multiple chunks if a
// chunk size was configured. The writer assumes a is valid (§4.2: "writer
// assumes a valid graph and is permitted to abort if references are
// dangling") — it does not itself validate referential integrity.
func (wr *Writer) WriteAutomaton(a *automaton.Automaton) error {
	nodes, err := wr.nodeRecords(a)
	if err != nil {
		return err
	}
	outputs, err := wr.outputRecords(a)
	if err != nil {
		return err
	}

	start := a.StartNode()
	noAdvanceNoOutput := a.NoAdvanceNoOutput()
	metadata := a.Metadata()

	budget := wr.chunkSize
	if budget <= 0 {
		budget = len(nodes) + len(outputs)
		if budget == 0 {
			budget = 1
		}
	}

	first := true
	for first || len(nodes) > 0 || len(outputs) > 0 {
		c := chunk{}
		remaining := budget
		for remaining > 0 && len(nodes) > 0 {
			c.Nodes = append(c.Nodes, nodes[0])
			nodes = nodes[1:]
			remaining--
		}
		for remaining > 0 && len(outputs) > 0 {
			c.Outputs = append(c.Outputs, outputs[0])
			outputs = outputs[1:]
			remaining--
		}
		if first {
			c.StartNode = &start
			c.NoAdvanceNoOutput = &noAdvanceNoOutput
			if len(metadata) > 0 {
				c.Metadata = metadata
			}
			first = false
		}
		if err := wr.writeChunk(c); err != nil {
			return err
		}
	}

	return nil
}

func (wr *Writer) nodeRecords(a *automaton.Automaton) ([]NodeRecord, error) {
	count := a.NodeCount()
	out := make([]NodeRecord, 0, count)
	for i := 0; i < count; i++ {
		id := automaton.NodeID(i)
		firstOutput, err := a.FirstOutput(id)
		if err != nil {
			return nil, fmt.Errorf("intermediate: node %d first-output: %w", i, err)
		}
		defaultTarget, advance, err := a.DefaultTarget(id)
		if err != nil {
			return nil, fmt.Errorf("intermediate: node %d default-target: %w", i, err)
		}
		edgeIDs, err := a.NodeEdges(id)
		if err != nil {
			return nil, fmt.Errorf("intermediate: node %d edges: %w", i, err)
		}

		edges := make([]EdgeRecord, 0, len(edgeIDs))
		for _, eid := range edgeIDs {
			rec, err := wr.edgeRecord(a, eid)
			if err != nil {
				return nil, err
			}
			edges = append(edges, rec)
		}

		out = append(out, NodeRecord{
			ID:               id,
			FirstOutput:      firstOutput,
			DefaultTarget:    defaultTarget,
			AdvanceOnDefault: advance,
			Edges:            edges,
		})
	}

	return out, nil
}

func (wr *Writer) edgeRecord(a *automaton.Automaton, eid automaton.EdgeID) (EdgeRecord, error) {
	target, err := a.EdgeTarget(eid)
	if err != nil {
		return EdgeRecord{}, fmt.Errorf("intermediate: edge %d target: %w", eid, err)
	}
	advance, err := a.EdgeAdvance(eid)
	if err != nil {
		return EdgeRecord{}, fmt.Errorf("intermediate: edge %d advance: %w", eid, err)
	}
	isEpsilon, err := a.EdgeIsEpsilon(eid)
	if err != nil {
		return EdgeRecord{}, fmt.Errorf("intermediate: edge %d epsilon check: %w", eid, err)
	}

	rec := EdgeRecord{Target: target, Advance: advance}
	if !isEpsilon {
		values, err := a.EdgeValues(eid)
		if err != nil {
			return EdgeRecord{}, fmt.Errorf("intermediate: edge %d values: %w", eid, err)
		}
		rec.Values = values
	}

	return rec, nil
}

func (wr *Writer) outputRecords(a *automaton.Automaton) ([]OutputRecord, error) {
	count := a.OutputCount()
	out := make([]OutputRecord, 0, count)
	for i := 0; i < count; i++ {
		id := automaton.OutputID(i)
		content, err := a.OutputContent(id)
		if err != nil {
			return nil, fmt.Errorf("intermediate: output %d content: %w", i, err)
		}
		next, err := a.OutputNext(id)
		if err != nil {
			return nil, fmt.Errorf("intermediate: output %d next: %w", i, err)
		}
		out = append(out, OutputRecord{ID: id, Content: content, Next: next})
	}

	return out, nil
}

func (wr *Writer) writeChunk(c chunk) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("intermediate: encode chunk: %w", err)
	}
	compressed := wr.enc.EncodeAll(buf.Bytes(), nil)

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(compressed)))
	if _, err := wr.w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("intermediate: write frame length: %w", err)
	}
	if _, err := wr.w.Write(compressed); err != nil {
		return fmt.Errorf("intermediate: write frame payload: %w", err)
	}

	return nil
}
