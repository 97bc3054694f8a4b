// File: reader.go
// Role: §4.2 reader — consumes a stream of chunks, accumulating records
// before resolving any reference so frame order and forward references
// never matter, then validates referential integrity per §4.2/§7's
// error/warning taxonomy.
package intermediate

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/automaton/bitset"
	"github.com/ironautomata/ironautomata/logging"
)

// maxReasonableVectorLength is the edge value-vector length above which
// the reader warns rather than silently accepting it: a vector this large
// should have been written in bitmap form (§4.4's own bitmapThreshold is
// 32; this is deliberately higher since "too long" here is a wire-format
// hygiene warning, not the cost-model threshold the optimizer applies).
const maxReasonableVectorLength = 64

// Reader consumes a §6 chunked stream and reconstructs an automaton.Automaton.
type Reader struct {
	r    io.Reader
	sink logging.Sink
	dec  *zstd.Decoder

	success bool
	warned  bool

	nodes     map[automaton.NodeID]NodeRecord
	nodeOrder []automaton.NodeID

	outputs     map[automaton.OutputID]OutputRecord
	outputOrder []automaton.OutputID

	startNode automaton.NodeID
	startSet  bool

	noAdvanceNoOutput bool
	metadata          map[string]string
}

// NewReader returns a Reader over r. Diagnostics (errors and warnings) are
// delivered to sink as they're discovered; sink may be nil.
func NewReader(r io.Reader, sink logging.Sink) (*Reader, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("intermediate: new zstd decoder: %w", err)
	}

	return &Reader{
		r:        r,
		sink:     sink,
		dec:      dec,
		success:  true,
		nodes:    make(map[automaton.NodeID]NodeRecord),
		outputs:  make(map[automaton.OutputID]OutputRecord),
		metadata: make(map[string]string),
	}, nil
}

// Close releases the reader's zstd decoder.
func (rd *Reader) Close() {
	rd.dec.Close()
}

// Success reports whether reading encountered no errors (§7).
func (rd *Reader) Success() bool { return rd.success }

// Clean reports whether reading encountered neither errors nor warnings (§7).
func (rd *Reader) Clean() bool { return rd.success && !rd.warned }

// ReadAll reads every frame until EOF, then validates and assembles the
// automaton. It stops and returns an error immediately on a frame that
// cannot be read or parsed; referential-integrity problems discovered
// during assembly are reported after the whole stream is consumed.
func (rd *Reader) ReadAll() (*automaton.Automaton, error) {
	for {
		c, ok, err := rd.readFrame()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rd.mergeChunk(c)
	}

	return rd.build()
}

func (rd *Reader) readFrame() (*chunk, bool, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(rd.r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		rd.fail("intermediate.Reader", "truncated frame length", nil)

		return nil, false, fmt.Errorf("%w: %v", ErrTruncatedFrame, err)
	}

	payload := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(rd.r, payload); err != nil {
		rd.fail("intermediate.Reader", "truncated frame payload", nil)

		return nil, false, fmt.Errorf("%w: %v", ErrTruncatedFrame, err)
	}

	raw, err := rd.dec.DecodeAll(payload, nil)
	if err != nil {
		rd.fail("intermediate.Reader", "zstd decompression failed", nil)

		return nil, false, fmt.Errorf("%w: %v", ErrMalformedChunk, err)
	}

	var c chunk
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&c); err != nil {
		rd.fail("intermediate.Reader", "gob decode failed", nil)

		return nil, false, fmt.Errorf("%w: %v", ErrMalformedChunk, err)
	}

	return &c, true, nil
}

func (rd *Reader) mergeChunk(c *chunk) {
	for _, rec := range c.Nodes {
		if _, dup := rd.nodes[rec.ID]; dup {
			rd.warn("intermediate.Reader", "duplicate node definition", map[string]any{"id": int(rec.ID)})

			continue
		}
		rd.nodes[rec.ID] = rec
		rd.nodeOrder = append(rd.nodeOrder, rec.ID)
	}

	for _, rec := range c.Outputs {
		if _, dup := rd.outputs[rec.ID]; dup {
			rd.warn("intermediate.Reader", "duplicate output definition", map[string]any{"id": int(rec.ID)})

			continue
		}
		rd.outputs[rec.ID] = rec
		rd.outputOrder = append(rd.outputOrder, rec.ID)
	}

	if c.StartNode != nil {
		if rd.startSet && rd.startNode != *c.StartNode {
			rd.warn("intermediate.Reader", "conflicting start-node declaration", map[string]any{
				"previous": int(rd.startNode),
				"new":      int(*c.StartNode),
			})
		} else {
			rd.startNode = *c.StartNode
			rd.startSet = true
		}
	}

	if c.NoAdvanceNoOutput != nil {
		rd.noAdvanceNoOutput = *c.NoAdvanceNoOutput
	}

	for k, v := range c.Metadata {
		rd.metadata[k] = v
	}
}

func (rd *Reader) warn(location, message string, fields map[string]any) {
	rd.warned = true
	logging.Emit(rd.sink, logging.Event{Severity: logging.Warning, Location: location, Message: message, Fields: fields})
}

func (rd *Reader) fail(location, message string, fields map[string]any) {
	rd.success = false
	logging.Emit(rd.sink, logging.Event{Severity: logging.Error, Location: location, Message: message, Fields: fields})
}

func (rd *Reader) build() (*automaton.Automaton, error) {
	if !rd.startSet {
		// The implicit default (§4.2): the graph-layer start node when
		// none is declared is id 0, matching automaton.New()'s own default.
		rd.startNode = 0
	}

	referencedNodes := map[automaton.NodeID]bool{rd.startNode: true}
	if _, ok := rd.nodes[rd.startNode]; !ok {
		rd.fail("intermediate.Reader", "start node id is undefined", map[string]any{"id": int(rd.startNode)})
	}

	referencedOutputs := make(map[automaton.OutputID]bool)
	var buildErr error

	for _, id := range rd.nodeOrder {
		rec := rd.nodes[id]

		if rec.FirstOutput != automaton.NoOutput {
			referencedOutputs[rec.FirstOutput] = true
			if _, ok := rd.outputs[rec.FirstOutput]; !ok {
				rd.fail("intermediate.Reader", "dangling first-output reference", map[string]any{"node": int(id), "output": int(rec.FirstOutput)})
			}
		}
		if rec.DefaultTarget != automaton.NoNode {
			referencedNodes[rec.DefaultTarget] = true
			if _, ok := rd.nodes[rec.DefaultTarget]; !ok {
				rd.fail("intermediate.Reader", "dangling default-target reference", map[string]any{"node": int(id), "target": int(rec.DefaultTarget)})
			}
		}
		for _, e := range rec.Edges {
			referencedNodes[e.Target] = true
			if _, ok := rd.nodes[e.Target]; !ok {
				rd.fail("intermediate.Reader", "dangling edge-target reference", map[string]any{"node": int(id), "target": int(e.Target)})
			}
			if len(e.Values) > 0 && len(e.Bitmap) > 0 {
				rd.fail("intermediate.Reader", "edge specifies both vector and bitmap values", map[string]any{"node": int(id)})
				buildErr = ErrAmbiguousEdgeValues
			}
			if len(e.Bitmap) > 0 && len(e.Bitmap) != 32 {
				rd.fail("intermediate.Reader", "edge bitmap has wrong length", map[string]any{"node": int(id), "length": len(e.Bitmap)})
				buildErr = ErrBadBitmapLength
			}
			if len(e.Values) > maxReasonableVectorLength {
				rd.warn("intermediate.Reader", "oversized edge value vector", map[string]any{"node": int(id), "length": len(e.Values)})
			}
		}
	}

	for _, id := range rd.outputOrder {
		rec := rd.outputs[id]
		if rec.Next != automaton.NoOutput {
			referencedOutputs[rec.Next] = true
			if _, ok := rd.outputs[rec.Next]; !ok {
				rd.fail("intermediate.Reader", "dangling output-next reference", map[string]any{"output": int(id), "next": int(rec.Next)})
			}
		}
	}

	for _, id := range rd.nodeOrder {
		if !referencedNodes[id] {
			rd.warn("intermediate.Reader", "node defined but never referenced", map[string]any{"id": int(id)})
		}
	}
	for _, id := range rd.outputOrder {
		if !referencedOutputs[id] {
			rd.warn("intermediate.Reader", "output defined but never referenced", map[string]any{"id": int(id)})
		}
	}

	if !rd.success {
		if buildErr == nil {
			buildErr = ErrDanglingReference
		}

		return nil, buildErr
	}

	return rd.assemble()
}

// assemble replays the accumulated, now-validated records into a fresh
// automaton.Automaton. Wire ids need not be contiguous or start at 0, so
// every id is remapped to whatever automaton.AddNode/AddOutput assigns.
func (rd *Reader) assemble() (*automaton.Automaton, error) {
	sortedNodeIDs := append([]automaton.NodeID(nil), rd.nodeOrder...)
	sort.Slice(sortedNodeIDs, func(i, j int) bool { return sortedNodeIDs[i] < sortedNodeIDs[j] })
	sortedOutputIDs := append([]automaton.OutputID(nil), rd.outputOrder...)
	sort.Slice(sortedOutputIDs, func(i, j int) bool { return sortedOutputIDs[i] < sortedOutputIDs[j] })

	a := automaton.New()

	nodeRemap := make(map[automaton.NodeID]automaton.NodeID, len(sortedNodeIDs))
	for i, wireID := range sortedNodeIDs {
		if i == 0 {
			nodeRemap[wireID] = a.StartNode() // reuse the arena slot automaton.New() already allocated
			continue
		}
		nodeRemap[wireID] = a.AddNode()
	}

	outputRemap := make(map[automaton.OutputID]automaton.OutputID, len(sortedOutputIDs))
	for _, wireID := range sortedOutputIDs {
		outputRemap[wireID] = a.AddOutput(rd.outputs[wireID].Content)
	}
	for _, wireID := range sortedOutputIDs {
		rec := rd.outputs[wireID]
		if rec.Next == automaton.NoOutput {
			continue
		}
		if err := a.SetOutputNext(outputRemap[wireID], outputRemap[rec.Next]); err != nil {
			return nil, fmt.Errorf("intermediate: assemble output %d: %w", wireID, err)
		}
	}

	for _, wireID := range sortedNodeIDs {
		rec := rd.nodes[wireID]
		newID := nodeRemap[wireID]

		if rec.FirstOutput != automaton.NoOutput {
			if err := a.SetFirstOutput(newID, outputRemap[rec.FirstOutput]); err != nil {
				return nil, fmt.Errorf("intermediate: assemble node %d: %w", wireID, err)
			}
		}
		if rec.DefaultTarget != automaton.NoNode {
			if err := a.SetDefaultTarget(newID, nodeRemap[rec.DefaultTarget], rec.AdvanceOnDefault); err != nil {
				return nil, fmt.Errorf("intermediate: assemble node %d: %w", wireID, err)
			}
		}
		for _, e := range rec.Edges {
			eid, err := a.AddEdge(newID, nodeRemap[e.Target], e.Advance)
			if err != nil {
				return nil, fmt.Errorf("intermediate: assemble node %d edge: %w", wireID, err)
			}
			values := e.Values
			if len(e.Bitmap) > 0 {
				set, err := bitset.FromRawBytes(e.Bitmap)
				if err != nil {
					return nil, fmt.Errorf("intermediate: assemble node %d edge bitmap: %w", wireID, err)
				}
				values = set.Values()
			}
			if len(values) > 0 {
				if err := a.SetEdgeValues(eid, values); err != nil {
					return nil, fmt.Errorf("intermediate: assemble node %d edge values: %w", wireID, err)
				}
			}
		}
	}

	a.SetStartNode(nodeRemap[rd.startNode])
	a.SetNoAdvanceNoOutput(rd.noAdvanceNoOutput)
	for k, v := range rd.metadata {
		a.SetMetadata(k, v)
	}

	return a, nil
}
