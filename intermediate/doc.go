// Package intermediate implements the §4.2/§6 codec: reading and writing an
// automaton.Automaton as a stream of self-contained, length-prefixed,
// compressed frames.
//
// Wire format (§6): a sequence of frames, each a 32-bit big-endian byte
// length followed by a zstd-compressed, gob-encoded chunk. A chunk carries
// zero or more node records, zero or more output records, and optional
// automaton-level flags/metadata. References may span chunks and may
// point forward; a Reader accumulates every chunk before resolving any
// reference, so frame order never matters.
//
// The Reader tracks two bits of post-read state, per §7: Success (no
// errors) and Clean (no errors or warnings).
package intermediate

import "github.com/ironautomata/ironautomata/automaton"

// NodeRecord is the wire form of one automaton.Node.
type NodeRecord struct {
	ID               automaton.NodeID
	FirstOutput      automaton.OutputID
	DefaultTarget    automaton.NodeID
	AdvanceOnDefault bool
	Edges            []EdgeRecord
}

// EdgeRecord is the wire form of one automaton.Edge. At most one of Values
// and Bitmap is non-empty; both empty means an epsilon edge. Bitmap, when
// present, is the 32-byte raw form produced by bitset.Set.Bytes.
type EdgeRecord struct {
	Target  automaton.NodeID
	Advance bool
	Values  []byte
	Bitmap  []byte
}

// OutputRecord is the wire form of one automaton.Output.
type OutputRecord struct {
	ID      automaton.OutputID
	Content []byte
	Next    automaton.OutputID
}

// chunk is the gob-encoded payload of one frame.
type chunk struct {
	Nodes             []NodeRecord
	Outputs           []OutputRecord
	StartNode         *automaton.NodeID
	NoAdvanceNoOutput *bool
	Metadata          map[string]string
}
