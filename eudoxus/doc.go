// Package eudoxus implements the §4.5 compiler: it serializes a frozen
// automaton.Automaton into a single, self-describing, position-independent
// byte buffer that package engine can load and execute without further
// parsing.
//
// Layout (§3): a fixed header, followed by a data section holding every
// output record first and then every node record, in BFS node order.
// Every cross-reference in the data section is an
// integer offset relative to the start of the data section, stored in the
// header's declared identifier width. Offset 0 is reserved to mean "no
// referent" (§3); the data section therefore opens with one reserved
// padding byte so the first real record never lands on offset 0.
//
// Only low-degree node records are ever emitted (§9 open question: "an
// implementation may ship low-only provided the compiler never emits the
// other types"). The node header's type-code field still reserves the bit
// patterns for high-degree and path-compressed nodes so a future compiler
// can add them without an on-disk format break.
package eudoxus

import "github.com/ironautomata/ironautomata/automaton"

// FormatVersion is the only version this compiler emits and package engine
// accepts. Exported so engine can validate a loaded buffer without
// duplicating the compiler's own constant.
const FormatVersion = 1

// Magic identifies a compiled buffer as Eudoxus format, rejected outright
// by the engine loader otherwise (§4.6 "incompatible" failure mode).
const Magic = 0x45444f58 // "EDOX"

// Endianness values recorded in the header. All multi-byte fields this
// compiler writes are little-endian, matching the fixed little-endian
// choice already made for generator.AddLength's encoded length payload.
const (
	EndiannessLittle = 0
	EndiannessBig    = 1
)

// Header flag bits (byte 7 of the fixed header).
const (
	FlagNoAdvanceNoOutput = 1 << 0
)

// Node header flag bits, packed into the low 3 bits (type code) plus high
// bits of one byte (§3: "3-bit type code in a 1-byte node header, with
// 5 type-specific flag bits"). This compiler only ever emits NodeTypeLow;
// engine's decoder rejects any other type code since no compiler in this
// module ever writes one.
const (
	NodeTypeLow             = 0
	NodeTypeHigh            = 1 // reserved, never emitted
	NodeTypePathCompressed  = 2 // reserved, never emitted
	NodeTypeMask            = 0x07
	NodeFlagHasOutput       = 1 << 3
	NodeFlagHasNonAdvancing = 1 << 4
	NodeFlagHasDefault      = 1 << 5
	NodeFlagAdvanceDefault  = 1 << 6
)

// HeaderFixedSize is the byte size of every header field except the
// trailing start-node identifier, whose width is Config.IDWidth.
const HeaderFixedSize = 4 /* magic */ + 1 /* version */ + 1 /* id width */ +
	1 /* endianness */ + 1 /* flags */ + 1 /* reserved */ +
	4 /* node count */ + 4 /* output count */ + 4 /* data length */

// Config configures one compilation (§4.5).
type Config struct {
	// IDWidth is the byte width of every cross-reference in the compiled
	// buffer: one of 1, 2, 4, 8, or 0 to run the two-pass minimal-width
	// search described in §4.5 step 4.
	IDWidth int

	// AlignTo pads each node record so its data-section offset is
	// congruent to 0 modulo AlignTo. Must be >= 1.
	AlignTo int

	// HighNodeWeight multiplies the cost-model byte size a high-degree
	// node representation would occupy: < 1 favours high nodes, > 1
	// favours low nodes. Accepted for forward compatibility with a
	// future high-node representation; since this compiler is low-only
	// (§9), it has no effect on the emitted buffer today.
	HighNodeWeight float64
}

// Stats reports what a compilation produced (§4.5: "total bytes, ids
// used, padding bytes, per-node-type counts and byte totals").
type Stats struct {
	TotalBytes   int
	IDWidth      int
	IDsUsed      int
	PaddingBytes int

	NodesEmitted   int
	LowNodeBytes   int
	HighNodeBytes  int // always 0; no high-degree node is ever emitted
	PathNodeBytes  int // always 0; no path-compressed node is ever emitted
	OutputsEmitted int
	OutputBytes    int
}

// row is one expanded (byte value -> target) transition a low-degree node
// record stores, after flattening every edge's value set to individual
// bytes (§3: "out_degree records of (1-byte value, id)").
type row struct {
	value   byte
	target  automaton.NodeID
	advance bool
}
