package eudoxus

import "errors"

// Sentinel errors returned by Compile, per §7's error taxonomy.
var (
	// ErrInvalidConfig indicates a Config field violates its contract
	// (IDWidth not in {0,1,2,4,8}, AlignTo < 1).
	ErrInvalidConfig = errors.New("eudoxus: invalid config")

	// ErrIDTooSmall indicates the chosen identifier width cannot address
	// every offset the compiled buffer needs (§7 "id-too-small": "caller
	// may retry with larger width").
	ErrIDTooSmall = errors.New("eudoxus: id width too small for compiled buffer")

	// ErrOutDegreeOverflow indicates a node's flattened (byte, target)
	// transition table exceeds the 1-byte out_degree field's 255-row
	// capacity. A fully optimized graph should never reach this — an
	// edge covering all 256 bytes is normally elided into the node's
	// default by optimizer.OptimizeEdges — but a node can still carry a
	// full-coverage edge alongside an unrelated, already-conflicting
	// default (elision is blocked in that case), and the compiled
	// low-node format has no way to represent that state compactly.
	ErrOutDegreeOverflow = errors.New("eudoxus: node out-degree exceeds compiled format capacity")
)
