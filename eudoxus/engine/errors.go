package engine

import "errors"

// Sentinel errors returned by Load and Execute, per §7's error taxonomy.
var (
	// ErrIncompatible indicates the buffer's header was rejected: bad
	// magic, unsupported version, mismatched endianness, or zero data
	// length (§4.6 "incompatible": "surface; do not load").
	ErrIncompatible = errors.New("engine: incompatible buffer")

	// ErrInsane indicates a node or output record read at run time is
	// truncated or self-inconsistent — a bug in the compiler or a
	// corrupted buffer, never an expected runtime condition (§7 "insane":
	// "abort execution, report as bug").
	ErrInsane = errors.New("engine: buffer contents are self-inconsistent")

	// ErrResumeWithInput indicates Execute was called with a non-nil
	// input while the state was suspended on StoppedByCallback or
	// ErrorByCallback; §4.6 step 5 requires resuming such a state with
	// null input only.
	ErrResumeWithInput = errors.New("engine: resume from callback suspension requires nil input")
)
