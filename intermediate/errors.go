package intermediate

import "errors"

// Sentinel errors returned by Reader.ReadAll/Writer.WriteAutomaton, per
// §7's error taxonomy: decode-error for the reader, invalid-argument for
// malformed caller input to the writer.
var (
	// ErrTruncatedFrame indicates the stream ended mid-frame (a length
	// prefix with no matching payload, or a short payload read).
	ErrTruncatedFrame = errors.New("intermediate: truncated frame")

	// ErrMalformedChunk indicates a frame's payload could not be
	// decompressed or gob-decoded.
	ErrMalformedChunk = errors.New("intermediate: malformed chunk")

	// ErrAmbiguousEdgeValues indicates an edge record specified both
	// vector and bitmap values, which §4.2 names explicitly as an error.
	ErrAmbiguousEdgeValues = errors.New("intermediate: edge specifies both vector and bitmap values")

	// ErrBadBitmapLength indicates an edge's bitmap was not exactly 32 bytes.
	ErrBadBitmapLength = errors.New("intermediate: edge bitmap has wrong length")

	// ErrDanglingReference indicates a referenced node or output id was
	// never defined by any chunk in the stream.
	ErrDanglingReference = errors.New("intermediate: dangling reference at end of stream")

	// ErrChunkSize indicates a negative chunk size was supplied to NewWriter.
	ErrChunkSize = errors.New("intermediate: chunk size must be positive")
)
