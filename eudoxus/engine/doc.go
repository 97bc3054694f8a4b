// Package engine executes a buffer produced by package eudoxus (§4.6). An
// Engine wraps one immutable, already-validated buffer; any number of
// States may run concurrently against it, each owning its own progress
// and none synchronizing with another (§5: "the buffer is immutable after
// load").
//
// Grounded on algorithms/bfs.go's explicit walker/state-machine split: the
// walker there separates "what the graph looks like" (its adjacency) from
// "where a particular traversal currently is" (its frontier); Engine plays
// the first role here and State the second.
package engine

import "github.com/google/uuid"

// Decision is what a Callback returns after observing one output.
type Decision int

const (
	// Continue lets Execute proceed to the next output in the chain, or to
	// the next byte of input once the chain is exhausted.
	Continue Decision = iota
	// Stop suspends the state with status StoppedByCallback. Resumable.
	Stop
	// Abort suspends the state with status ErrorByCallback. Execute with a
	// nil input resumes it exactly as it does after Stop; callers normally
	// treat this status as terminal instead.
	Abort
)

// String names a Decision for logging.
func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Callback receives one output's content and the input position it was
// reported at (§4.6 step 4: "invoke the callback with (content pointer,
// length, current input pointer)"; Go slices already carry their length).
type Callback func(content []byte, pos int64) Decision

// Status is the current state of one execution (§4.6).
type Status int

const (
	// Running means the state is mid-step; Execute never returns this —
	// it is the value a freshly created State holds before its first call.
	Running Status = iota
	// StoppedByCallback means the callback returned Stop; resume by
	// calling Execute with a nil input.
	StoppedByCallback
	// ErrorByCallback means the callback returned Abort; resume by
	// calling Execute with a nil input, though callers normally treat
	// this status as terminal.
	ErrorByCallback
	// Ended means the current node has no edge matching the current byte
	// and no default; the state will not advance further.
	Ended
	// NeedsInput means the input slice passed to Execute was fully
	// consumed; call Execute again with more bytes.
	NeedsInput
)

// String names a Status for logging.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case StoppedByCallback:
		return "stopped-by-callback"
	case ErrorByCallback:
		return "error-by-callback"
	case Ended:
		return "ended"
	case NeedsInput:
		return "needs-input"
	default:
		return "unknown"
	}
}

// newCorrelationID mints a per-state id for diagnostics, grounded on the
// same uuid usage pattern as the rest of this module's logging call sites.
func newCorrelationID() uuid.UUID {
	return uuid.New()
}
