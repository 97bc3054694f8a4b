package engine

import (
	"github.com/google/uuid"

	"github.com/ironautomata/ironautomata/logging"
)

// State is one execution against an Engine's buffer (§4.6: "a per-execution
// state containing current node offset, saved byte position, the user
// callback..."). A State is not safe for concurrent use; independent
// States sharing one Engine may run on separate goroutines with no
// coordination, since the underlying buffer is read-only.
type State struct {
	eng      *Engine
	node     int // current node's offset in the data section
	pos      int64
	pending  int // output offset to resume from; 0 means no pending chain
	status   Status
	callback Callback
	sink     logging.Sink
	id       uuid.UUID
	lastErr  error
}

// NewState creates an execution starting at eng's start node. callback is
// invoked once per output encountered; sink, which may be nil, receives
// diagnostics tagged with this state's correlation id.
func NewState(eng *Engine, callback Callback, sink logging.Sink) *State {
	return &State{
		eng:      eng,
		node:     eng.startOffset,
		status:   Running,
		callback: callback,
		sink:     sink,
		id:       newCorrelationID(),
	}
}

// Status returns the state's current status.
func (s *State) Status() Status { return s.status }

// Pos returns the number of input bytes advanced over so far.
func (s *State) Pos() int64 { return s.pos }

// Err returns the error that produced the state's last Ended status, if
// that Ended transition was caused by a malformed buffer rather than by
// ordinary exhaustion of the matching edges (§4.6: "ended... no successor
// and no default" is not itself an error).
func (s *State) Err() error { return s.lastErr }

// Execute is the sole suspension point (§5): it consumes input until the
// callback requests suspension, the state ends, or input runs out. A nil
// input resumes a state suspended on StoppedByCallback or ErrorByCallback,
// calling the callback for the rest of the interrupted output chain,
// starting with the output after the one it stopped on (§4.6 step 5); a
// non-nil input in that situation is rejected with ErrResumeWithInput.
// Input bytes that the suspended call had not yet consumed are not
// processed by the resumed call; Pos reports how far input was consumed.
func (s *State) Execute(input []byte) (Status, error) {
	if s.status == Ended {
		return s.status, s.lastErr
	}
	if (s.status == StoppedByCallback || s.status == ErrorByCallback) && input != nil {
		return s.status, ErrResumeWithInput
	}
	s.status = Running

	idx := 0
	for {
		for s.pending != 0 {
			out, err := s.eng.readOutput(s.pending)
			if err != nil {
				return s.fail(err)
			}

			decision := s.callback(out.content, s.pos)
			s.pending = out.next
			switch decision {
			case Stop:
				s.status = StoppedByCallback

				return s.status, nil
			case Abort:
				s.status = ErrorByCallback

				return s.status, nil
			}
		}

		if idx >= len(input) {
			s.status = NeedsInput

			return s.status, nil
		}

		from, err := s.eng.readNode(s.node)
		if err != nil {
			return s.fail(err)
		}

		b := input[idx]
		target, advance, matched := selectTransition(from, b)
		if !matched {
			s.status = Ended

			return s.status, nil
		}

		s.node = target
		if advance {
			idx++
			s.pos++
		}

		if s.eng.noAdvanceNoOutput && !advance {
			s.pending = 0

			continue
		}

		to, err := s.eng.readNode(s.node)
		if err != nil {
			return s.fail(err)
		}
		s.pending = to.firstOutput
	}
}

// selectTransition implements §4.6 steps 1-2: the matching row wins; absent
// a match, the node's default (if any) substitutes.
func selectTransition(n decodedNode, b byte) (target int, advance bool, matched bool) {
	if row, ok := matchRow(n, b); ok {
		return row.target, row.advance, true
	}
	if n.hasDefault {
		return n.defaultTarget, n.advanceOnDefault, true
	}

	return 0, false, false
}

func (s *State) fail(err error) (Status, error) {
	s.status = Ended
	s.lastErr = err
	logging.Emit(s.sink, logging.Event{
		Severity: logging.Error,
		Location: "eudoxus/engine.Execute",
		Message:  err.Error(),
		Fields:   map[string]any{"state": s.id.String()},
	})

	return s.status, err
}
