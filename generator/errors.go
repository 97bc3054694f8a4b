package generator

import "errors"

// Sentinel errors for generator operations. Callers should use errors.Is.
var (
	// ErrNotBegun indicates Add* or Finish was called before Begin.
	ErrNotBegun = errors.New("generator: Begin has not been called")

	// ErrAlreadyFinished indicates Add* or Finish was called after Finish
	// already ran.
	ErrAlreadyFinished = errors.New("generator: already finished")

	// ErrAlreadyBegun indicates Begin was called twice on the same Generator.
	ErrAlreadyBegun = errors.New("generator: Begin already called")

	// ErrPlainAfterPattern indicates AddString or AddLength was called
	// after the first AddPattern call — plain strings must all be added
	// before the first pattern shortcut (§4.3).
	ErrPlainAfterPattern = errors.New("generator: plain string added after a pattern")

	// ErrEmptyPattern indicates AddString, AddLength or AddPattern was
	// given a zero-length input; a zero-length match is not representable
	// as a trie path.
	ErrEmptyPattern = errors.New("generator: empty pattern")

	// ErrInvalidPattern indicates a pattern shortcut string is malformed:
	// an unterminated bracket class, a dangling backslash, an unknown
	// escape, or a bad hex/control escape.
	ErrInvalidPattern = errors.New("generator: invalid pattern syntax")
)
