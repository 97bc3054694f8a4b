package bitset

import "errors"

// ErrBitmapLength indicates a raw bitmap passed to FromRawBytes was not
// exactly 32 bytes long — a decode-error condition per §4.2's "a bitmap
// of wrong length" failure category.
var ErrBitmapLength = errors.New("bitset: raw bitmap must be 32 bytes")
