// Package buffer implements the compiler's buffer assembler (§2): a
// byte buffer that only ever grows by append, exposing stable integer
// indices into itself. Indices survive growth — only raw pointers into
// the backing array would be invalidated by a reallocation, and this
// API never hands one out.
//
// Grounded on the teacher's amortized-append, atomically-numbered
// storage pattern (core/methods_edges.go's nextEdgeID counter plus
// map growth) generalized from a map of records to a flat byte buffer.
package buffer

// Buffer is an append-only byte buffer with stable offsets.
// The zero value is ready to use.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer with capacity pre-reserved, reducing
// reallocation during a compile pass that already knows roughly how
// large the output will be.
func New(capacityHint int) *Buffer {
	if capacityHint < 0 {
		capacityHint = 0
	}

	return &Buffer{data: make([]byte, 0, capacityHint)}
}

// Len returns the current length of the buffer, and therefore the index
// the next Append/Pad call would start writing at.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Append writes p to the end of the buffer and returns the index p's
// first byte now occupies.
func (b *Buffer) Append(p []byte) int {
	idx := len(b.data)
	b.data = append(b.data, p...)

	return idx
}

// AppendByte writes a single byte and returns its index.
func (b *Buffer) AppendByte(v byte) int {
	idx := len(b.data)
	b.data = append(b.data, v)

	return idx
}

// Pad appends n zero bytes and returns the index of the first one. Used
// by the compiler to align node records to Config.AlignTo (§4.5 step 3).
func (b *Buffer) Pad(n int) int {
	idx := len(b.data)
	for i := 0; i < n; i++ {
		b.data = append(b.data, 0)
	}

	return idx
}

// PatchByte overwrites a single already-written byte at idx. Used to fix
// up length/flag bytes written before their final value was known.
func (b *Buffer) PatchByte(idx int, v byte) {
	b.data[idx] = v
}

// PatchBytes overwrites len(p) already-written bytes starting at idx.
// Used by the compiler's id-fixup pass (§4.5 step 4): placeholder ids
// are written as zero, then overwritten once every node and output has
// a final offset.
func (b *Buffer) PatchBytes(idx int, p []byte) {
	copy(b.data[idx:idx+len(p)], p)
}

// Bytes returns the assembled buffer. The returned slice aliases the
// Buffer's internal storage; callers must not mutate it after further
// Append calls, which may reallocate.
func (b *Buffer) Bytes() []byte {
	return b.data
}
