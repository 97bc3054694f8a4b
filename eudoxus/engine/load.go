package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/ironautomata/ironautomata/eudoxus"
)

// Engine wraps one validated, immutable compiled buffer (§4.6: "an engine
// handle wrapping the loaded buffer"). The buffer is never copied; callers
// must not mutate it for the lifetime of the Engine or any State created
// from it.
type Engine struct {
	buf               []byte
	idWidth           int
	noAdvanceNoOutput bool
	nodeCount         uint32
	outputCount       uint32
	dataStart         int
	dataLen           int
	startOffset       int
}

// Load validates buf's header and returns an Engine ready to create
// execution states from. It does not walk the data section; malformed
// records surface later, from Execute, as ErrInsane.
func Load(buf []byte) (*Engine, error) {
	if len(buf) < eudoxus.HeaderFixedSize+1 {
		return nil, fmt.Errorf("%w: buffer shorter than fixed header", ErrIncompatible)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != uint32(eudoxus.Magic) {
		return nil, fmt.Errorf("%w: bad magic", ErrIncompatible)
	}
	if buf[4] != eudoxus.FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrIncompatible, buf[4])
	}
	idWidth := int(buf[5])
	switch idWidth {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: id width %d not in {1,2,4,8}", ErrIncompatible, idWidth)
	}
	if buf[6] != eudoxus.EndiannessLittle {
		return nil, fmt.Errorf("%w: non-native endianness", ErrIncompatible)
	}

	flags := buf[7]
	nodeCount := binary.LittleEndian.Uint32(buf[9:13])
	outputCount := binary.LittleEndian.Uint32(buf[13:17])
	dataLength := binary.LittleEndian.Uint32(buf[17:21])
	if dataLength == 0 {
		return nil, fmt.Errorf("%w: zero data length", ErrIncompatible)
	}

	dataStart := eudoxus.HeaderFixedSize + idWidth
	if len(buf) < dataStart+int(dataLength) {
		return nil, fmt.Errorf("%w: buffer shorter than declared data length", ErrIncompatible)
	}
	startOffset := decodeID(buf[eudoxus.HeaderFixedSize:dataStart], idWidth)
	if startOffset <= 0 || startOffset >= int(dataLength) {
		return nil, fmt.Errorf("%w: start node offset %d out of range", ErrIncompatible, startOffset)
	}

	return &Engine{
		buf:               buf,
		idWidth:           idWidth,
		noAdvanceNoOutput: flags&eudoxus.FlagNoAdvanceNoOutput != 0,
		nodeCount:         nodeCount,
		outputCount:       outputCount,
		dataStart:         dataStart,
		dataLen:           int(dataLength),
		startOffset:       startOffset,
	}, nil
}

// NoAdvanceNoOutput reports whether the compiled automaton suppresses
// output emission on non-advancing transitions (§4.6 step 4).
func (e *Engine) NoAdvanceNoOutput() bool { return e.noAdvanceNoOutput }

// NodeCount returns the node count recorded in the header.
func (e *Engine) NodeCount() int { return int(e.nodeCount) }

// OutputCount returns the output count recorded in the header.
func (e *Engine) OutputCount() int { return int(e.outputCount) }

// data returns the data-section slice, offsets relative to its start.
func (e *Engine) data() []byte { return e.buf[e.dataStart : e.dataStart+e.dataLen] }

func decodeID(b []byte, width int) int {
	switch width {
	case 1:
		return int(b[0])
	case 2:
		return int(binary.LittleEndian.Uint16(b))
	case 4:
		return int(binary.LittleEndian.Uint32(b))
	case 8:
		return int(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}
