package control

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/piatra-institute/morviq/pkg/core"
)

// headerFloats is the fixed 16+16 float32 projection/view matrix payload
// every broadcast carries, followed by 2 viewport ints, a timestep int,
// and a quality int, then an optional length-prefixed bioParams string.
const headerFloats = 32
const headerInts = 4
const headerSize = headerFloats*4 + headerInts*4

// EncodeState serializes cs for the once-per-frame ControlState broadcast:
// 16 floats projection, 16 floats view, 2 ints viewport, 1 int timestep,
// 1 int quality, then bioParams length-prefixed so peers can decode it
// without a separate message when it's present.
func EncodeState(cs core.ControlState) []byte {
	bio := []byte(cs.BioParams)
	buf := make([]byte, headerSize+4+len(bio))

	off := 0
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(cs.Projection.M[i]))
		off += 4
	}
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(cs.View.M[i]))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(cs.Viewport[0]))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(cs.Viewport[1]))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(cs.TimeStep))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(cs.Quality))
	off += 4

	binary.LittleEndian.PutUint32(buf[off:], uint32(len(bio)))
	off += 4
	copy(buf[off:], bio)

	return buf
}

// DecodeState parses a buffer produced by EncodeState.
func DecodeState(buf []byte) (core.ControlState, error) {
	if len(buf) < headerSize+4 {
		return core.ControlState{}, fmt.Errorf("control: state buffer too short: %d bytes", len(buf))
	}

	var cs core.ControlState
	off := 0
	for i := 0; i < 16; i++ {
		cs.Projection.M[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	for i := 0; i < 16; i++ {
		cs.View.M[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	cs.Viewport[0] = int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	cs.Viewport[1] = int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	cs.TimeStep = int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	cs.Quality = core.QualityTier(binary.LittleEndian.Uint32(buf[off:]))
	off += 4

	bioLen := int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	if len(buf[off:]) < bioLen {
		return core.ControlState{}, fmt.Errorf("control: bioParams length %d exceeds remaining buffer %d", bioLen, len(buf[off:]))
	}
	if bioLen > 0 {
		cs.BioParams = string(buf[off : off+bioLen])
	}

	return cs, nil
}
