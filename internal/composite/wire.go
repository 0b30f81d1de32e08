package composite

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/piatra-institute/morviq/pkg/core"
)

// encodeFrame serializes a frame's color and depth buffers for a peer-to-
// peer Send. The wire format is the color bytes verbatim followed by the
// depth buffer as little-endian float32s; width/height travel out of band
// (every peer already agrees on frame geometry before compositing starts).
func encodeFrame(frame *core.Frame) []byte {
	n := frame.Width * frame.Height
	buf := make([]byte, len(frame.Color)+n*4)
	copy(buf, frame.Color)
	off := len(frame.Color)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(frame.Depth[i]))
	}
	return buf
}

// decodeFrame fills dst from a buffer produced by encodeFrame. dst must
// already be allocated at the expected geometry.
func decodeFrame(dst *core.Frame, buf []byte) error {
	n := dst.Width * dst.Height
	want := len(dst.Color) + n*4
	if len(buf) != want {
		return fmt.Errorf("composite: decoded frame size %d, want %d", len(buf), want)
	}
	copy(dst.Color, buf[:len(dst.Color)])
	off := len(dst.Color)
	for i := 0; i < n; i++ {
		dst.Depth[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+i*4:]))
	}
	return nil
}

// encodeFrameRows serializes only the rows in [rows.lo, rows.hi) of frame,
// in the same per-pixel layout as encodeFrame, for the BinarySwap path's
// half-tile exchanges.
func encodeFrameRows(frame *core.Frame, rows rowRange) []byte {
	w := frame.Width
	n := (rows.hi - rows.lo) * w
	buf := make([]byte, n*4+n*4)
	colorOff := rows.lo * w * 4
	copy(buf[:n*4], frame.Color[colorOff:colorOff+n*4])
	off := n * 4
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(frame.Depth[rows.lo*w+i]))
	}
	return buf
}

// decodeFrameRows fills rows [rows.lo, rows.hi) of dst from a buffer
// produced by encodeFrameRows. dst must already be allocated at the full
// frame geometry the rows belong to.
func decodeFrameRows(dst *core.Frame, buf []byte, rows rowRange) error {
	w := dst.Width
	n := (rows.hi - rows.lo) * w
	want := n*4 + n*4
	if len(buf) != want {
		return fmt.Errorf("composite: decoded row band size %d, want %d", len(buf), want)
	}
	colorOff := rows.lo * w * 4
	copy(dst.Color[colorOff:colorOff+n*4], buf[:n*4])
	off := n * 4
	for i := 0; i < n; i++ {
		dst.Depth[rows.lo*w+i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+i*4:]))
	}
	return nil
}

// splitColorDepth separates a buffer produced by encodeFrame/encodeFrameRows
// into its color and depth halves, so callers can put each on the wire
// under a distinct tag: one for color, a separate one for depth.
func splitColorDepth(buf []byte) (color, depth []byte) {
	half := len(buf) / 2
	return buf[:half], buf[half:]
}

// joinColorDepth reassembles a buffer decodeFrame/decodeFrameRows expects
// from color and depth halves received under their respective tags.
func joinColorDepth(color, depth []byte) []byte {
	buf := make([]byte, len(color)+len(depth))
	copy(buf, color)
	copy(buf[len(color):], depth)
	return buf
}
