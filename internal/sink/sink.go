// Package sink consumes peer 0's composited Frame plus a (outputDir,
// frameNumber) pair, un-premultiplies alpha, and writes an RGBA8 PNG
// under a composited/ subdirectory.
package sink

import "github.com/piatra-institute/morviq/pkg/core"

// FrameSink consumes a composited frame for a given frame number. The
// core guarantees the frame is premultiplied RGBA8 on entry; the sink
// owns everything past that point (un-premultiplication, encoding,
// filesystem layout).
type FrameSink interface {
	WriteFrame(frameNumber int, frame *core.Frame) error
	Close() error
}
