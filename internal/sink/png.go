package sink

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/piatra-institute/morviq/pkg/core"
)

// PNGSink writes each frame as composited/frame_%06d.png under outputDir,
// creating the subdirectory on first use.
type PNGSink struct {
	log       zerolog.Logger
	outputDir string
	ready     bool
}

// NewPNGSink constructs a PNGSink rooted at outputDir.
func NewPNGSink(log zerolog.Logger, outputDir string) *PNGSink {
	return &PNGSink{log: log, outputDir: outputDir}
}

func (s *PNGSink) compositedDir() string { return filepath.Join(s.outputDir, "composited") }

// WriteFrame un-premultiplies frame's RGBA8 buffer and writes it as
// composited/frame_%06d.png.
func (s *PNGSink) WriteFrame(frameNumber int, frame *core.Frame) error {
	if !s.ready {
		if err := os.MkdirAll(s.compositedDir(), 0o755); err != nil {
			return fmt.Errorf("sink: creating %s: %w", s.compositedDir(), err)
		}
		s.ready = true
	}

	img := unpremultiply(frame)
	path := filepath.Join(s.compositedDir(), fmt.Sprintf("frame_%06d.png", frameNumber))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("sink: encoding %s: %w", path, err)
	}
	s.log.Debug().Str("path", path).Int("frame", frameNumber).Msg("sink: wrote frame")
	return nil
}

// Close is a no-op for PNGSink; each frame's file is already flushed.
func (s *PNGSink) Close() error { return nil }

// unpremultiply divides out alpha: if a > 0, RGB is divided by a/255 and
// clamped to 255; else RGB is zeroed. This is lossy
// at the 8-bit boundary — low-alpha pixels recover coarse color precision
// at best, since frame.Color has already discarded sub-integer accuracy.
func unpremultiply(frame *core.Frame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < frame.Width*frame.Height; i++ {
		idx4 := i * 4
		r, g, b, a := frame.Color[idx4+0], frame.Color[idx4+1], frame.Color[idx4+2], frame.Color[idx4+3]

		var out color.NRGBA
		out.A = a
		if a > 0 {
			out.R = unpremultiplyChannel(r, a)
			out.G = unpremultiplyChannel(g, a)
			out.B = unpremultiplyChannel(b, a)
		}
		img.SetNRGBA(i%frame.Width, i/frame.Width, out)
	}
	return img
}

func unpremultiplyChannel(c, a byte) byte {
	v := int(c) * 255 / int(a)
	if v > 255 {
		v = 255
	}
	return byte(v)
}
