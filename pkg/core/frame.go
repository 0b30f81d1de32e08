package core

import "fmt"

// BackgroundColor is the opaque dark-blue fill used when frame.depth/color
// are reset before rendering. Visible on peer 0's composited output
// wherever no peer's ray hit the volume.
var BackgroundColor = [4]byte{10, 10, 30, 255}

// Frame is a width*height RGBA8 premultiplied-alpha color buffer plus a
// float32 depth buffer, reused across frames by its owning peer.
type Frame struct {
	Width, Height int
	Color         []byte  // len = Width*Height*4, premultiplied RGBA8
	Depth         []float32
}

// NewFrame allocates a frame of the given size.
func NewFrame(width, height int) (*Frame, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("core: frame size must be >= 1, got %dx%d", width, height)
	}
	return &Frame{
		Width:  width,
		Height: height,
		Color:  make([]byte, width*height*4),
		Depth:  make([]float32, width*height),
	}, nil
}

// SameGeometry reports whether two frames agree on width, height, and
// (implicitly) channel count.
func (f *Frame) SameGeometry(other *Frame) bool {
	return f.Width == other.Width && f.Height == other.Height
}

// Reset fills the frame with the background color and depth=1.0.
func (f *Frame) Reset() {
	for i := 0; i < len(f.Depth); i++ {
		f.Depth[i] = 1.0
	}
	for i := 0; i < len(f.Color); i += 4 {
		f.Color[i+0] = BackgroundColor[0]
		f.Color[i+1] = BackgroundColor[1]
		f.Color[i+2] = BackgroundColor[2]
		f.Color[i+3] = BackgroundColor[3]
	}
}

// CopyFrom overwrites f's buffers with src's, used for the N=1 compositor
// passthrough.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.Color, src.Color)
	copy(f.Depth, src.Depth)
}

// CompositeMode selects the per-pixel merge operator used by the Compositor.
type CompositeMode int

const (
	MinDepth CompositeMode = iota
	AlphaBlend
	MaxIntensity
)

func (m CompositeMode) String() string {
	switch m {
	case MinDepth:
		return "MinDepth"
	case AlphaBlend:
		return "AlphaBlend"
	case MaxIntensity:
		return "MaxIntensity"
	default:
		return "Unknown"
	}
}
