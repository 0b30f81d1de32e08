// Package composite implements the sort-last image compositor: per-pixel
// merge operators, DirectSend (small peer counts), and BinarySwap (large
// peer counts), plus a GPU compositor stub for a CUDA backend that isn't
// wired up yet.
package composite

import "github.com/piatra-institute/morviq/pkg/core"

// pixel is one (color, depth) sample unpacked from a Frame's byte buffers,
// used internally by the merge operators so they work in float space.
type pixel struct {
	r, g, b, a float32
	depth      float32
}

func unpack(frame *core.Frame, i int) pixel {
	idx4 := i * 4
	return pixel{
		r:     float32(frame.Color[idx4+0]) / 255,
		g:     float32(frame.Color[idx4+1]) / 255,
		b:     float32(frame.Color[idx4+2]) / 255,
		a:     float32(frame.Color[idx4+3]) / 255,
		depth: frame.Depth[i],
	}
}

func pack(frame *core.Frame, i int, p pixel) {
	idx4 := i * 4
	frame.Color[idx4+0] = clampByte(p.r)
	frame.Color[idx4+1] = clampByte(p.g)
	frame.Color[idx4+2] = clampByte(p.b)
	frame.Color[idx4+3] = clampByte(p.a)
	frame.Depth[i] = p.depth
}

func clampByte(v float32) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(v*255 + 0.5)
}

// mergePixel combines pixel a (already held) with pixel b (just arrived)
// under mode.
func mergePixel(mode core.CompositeMode, a, b pixel) pixel {
	switch mode {
	case core.MinDepth:
		if b.depth < a.depth {
			return b
		}
		return a
	case core.AlphaBlend:
		near, far := a, b
		if b.depth < a.depth {
			near, far = b, a
		}
		out := pixel{
			r:     near.r + (1-near.a)*far.r,
			g:     near.g + (1-near.a)*far.g,
			b:     near.b + (1-near.a)*far.b,
			a:     near.a + (1-near.a)*far.a,
			depth: near.depth,
		}
		return out
	case core.MaxIntensity:
		depth := a.depth
		if b.depth < depth {
			depth = b.depth
		}
		return pixel{
			r:     maxf(a.r, b.r),
			g:     maxf(a.g, b.g),
			b:     maxf(a.b, b.b),
			a:     maxf(a.a, b.a),
			depth: depth,
		}
	default:
		return a
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// mergeFrame merges src into dst, pixel by pixel, in place on dst.
func mergeFrame(mode core.CompositeMode, dst, src *core.Frame) {
	n := dst.Width * dst.Height
	for i := 0; i < n; i++ {
		pack(dst, i, mergePixel(mode, unpack(dst, i), unpack(src, i)))
	}
}

// mergeFrameRows merges src into dst over rows [rows.lo, rows.hi) only,
// used by the BinarySwap path's per-round half-tile merges.
func mergeFrameRows(mode core.CompositeMode, dst, src *core.Frame, rows rowRange) {
	w := dst.Width
	for i := rows.lo * w; i < rows.hi*w; i++ {
		pack(dst, i, mergePixel(mode, unpack(dst, i), unpack(src, i)))
	}
}
