package composite

import (
	"fmt"
	"math/bits"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/pkg/core"
)

const (
	tagFoldColor     = 200
	tagFoldDepth     = 201
	tagSwapColorBase = 1000 // + round*2
	tagSwapDepthBase = 1001 // + round*2
	tagGatherColor   = 900
	tagGatherDepth   = 901
)

// rowRange identifies a half-open band of rows [lo, hi) of a frame.
type rowRange struct{ lo, hi int }

func (r rowRange) mid() int { return r.lo + (r.hi-r.lo)/2 }

// sendFrameBuf and recvFrameBuf wrap a View's Send/Recv to carry a frame
// (or row band) as two separately tagged messages, color and depth.
func sendFrameBuf(view *collective.View, to, colorTag, depthTag int, buf []byte) error {
	color, depth := splitColorDepth(buf)
	if err := view.Send(to, colorTag, color); err != nil {
		return err
	}
	return view.Send(to, depthTag, depth)
}

func recvFrameBuf(view *collective.View, from, colorTag, depthTag int) ([]byte, error) {
	depth, err := view.Recv(from, depthTag)
	if err != nil {
		return nil, err
	}
	color, err := view.Recv(from, colorTag)
	if err != nil {
		return nil, err
	}
	return joinColorDepth(color, depth), nil
}

// binarySwap implements the BinarySwap compositing path for N peers, N a
// power of two handled directly; any remainder folds down to the nearest
// power of two via a DirectSend-style pre-reduction, and gathers back up
// to peer 0 afterward.
func binarySwap(view *collective.View, mode core.CompositeMode, local, output *core.Frame) error {
	n := view.Size()
	rank := view.Rank()
	p := largestPowerOfTwoAtMost(n)
	extra := n - p

	held, err := core.NewFrame(local.Width, local.Height)
	if err != nil {
		return err
	}
	held.CopyFrom(local)

	if rank >= p {
		// Fold into an active rank and go idle.
		partner := rank - p
		if err := sendFrameBuf(view, partner, tagFoldColor, tagFoldDepth, encodeFrame(held)); err != nil {
			return fmt.Errorf("composite: binary swap fold from rank %d: %w", rank, err)
		}
		return nil
	}
	if rank < extra {
		buf, err := recvFrameBuf(view, p+rank, tagFoldColor, tagFoldDepth)
		if err != nil {
			return fmt.Errorf("composite: binary swap fold recv at rank %d: %w", rank, err)
		}
		scratch, err := core.NewFrame(local.Width, local.Height)
		if err != nil {
			return err
		}
		if err := decodeFrame(scratch, buf); err != nil {
			return err
		}
		mergeFrame(mode, held, scratch)
	}

	rounds := bits.Len(uint(p)) - 1 // log2(p)
	window := rowRange{lo: 0, hi: held.Height}
	scratch, err := core.NewFrame(local.Width, local.Height)
	if err != nil {
		return err
	}

	for k := 0; k < rounds; k++ {
		partner := rank ^ (1 << k)
		mid := window.mid()
		var keep, send rowRange
		if (rank>>k)&1 == 0 {
			keep = rowRange{window.lo, mid}
			send = rowRange{mid, window.hi}
		} else {
			keep = rowRange{mid, window.hi}
			send = rowRange{window.lo, mid}
		}

		colorTag, depthTag := tagSwapColorBase+k*2, tagSwapDepthBase+k*2
		if err := sendFrameBuf(view, partner, colorTag, depthTag, encodeFrameRows(held, send)); err != nil {
			return fmt.Errorf("composite: binary swap round %d send from rank %d: %w", k, rank, err)
		}
		buf, err := recvFrameBuf(view, partner, colorTag, depthTag)
		if err != nil {
			return fmt.Errorf("composite: binary swap round %d recv at rank %d: %w", k, rank, err)
		}
		if err := decodeFrameRows(scratch, buf, keep); err != nil {
			return err
		}
		mergeFrameRows(mode, held, scratch, keep)
		window = keep
	}

	// Gather final tiles to rank 0.
	if rank == 0 {
		output.CopyFrom(held)
		for src := 1; src < p; src++ {
			buf, err := recvFrameBuf(view, src, tagGatherColor, tagGatherDepth)
			if err != nil {
				return fmt.Errorf("composite: binary swap gather from rank %d: %w", src, err)
			}
			tileWindow := tileFor(src, p, held.Height)
			if err := decodeFrameRows(output, buf, tileWindow); err != nil {
				return err
			}
		}
		return nil
	}
	if err := sendFrameBuf(view, 0, tagGatherColor, tagGatherDepth, encodeFrameRows(held, window)); err != nil {
		return fmt.Errorf("composite: binary swap gather send from rank %d: %w", rank, err)
	}
	return nil
}

// largestPowerOfTwoAtMost returns the largest power of two <= n, n >= 1.
func largestPowerOfTwoAtMost(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// tileFor recomputes, from the algorithm's deterministic bit-splitting
// rule, which row window rank ends up owning after log2(p) rounds over an
// image of the given height. Used by rank 0 to place gathered tiles.
func tileFor(rank, p, height int) rowRange {
	rounds := bits.Len(uint(p)) - 1
	window := rowRange{0, height}
	for k := 0; k < rounds; k++ {
		mid := window.mid()
		if (rank>>k)&1 == 0 {
			window = rowRange{window.lo, mid}
		} else {
			window = rowRange{mid, window.hi}
		}
	}
	return window
}
