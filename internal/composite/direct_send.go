package composite

import (
	"fmt"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/pkg/core"
)

const (
	tagDirectSendColor = 100
	tagDirectSendDepth = 101
)

// directSend implements the DirectSend compositing path: every non-zero
// peer sends its local frame to peer 0, which merges arrivals in rank
// order into outputFrame, starting from its own local frame. Color and
// depth travel under distinct tags so the receiver can post either read
// first.
func directSend(view *collective.View, mode core.CompositeMode, local, output *core.Frame) error {
	if view.Rank() != 0 {
		color, depth := splitColorDepth(encodeFrame(local))
		if err := view.Send(0, tagDirectSendColor, color); err != nil {
			return fmt.Errorf("composite: direct send color from rank %d: %w", view.Rank(), err)
		}
		if err := view.Send(0, tagDirectSendDepth, depth); err != nil {
			return fmt.Errorf("composite: direct send depth from rank %d: %w", view.Rank(), err)
		}
		return nil
	}

	output.CopyFrom(local)
	scratch, err := core.NewFrame(local.Width, local.Height)
	if err != nil {
		return err
	}
	for from := 1; from < view.Size(); from++ {
		depth, err := view.Recv(from, tagDirectSendDepth)
		if err != nil {
			return fmt.Errorf("composite: direct send depth recv from rank %d: %w", from, err)
		}
		color, err := view.Recv(from, tagDirectSendColor)
		if err != nil {
			return fmt.Errorf("composite: direct send color recv from rank %d: %w", from, err)
		}
		if err := decodeFrame(scratch, joinColorDepth(color, depth)); err != nil {
			return err
		}
		mergeFrame(mode, output, scratch)
	}
	return nil
}
