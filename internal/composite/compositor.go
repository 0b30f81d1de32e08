package composite

import (
	"fmt"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/pkg/core"
)

// ErrMismatch is returned when frames passed to Composite disagree on
// geometry.
var ErrMismatch = fmt.Errorf("composite: frame geometry mismatch")

// directSendThreshold is the peer-count boundary past which Compositor
// switches from DirectSend to BinarySwap.
const directSendThreshold = 8

// Compositor merges one Frame per peer into a single output Frame
// materialized on peer 0. It is stateless beyond its collective view;
// callers construct one per peer and reuse it across frames.
type Compositor struct {
	view *collective.View
	mode core.CompositeMode
}

// New constructs a Compositor bound to view, merging with mode.
func New(view *collective.View, mode core.CompositeMode) *Compositor {
	return &Compositor{view: view, mode: mode}
}

// Composite merges local into output. On non-zero peers output may be a
// placeholder; only peer 0's output is guaranteed meaningful.
func (c *Compositor) Composite(local, output *core.Frame) error {
	if !local.SameGeometry(output) {
		return fmt.Errorf("%w: local %dx%d, output %dx%d", ErrMismatch, local.Width, local.Height, output.Width, output.Height)
	}

	n := c.view.Size()
	switch {
	case n == 1:
		output.CopyFrom(local)
		return nil
	case n <= directSendThreshold:
		return directSend(c.view, c.mode, local, output)
	default:
		return binarySwap(c.view, c.mode, local, output)
	}
}
