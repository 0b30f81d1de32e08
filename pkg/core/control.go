package core

// ControlState is the live set of per-frame knobs owned by peer 0:
// camera matrices, viewport, time step, quality, and an opaque bioelectric
// parameter blob. It is mutated by the control server under a mutex
// (internal/control.State) and broadcast to all peers once per frame.
type ControlState struct {
	Projection Mat4
	View       Mat4
	Viewport   [2]int // width, height
	TimeStep   int
	Quality    QualityTier
	BioParams  string
}

// DefaultControlState returns the zero-value-safe default state: identity
// matrices, a 1280x720 viewport, timestep 0, medium quality.
func DefaultControlState() ControlState {
	return ControlState{
		Projection: Identity(),
		View:       Identity(),
		Viewport:   [2]int{1280, 720},
		TimeStep:   0,
		Quality:    QualityMedium,
	}
}
