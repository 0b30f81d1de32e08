package core

import "fmt"

// Viewport is a pixel rectangle's origin and size.
type Viewport struct {
	X, Y, W, H int
}

// Validate reports whether the viewport has a non-negative origin and a
// positive size.
func (v Viewport) Validate() error {
	if v.W < 1 || v.H < 1 {
		return fmt.Errorf("core: viewport size must be >= 1, got %dx%d", v.W, v.H)
	}
	if v.X < 0 || v.Y < 0 {
		return fmt.Errorf("core: viewport origin must be non-negative, got (%d,%d)", v.X, v.Y)
	}
	return nil
}

// Camera holds the projection and view matrices plus the output viewport.
type Camera struct {
	Projection Mat4
	View       Mat4
	Viewport   Viewport
}

// QualityTier selects a coarse rendering quality.
type QualityTier int

const (
	QualityLow QualityTier = iota
	QualityMedium
	QualityHigh
)

// RenderParams configures the raymarcher's per-frame behavior.
type RenderParams struct {
	Quality          QualityTier
	StepSize         float32
	MaxSteps         int
	EnableGradients  bool
	EnableShadows    bool
	InternalQuality  int  // set by quality tier 2
	TrueDepth        bool // reports first-hit ray distance divided by tMax instead of a constant; default false
}

// Validate checks RenderParams against a volume's diagonal extent: the
// step size must not exceed it.
func (p RenderParams) Validate(volumeDiagonal float32) error {
	if p.StepSize <= 0 {
		return fmt.Errorf("core: stepSize must be > 0, got %f", p.StepSize)
	}
	if p.MaxSteps < 1 {
		return fmt.Errorf("core: maxSteps must be >= 1, got %d", p.MaxSteps)
	}
	if volumeDiagonal > 0 && p.StepSize > volumeDiagonal {
		return fmt.Errorf("core: stepSize %f exceeds volume diagonal %f", p.StepSize, volumeDiagonal)
	}
	return nil
}

// ParamsForQuality derives RenderParams from a quality tier: low->0.02,
// medium->0.01, high->0.005 with internalQuality=3.
func ParamsForQuality(q QualityTier) RenderParams {
	p := RenderParams{Quality: q, MaxSteps: 2000, EnableGradients: true}
	switch q {
	case QualityLow:
		p.StepSize = 0.02
	case QualityMedium:
		p.StepSize = 0.01
	case QualityHigh:
		p.StepSize = 0.005
		p.InternalQuality = 3
	}
	return p
}
