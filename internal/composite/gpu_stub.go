package composite

import (
	"errors"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/pkg/core"
)

// ErrGPUUnavailable is returned by every GPUCompositor method. A
// CUDA-backed compositor would guard its device buffers behind a build
// flag and fall back to nothing when that flag is absent; this type is
// the always-present, always-inert stand-in for that branch until one
// is built.
var ErrGPUUnavailable = errors.New("composite: GPU compositor unavailable in this build")

// GPUCompositor has the same shape as Compositor but never runs; every
// call reports ErrGPUUnavailable so callers can probe for GPU support at
// startup and fall back to Compositor without a type switch at the call
// site.
type GPUCompositor struct {
	view *collective.View
	mode core.CompositeMode
}

// NewGPU constructs a GPUCompositor bound to view. It is always safe to
// construct; only Composite is a guaranteed error.
func NewGPU(view *collective.View, mode core.CompositeMode) *GPUCompositor {
	return &GPUCompositor{view: view, mode: mode}
}

// Composite always returns ErrGPUUnavailable.
func (c *GPUCompositor) Composite(local, output *core.Frame) error {
	return ErrGPUUnavailable
}
