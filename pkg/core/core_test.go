package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3Norm(t *testing.T) {
	v := Vec3{3, 4, 0}.Norm()
	assert.InDelta(t, 1.0, v.Len(), 1e-6)
}

func TestVec3NormZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Norm())
}

func TestIdentityMatrixIsNeutral(t *testing.T) {
	v := Vec4{1, 2, 3, 1}
	out := Identity().MulVec4(v)
	assert.Equal(t, v, out)
}

func TestNewVolumeFieldRejectsBadDims(t *testing.T) {
	_, err := NewVolumeField([3]int{0, 4, 4}, [3]float32{1, 1, 1}, [3]float32{})
	require.Error(t, err)
}

func TestNewVolumeFieldRejectsBadSpacing(t *testing.T) {
	_, err := NewVolumeField([3]int{4, 4, 4}, [3]float32{1, -1, 1}, [3]float32{})
	require.Error(t, err)
}

func TestFrameResetFillsBackground(t *testing.T) {
	f, err := NewFrame(2, 2)
	require.NoError(t, err)
	f.Reset()
	for i := 0; i < len(f.Depth); i++ {
		assert.Equal(t, float32(1.0), f.Depth[i])
	}
	assert.Equal(t, BackgroundColor[:], f.Color[0:4])
}

func TestDefaultBricksTileUnitCubeWithoutOverlap(t *testing.T) {
	bricks := DefaultBricks()
	require.Len(t, bricks, 8)
	var volume float32
	for _, b := range bricks {
		extent := b.MaxBounds.Sub(b.MinBounds)
		volume += extent.X * extent.Y * extent.Z
	}
	assert.InDelta(t, 1.0, volume, 1e-6)
}

func TestBioelectricTransferFunctionAlphaInBand(t *testing.T) {
	tf := BioelectricTransferFunction()
	c := tf.Apply(0.1)
	assert.GreaterOrEqual(t, c.W, float32(0.2))
	assert.LessOrEqual(t, c.W, float32(0.5))
}

func TestTransferFunctionBakeMatchesRho(t *testing.T) {
	tf := &TransferFunction{Rho: func(v float32) Vec4 { return Vec4{v, v, v, v} }}
	tf.Bake()
	for _, v := range []float32{0, 0.25, 0.5, 0.75, 1} {
		want := tf.Rho(v)
		got := tf.Apply(v)
		assert.InDelta(t, want.X, got.X, 1.0/255)
	}
}
