package sink

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piatra-institute/morviq/pkg/core"
)

func TestWriteFrameCreatesCompositedSubdirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	s := NewPNGSink(zerolog.Nop(), dir)

	frame, err := core.NewFrame(4, 4)
	require.NoError(t, err)
	frame.Reset()

	require.NoError(t, s.WriteFrame(3, frame))

	path := filepath.Join(dir, "composited", "frame_000003.png")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestUnpremultiplyDividesOutAlpha(t *testing.T) {
	frame, err := core.NewFrame(1, 1)
	require.NoError(t, err)
	// Premultiplied: full-alpha red at half intensity.
	frame.Color[0], frame.Color[1], frame.Color[2], frame.Color[3] = 128, 0, 0, 255
	img := unpremultiply(frame)
	px := img.NRGBAAt(0, 0)
	assert.Equal(t, byte(128), px.R)
	assert.Equal(t, byte(255), px.A)
}

func TestUnpremultiplyZeroAlphaYieldsZeroRGB(t *testing.T) {
	frame, err := core.NewFrame(1, 1)
	require.NoError(t, err)
	frame.Color[0], frame.Color[1], frame.Color[2], frame.Color[3] = 200, 50, 10, 0
	img := unpremultiply(frame)
	px := img.NRGBAAt(0, 0)
	assert.Equal(t, byte(0), px.R)
	assert.Equal(t, byte(0), px.G)
	assert.Equal(t, byte(0), px.B)
	assert.Equal(t, byte(0), px.A)
}

func TestUnpremultiplyClampsAtLowAlpha(t *testing.T) {
	// At a small relative to c, c*255/a can overflow 255; the result must
	// clamp rather than wrap.
	frame, err := core.NewFrame(1, 1)
	require.NoError(t, err)
	frame.Color[0], frame.Color[1], frame.Color[2], frame.Color[3] = 50, 0, 0, 10
	img := unpremultiply(frame)
	px := img.NRGBAAt(0, 0)
	assert.Equal(t, byte(255), px.R)
}
