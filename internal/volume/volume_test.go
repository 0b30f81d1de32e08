package volume

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piatra-institute/morviq/pkg/core"
)

func writeRawVolume(t *testing.T, path string, fill float32) {
	n := rawDims[0] * rawDims[1] * rawDims[2]
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(fill))
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestLoadPrefersRawOverZarrAndProcedural(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "default", "t_0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeRawVolume(t, filepath.Join(dir, "volume.raw"), 0.75)

	field, err := Load(zerolog.Nop(), base, "default", 0, "")
	require.NoError(t, err)
	assert.Equal(t, [3]int{128, 128, 128}, field.Dims)
	assert.InDelta(t, float32(0.75), field.At(10, 10, 10), 1e-6)
}

func TestLoadRawRejectsWrongSize(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "default", "t_0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "volume.raw"), []byte{1, 2, 3}, 0o644))

	_, err := Load(zerolog.Nop(), base, "default", 0, "")
	assert.Error(t, err)
}

func writeZarrVolume(t *testing.T, dir string, shape, chunks [3]int, fill float32) {
	require.NoError(t, os.MkdirAll(dir, 0o755))
	meta := zarray{Shape: shape, Chunks: chunks, Dtype: float32LE}
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zarray"), raw, 0o644))

	nChunks := [3]int{ceilDiv(shape[0], chunks[0]), ceilDiv(shape[1], chunks[1]), ceilDiv(shape[2], chunks[2])}
	chunkLen := chunks[0] * chunks[1] * chunks[2]
	for cz := 0; cz < nChunks[2]; cz++ {
		for cy := 0; cy < nChunks[1]; cy++ {
			for cx := 0; cx < nChunks[0]; cx++ {
				buf := make([]byte, chunkLen*4)
				for i := 0; i < chunkLen; i++ {
					binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(fill))
				}
				name := filepath.Join(dir, formatChunkName(cx, cy, cz))
				require.NoError(t, os.WriteFile(name, buf, 0o644))
			}
		}
	}
}

func formatChunkName(x, y, z int) string {
	return string([]byte{byte('0' + x), '.', byte('0' + y), '.', byte('0' + z)})
}

func TestLoadZarrWhenNoRawPresent(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "default", "t_0")
	writeZarrVolume(t, dir, [3]int{8, 8, 8}, [3]int{4, 4, 4}, 0.33)

	field, err := Load(zerolog.Nop(), base, "default", 0, "")
	require.NoError(t, err)
	assert.Equal(t, [3]int{8, 8, 8}, field.Dims)
	assert.InDelta(t, float32(0.33), field.At(1, 1, 1), 1e-6)
	assert.InDelta(t, float32(0.33), field.At(6, 6, 6), 1e-6)
}

func TestLoadZarrRejectsTruncatedChunkFile(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "default", "t_0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	meta := zarray{Shape: [3]int{4, 4, 4}, Chunks: [3]int{4, 4, 4}, Dtype: float32LE}
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zarray"), raw, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0.0.0"), []byte{1, 2, 3}, 0o644))

	_, err = Load(zerolog.Nop(), base, "default", 0, "")
	assert.Error(t, err)
}

func TestLoadFallsBackToProceduralWhenNoFilesPresent(t *testing.T) {
	base := t.TempDir()
	field, err := Load(zerolog.Nop(), base, "default", 0, "")
	require.NoError(t, err)
	assert.Equal(t, [3]int{64, 64, 64}, field.Dims)
}

func TestLoadCachedReusesFieldAcrossCalls(t *testing.T) {
	base := t.TempDir()
	cache := NewFieldCache()
	first, err := LoadCached(zerolog.Nop(), cache, base, "default", 0, "")
	require.NoError(t, err)
	second, err := LoadCached(zerolog.Nop(), cache, base, "default", 0, "")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestFieldCacheResetClearsEntries(t *testing.T) {
	cache := NewFieldCache()
	cache.Set("k", &core.VolumeField{})
	require.Equal(t, 1, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("k")
	assert.False(t, ok)
}
