package volume

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/piatra-institute/morviq/pkg/core"
)

// zarray mirrors the subset of a Zarr array's `.zarray` metadata this
// loader understands: shape, chunks, and dtype. Compression and filters
// are not supported; chunk files are read as raw little-endian float32.
type zarray struct {
	Shape  [3]int `json:"shape"`
	Chunks [3]int `json:"chunks"`
	Dtype  string `json:"dtype"`
}

const float32LE = "<f4"

// loadZarr reads the scale-0 timestep of a minimal Zarr-like store rooted
// at dir: the directory containing .zarray and its numbered chunk files.
func loadZarr(dir string) (*core.VolumeField, error) {
	meta, err := readZarray(filepath.Join(dir, ".zarray"))
	if err != nil {
		return nil, err
	}
	if meta.Dtype != float32LE {
		return nil, fmt.Errorf("volume: %s: unsupported dtype %q, want %q", dir, meta.Dtype, float32LE)
	}

	field, err := core.NewVolumeField(meta.Shape, [3]float32{1, 1, 1}, [3]float32{})
	if err != nil {
		return nil, err
	}

	nChunks := [3]int{
		ceilDiv(meta.Shape[0], meta.Chunks[0]),
		ceilDiv(meta.Shape[1], meta.Chunks[1]),
		ceilDiv(meta.Shape[2], meta.Chunks[2]),
	}
	for cz := 0; cz < nChunks[2]; cz++ {
		for cy := 0; cy < nChunks[1]; cy++ {
			for cx := 0; cx < nChunks[0]; cx++ {
				if err := loadChunkInto(field, dir, meta, cx, cy, cz); err != nil {
					return nil, err
				}
			}
		}
	}
	return field, nil
}

func readZarray(path string) (zarray, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return zarray{}, fmt.Errorf("volume: reading %s: %w", path, err)
	}
	var meta zarray
	if err := json.Unmarshal(raw, &meta); err != nil {
		return zarray{}, fmt.Errorf("volume: parsing %s: %w", path, err)
	}
	for i, d := range meta.Shape {
		if d < 1 {
			return zarray{}, fmt.Errorf("volume: %s: shape[%d]=%d must be >= 1", path, i, d)
		}
	}
	for i, d := range meta.Chunks {
		if d < 1 {
			return zarray{}, fmt.Errorf("volume: %s: chunks[%d]=%d must be >= 1", path, i, d)
		}
	}
	return meta, nil
}

// loadChunkInto reads one chunk file (Zarr v2's "x.y.z" key naming) and
// copies its samples into field at the chunk's offset, clipping at the
// volume boundary for a ragged final chunk.
func loadChunkInto(field *core.VolumeField, dir string, meta zarray, cx, cy, cz int) error {
	name := fmt.Sprintf("%d.%d.%d", cx, cy, cz)
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("volume: reading chunk %s: %w", name, err)
	}
	want := meta.Chunks[0] * meta.Chunks[1] * meta.Chunks[2] * 4
	if len(raw) != want {
		return fmt.Errorf("volume: chunk %s has %d bytes, want %d", name, len(raw), want)
	}

	baseX, baseY, baseZ := cx*meta.Chunks[0], cy*meta.Chunks[1], cz*meta.Chunks[2]
	for lz := 0; lz < meta.Chunks[2]; lz++ {
		z := baseZ + lz
		if z >= meta.Shape[2] {
			continue
		}
		for ly := 0; ly < meta.Chunks[1]; ly++ {
			y := baseY + ly
			if y >= meta.Shape[1] {
				continue
			}
			for lx := 0; lx < meta.Chunks[0]; lx++ {
				x := baseX + lx
				if x >= meta.Shape[0] {
					continue
				}
				localIdx := (lz*meta.Chunks[1]+ly)*meta.Chunks[0] + lx
				v := math.Float32frombits(binary.LittleEndian.Uint32(raw[localIdx*4:]))
				field.Data[(z*meta.Shape[1]+y)*meta.Shape[0]+x] = v
			}
		}
	}
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
