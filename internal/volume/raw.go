// Package volume resolves a dataset/timestep pair into a *core.VolumeField:
// a raw 128³ float32 blob, a chunked Zarr-like multiscale store, or (if
// neither file is present) a procedural fallback. The raymarcher never
// sees which branch produced the field.
package volume

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/piatra-institute/morviq/pkg/core"
)

// rawDims is the fixed shape of a volume.raw blob.
var rawDims = [3]int{128, 128, 128}

// loadRaw reads a volume.raw file as 128^3 little-endian float32 samples
// laid out x-fastest, matching core.VolumeField.At's indexing.
func loadRaw(path string) (*core.VolumeField, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("volume: reading %s: %w", path, err)
	}
	n := rawDims[0] * rawDims[1] * rawDims[2]
	want := n * 4
	if len(data) != want {
		return nil, fmt.Errorf("volume: %s has %d bytes, want %d for a 128^3 float32 volume", path, len(data), want)
	}
	field, err := core.NewVolumeField(rawDims, [3]float32{1, 1, 1}, [3]float32{})
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		field.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return field, nil
}
