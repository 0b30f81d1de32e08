package volume

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/piatra-institute/morviq/internal/render"
	"github.com/piatra-institute/morviq/pkg/core"
)

// Load resolves <basePath>/<dataset>/t_<step> into a VolumeField:
// volume.raw wins if present, then a .zarray multiscale store, else a
// bioelectric procedural field keyed by bioParams. log records which
// branch was taken, at Debug level.
func Load(log zerolog.Logger, basePath, dataset string, step int, bioParams string) (*core.VolumeField, error) {
	dir := filepath.Join(basePath, dataset, "t_"+strconv.Itoa(step))

	rawPath := filepath.Join(dir, "volume.raw")
	if _, err := os.Stat(rawPath); err == nil {
		log.Debug().Str("path", rawPath).Msg("volume: loading raw blob")
		return loadRaw(rawPath)
	}

	zarrayPath := filepath.Join(dir, ".zarray")
	if _, err := os.Stat(zarrayPath); err == nil {
		log.Debug().Str("dir", dir).Msg("volume: loading zarr store")
		return loadZarr(dir)
	}

	log.Debug().Str("dir", dir).Msg("volume: no raw/zarr data found, generating procedural field")
	state, err := render.ParseBioelectricState(bioParams)
	if err != nil {
		log.Warn().Err(err).Msg("volume: invalid bioelectric params, using defaults")
		state = render.DefaultBioelectricState()
	}
	return render.GenerateBioelectricField(state, 64), nil
}

// LoadCached is Load with FieldCache memoization keyed on the exact
// (basePath, dataset, step, bioParams) tuple: repeated calls with the same
// control state reuse the previous field without touching the filesystem
// or regenerating a procedural volume.
func LoadCached(log zerolog.Logger, cache *FieldCache, basePath, dataset string, step int, bioParams string) (*core.VolumeField, error) {
	key := basePath + "|" + dataset + "|" + strconv.Itoa(step) + "|" + bioParams
	if field, ok := cache.Get(key); ok {
		return field, nil
	}
	field, err := Load(log, basePath, dataset, step, bioParams)
	if err != nil {
		return nil, err
	}
	cache.Set(key, field)
	return field, nil
}
