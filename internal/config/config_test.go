package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1280, settings.Width)
	assert.Equal(t, 720, settings.Height)
	assert.Equal(t, 240, settings.Frames)
	assert.Equal(t, "./output/frames", settings.OutputDir)
	assert.Equal(t, "default", settings.Dataset)
	assert.Equal(t, 0, settings.Timestep)
	assert.False(t, settings.Interactive)
	assert.Equal(t, 9090, settings.Port)
	assert.Equal(t, 4, settings.Peers)
	assert.Equal(t, "alphablend", settings.CompositeMode)
	assert.False(t, settings.GPU)
}

func TestLoadWithConfigFileOverridesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{"width": 640, "height": 480, "dataset": "demo"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "morviq.cfg.json"), []byte(cfg), 0644))

	settings, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 640, settings.Width)
	assert.Equal(t, 480, settings.Height)
	assert.Equal(t, "demo", settings.Dataset)
}

func TestLoadWithMissingConfigDirStillSucceeds(t *testing.T) {
	t.Cleanup(viper.Reset)

	settings, err := Load("/nonexistent/path")
	require.NoError(t, err)
	assert.Equal(t, 1280, settings.Width)
}

func TestBindFlagsGivesCLIPrecedenceOverDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--width=1920", "--dataset=overridden"}))
	require.NoError(t, BindFlags(fs))

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1920, settings.Width)
	assert.Equal(t, "overridden", settings.Dataset)
}

func TestGetStringIntBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)
	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.True(t, GetBool("testBool"))
}
