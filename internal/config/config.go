// Package config layers CLI flags over viper-backed defaults for the
// render loop's settings. Flags take precedence; an optional JSON config
// file sits below them, and hardcoded defaults sit below that.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings is the resolved configuration for one render run.
type Settings struct {
	Width, Height int
	Frames        int
	OutputDir     string
	DataPath      string
	Dataset       string
	Timestep      int
	Interactive   bool
	Port          int
	Peers         int
	CompositeMode string
	GPU           bool
}

// RegisterFlags defines the render loop's CLI flags on fs, bound to
// viper so file/flag/default precedence is resolved uniformly.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("width", 1280, "output frame width")
	fs.Int("height", 720, "output frame height")
	fs.Int("frames", 240, "number of frames to render")
	fs.String("out", "./output/frames", "output directory")
	fs.String("data", "", "volume data base path")
	fs.String("dataset", "default", "dataset name under --data")
	fs.Int("timestep", 0, "initial timestep")
	fs.Bool("interactive", false, "keep the control TCP server running after the fixed frame count")
	fs.Int("port", 9090, "control TCP server port")
	fs.Int("peers", 4, "number of simulated peers in the render group")
	fs.String("mode", "alphablend", "composite mode: mindepth, alphablend, or maxintensity")
	fs.Bool("gpu", false, "probe for a GPU compositor before falling back to the CPU path")
}

// BindFlags binds fs's flags into viper so Settings resolution sees CLI
// overrides ahead of config-file and default values.
func BindFlags(fs *pflag.FlagSet) error {
	if err := viper.BindPFlags(fs); err != nil {
		return fmt.Errorf("config: binding flags: %w", err)
	}
	return nil
}

// setDefaults installs the hardcoded defaults below any config file or
// flag value.
func setDefaults() {
	viper.SetDefault("width", 1280)
	viper.SetDefault("height", 720)
	viper.SetDefault("frames", 240)
	viper.SetDefault("out", "./output/frames")
	viper.SetDefault("data", "")
	viper.SetDefault("dataset", "default")
	viper.SetDefault("timestep", 0)
	viper.SetDefault("interactive", false)
	viper.SetDefault("port", 9090)
	viper.SetDefault("peers", 4)
	viper.SetDefault("mode", "alphablend")
	viper.SetDefault("gpu", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "morviq")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "morviq-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("logLevel", "info")
}

// Load installs defaults, optionally reads a JSON config file from
// configDir (missing file is not an error — flags and defaults still
// apply), and returns the resolved Settings.
func Load(configDir string) (Settings, error) {
	setDefaults()

	if configDir != "" {
		viper.SetConfigName("morviq.cfg")
		viper.SetConfigType("json")
		viper.AddConfigPath(configDir)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	return Settings{
		Width:         viper.GetInt("width"),
		Height:        viper.GetInt("height"),
		Frames:        viper.GetInt("frames"),
		OutputDir:     viper.GetString("out"),
		DataPath:      viper.GetString("data"),
		Dataset:       viper.GetString("dataset"),
		Timestep:      viper.GetInt("timestep"),
		Interactive:   viper.GetBool("interactive"),
		Port:          viper.GetInt("port"),
		Peers:         viper.GetInt("peers"),
		CompositeMode: viper.GetString("mode"),
		GPU:           viper.GetBool("gpu"),
	}, nil
}

// GetString returns a string config value.
func GetString(key string) string { return viper.GetString(key) }

// GetInt returns an int config value.
func GetInt(key string) int { return viper.GetInt(key) }

// GetBool returns a bool config value.
func GetBool(key string) bool { return viper.GetBool(key) }
