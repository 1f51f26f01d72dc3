// Package config loads markersteer settings from defaults, an optional
// config file and MARKERSTEER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/teslashibe/markersteer/pkg/camera"
	"github.com/teslashibe/markersteer/pkg/gopro"
	"github.com/teslashibe/markersteer/pkg/marker"
	"github.com/teslashibe/markersteer/pkg/marker/opencv"
	"github.com/teslashibe/markersteer/pkg/steering"
	"github.com/teslashibe/markersteer/pkg/tracking"
)

// EnvPrefix is prepended to environment overrides, e.g. MARKERSTEER_GEOMETRY_BLINDSPOT.
const EnvPrefix = "MARKERSTEER"

// DefaultConfigName is the config file base name searched for (yaml, json or toml).
const DefaultConfigName = "markersteer"

// Config is the full runtime configuration
type Config struct {
	LogLevel string            `mapstructure:"logLevel"`
	Geometry steering.Geometry `mapstructure:"geometry"`
	Camera   camera.Config     `mapstructure:"camera"`
	Marker   marker.Config     `mapstructure:"marker"`
	Tracking tracking.Config   `mapstructure:"tracking"`
	Web      WebConfig         `mapstructure:"web"`
	GoPro    gopro.Config      `mapstructure:"gopro"`
}

// WebConfig holds the signal API settings
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// New returns a viper instance with every default registered
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("logLevel", "info")

	g := steering.DefaultGeometry()
	v.SetDefault("geometry.blindSpot", g.BlindSpot)
	v.SetDefault("geometry.frameWidth", g.FrameWidth)
	v.SetDefault("geometry.frameHeight", g.FrameHeight)
	v.SetDefault("geometry.distanceCoefficient", g.DistanceCoefficient)
	v.SetDefault("geometry.markerTrueSize", g.MarkerTrueSize)

	c := camera.DefaultConfig()
	v.SetDefault("camera.device", c.Device)
	v.SetDefault("camera.url", c.URL)
	v.SetDefault("camera.width", c.Width)
	v.SetDefault("camera.height", c.Height)
	v.SetDefault("camera.bufferSize", c.BufferSize)
	v.SetDefault("camera.codec", c.Codec)
	v.SetDefault("camera.quality", c.Quality)

	m := marker.DefaultConfig()
	v.SetDefault("marker.kind", m.Kind)
	v.SetDefault("marker.dictionary", m.Dictionary)

	tc := tracking.DefaultConfig()
	v.SetDefault("tracking.frameInterval", tc.FrameInterval)
	v.SetDefault("tracking.logThreshold", tc.LogThreshold)

	gp := gopro.DefaultConfig()
	v.SetDefault("gopro.enabled", gp.Enabled)
	v.SetDefault("gopro.serial", gp.Serial)

	v.SetDefault("web.enabled", true)
	v.SetDefault("web.port", "8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration. If path is empty, markersteer.{yaml,json,toml}
// is searched in the working directory and a missing file is not an error.
func Load(path string) (Config, error) {
	v := New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates a populated viper instance
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Geometry.Validate(); err != nil {
		return Config{}, err
	}
	if errs := cfg.Camera.Validate(); len(errs) > 0 {
		return Config{}, fmt.Errorf("camera config: %s", strings.Join(errs, "; "))
	}
	if err := opencv.Validate(cfg.Marker); err != nil {
		return Config{}, err
	}
	if cfg.GoPro.Enabled {
		if _, err := gopro.Addr(cfg.GoPro.Serial); err != nil {
			return Config{}, err
		}
	}
	if cfg.Tracking.FrameInterval <= 0 {
		return Config{}, fmt.Errorf("tracking frame interval must be positive, got %v", cfg.Tracking.FrameInterval)
	}

	return cfg, nil
}
