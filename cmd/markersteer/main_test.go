package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/markersteer/internal/config"
)

func loadDefaults(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Decode(config.New())
	require.NoError(t, err)
	return cfg
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*config.Config)
		opts  options
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name: "no flags keeps config",
			opts: options{device: -1},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, loadDefaults(t), cfg)
			},
		},
		{
			name: "preset only changes size",
			setup: func(cfg *config.Config) {
				cfg.Camera.URL = "rtsp://cam.local/stream"
				cfg.Camera.Codec = "H264"
				cfg.Camera.Quality = 60
				cfg.Camera.BufferSize = 4
				cfg.Camera.Device = 2
			},
			opts: options{device: -1, preset: "vga"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 640, cfg.Camera.Width)
				assert.Equal(t, 480, cfg.Camera.Height)
				assert.Equal(t, 640.0, cfg.Geometry.FrameWidth)
				assert.Equal(t, 480.0, cfg.Geometry.FrameHeight)
				assert.Equal(t, "rtsp://cam.local/stream", cfg.Camera.URL)
				assert.Equal(t, "H264", cfg.Camera.Codec)
				assert.Equal(t, 60, cfg.Camera.Quality)
				assert.Equal(t, 4, cfg.Camera.BufferSize)
				assert.Equal(t, 2, cfg.Camera.Device)
			},
		},
		{
			name: "source overrides",
			opts: options{device: 3, url: "udp://@0.0.0.0:9000", gopro: true},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 3, cfg.Camera.Device)
				assert.Equal(t, "udp://@0.0.0.0:9000", cfg.Camera.URL)
				assert.True(t, cfg.GoPro.Enabled)
			},
		},
		{
			name: "marker overrides",
			opts: options{device: -1, kind: "qr", dictionary: "6x6_100"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "qr", cfg.Marker.Kind)
				assert.Equal(t, "6x6_100", cfg.Marker.Dictionary)
			},
		},
		{
			name: "web overrides",
			opts: options{device: -1, port: "9090", noWeb: true},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "9090", cfg.Web.Port)
				assert.False(t, cfg.Web.Enabled)
			},
		},
		{
			name: "slow keeps log threshold",
			setup: func(cfg *config.Config) {
				cfg.Tracking.LogThreshold = 0.2
			},
			opts: options{device: -1, slow: true},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 200*time.Millisecond, cfg.Tracking.FrameInterval)
				assert.Equal(t, 0.2, cfg.Tracking.LogThreshold)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			if tc.setup != nil {
				tc.setup(&cfg)
			}
			require.NoError(t, applyFlags(&cfg, tc.opts))
			tc.check(t, cfg)
		})
	}
}

func TestApplyFlags_UnknownPreset(t *testing.T) {
	cfg := loadDefaults(t)
	before := cfg

	err := applyFlags(&cfg, options{device: -1, preset: "8k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "8k")
	assert.Equal(t, before, cfg)
}
