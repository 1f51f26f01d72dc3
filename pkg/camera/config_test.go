package camera

import "testing"

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("DefaultConfig should be valid, got %v", errs)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("Expected 1280x720, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.BufferSize != 1 {
		t.Errorf("Expected BufferSize=1, got %d", cfg.BufferSize)
	}
	if cfg.Codec != "MJPG" {
		t.Errorf("Expected MJPG codec, got %q", cfg.Codec)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   int
	}{
		{"negative device", func(c *Config) { c.Device = -1 }, 1},
		{"url ignores device", func(c *Config) { c.Device = -1; c.URL = "udp://@0.0.0.0:8554" }, 0},
		{"tiny width", func(c *Config) { c.Width = 10 }, 1},
		{"huge height", func(c *Config) { c.Height = 10000 }, 1},
		{"negative buffer", func(c *Config) { c.BufferSize = -2 }, 1},
		{"bad codec", func(c *Config) { c.Codec = "MJPEG" }, 1},
		{"empty codec is allowed", func(c *Config) { c.Codec = "" }, 0},
		{"quality out of range", func(c *Config) { c.Quality = 0 }, 1},
		{"several problems", func(c *Config) { c.Width = 0; c.Height = 0; c.Quality = 101 }, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) != tc.errs {
				t.Errorf("expected %d errors, got %d: %v", tc.errs, len(errs), errs)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %q listed but not found", name)
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			t.Errorf("preset %q invalid: %v", name, errs)
		}
	}

	if GetPreset("8k") != nil {
		t.Error("unknown preset should return nil")
	}

	hd := GetPreset(Preset1080p)
	if hd.Width != 1920 || hd.Height != 1080 {
		t.Errorf("1080p preset: got %dx%d", hd.Width, hd.Height)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	if _, err := Open(cfg); err == nil {
		t.Error("Open should reject an invalid config before touching the device")
	}
}

func TestConfig_Source(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Source(); got != "device 0" {
		t.Errorf("Source: got %q", got)
	}
	cfg.URL = "rtsp://cam/stream"
	if got := cfg.Source(); got != "rtsp://cam/stream" {
		t.Errorf("Source: got %q", got)
	}
}
