package tracking

import "time"

// Config holds the frame loop parameters
type Config struct {
	// How often a frame is captured and processed
	FrameInterval time.Duration `json:"frame_interval" mapstructure:"frameInterval"`

	// Only log position changes at least this large (normalized units)
	LogThreshold float64 `json:"log_threshold" mapstructure:"logThreshold"`
}

// DefaultConfig returns a 20 fps loop
func DefaultConfig() Config {
	return Config{
		FrameInterval: 50 * time.Millisecond,
		LogThreshold:  0.05,
	}
}

// SlowConfig returns a 5 fps loop for low-power hosts
func SlowConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = 200 * time.Millisecond
	return cfg
}
