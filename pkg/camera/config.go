// Package camera opens a local video device and hands out JPEG frames.
package camera

import "fmt"

// Config holds the capture device settings
type Config struct {
	Device     int    `json:"device" mapstructure:"device"`          // VideoCapture device index
	URL        string `json:"url" mapstructure:"url"`                // Stream URL; overrides Device when set
	Width      int    `json:"width" mapstructure:"width"`            // Frame width in pixels
	Height     int    `json:"height" mapstructure:"height"`          // Frame height in pixels
	BufferSize int    `json:"buffer_size" mapstructure:"bufferSize"` // Driver frame queue, 1 = always latest
	Codec      string `json:"codec" mapstructure:"codec"`            // FOURCC, e.g. "MJPG"
	Quality    int    `json:"quality" mapstructure:"quality"`        // JPEG quality 1-100
}

// Limits accepted by Validate
const (
	MaxWidth  = 4096
	MaxHeight = 2160
)

// DefaultConfig returns 1280x720 MJPG capture from the first device.
// The frame size must match the steering geometry.
func DefaultConfig() Config {
	return Config{
		Device:     0,
		Width:      1280,
		Height:     720,
		BufferSize: 1, // Drop stale frames
		Codec:      "MJPG",
		Quality:    85,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.URL == "" && c.Device < 0 {
		errors = append(errors, "device must be >= 0")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between 160 and %d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between 120 and %d", MaxHeight))
	}
	if c.BufferSize < 0 {
		errors = append(errors, "buffer_size must be >= 0 (0 = driver default)")
	}
	if c.Codec != "" && len(c.Codec) != 4 {
		errors = append(errors, "codec must be a 4 character FOURCC")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}

// Source describes where frames come from, for logs and errors
func (c Config) Source() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("device %d", c.Device)
}
