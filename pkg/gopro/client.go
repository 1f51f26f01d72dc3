// Package gopro controls the preview stream of a GoPro connected over USB.
package gopro

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teslashibe/markersteer/internal/httpc"
	"github.com/teslashibe/markersteer/internal/log"
)

// StreamURL is where the camera sends its preview once started.
const StreamURL = "udp://@0.0.0.0:8554"

// Config holds GoPro connection settings
type Config struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Serial  string `json:"serial" mapstructure:"serial"` // Last 3 digits of the serial number
}

// DefaultConfig returns a disabled config
func DefaultConfig() Config {
	return Config{Serial: "322"}
}

// Client sends stream commands to the camera's HTTP API
type Client struct {
	baseURL string
	http    *http.Client
}

// Addr returns the camera's USB network address for a serial suffix,
// 172.2X.1YZ.51 for serial XYZ.
func Addr(serial string) (string, error) {
	if len(serial) != 3 {
		return "", fmt.Errorf("gopro serial must be the last 3 digits, got %q", serial)
	}
	for _, r := range serial {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("gopro serial must be numeric, got %q", serial)
		}
	}
	return fmt.Sprintf("172.2%c.1%c%c.51", serial[0], serial[1], serial[2]), nil
}

// New creates a client for the camera with the given serial suffix
func New(serial string) (*Client, error) {
	addr, err := Addr(serial)
	if err != nil {
		return nil, err
	}
	return NewWithURL("http://" + addr), nil
}

// NewWithURL creates a client for an explicit base URL
func NewWithURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpc.NewClient(httpc.DefaultTimeout),
	}
}

// StreamStart asks the camera to start streaming to StreamURL
func (c *Client) StreamStart(ctx context.Context) error {
	if err := httpc.GetOK(ctx, c.http, c.baseURL+"/gopro/camera/stream/start"); err != nil {
		return fmt.Errorf("gopro stream start: %w", err)
	}
	log.Info("gopro stream started", "url", c.baseURL)
	return nil
}

// StreamStop stops the preview stream
func (c *Client) StreamStop(ctx context.Context) error {
	if err := httpc.GetOK(ctx, c.http, c.baseURL+"/gopro/camera/stream/stop"); err != nil {
		return fmt.Errorf("gopro stream stop: %w", err)
	}
	log.Info("gopro stream stopped", "url", c.baseURL)
	return nil
}
