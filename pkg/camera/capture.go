package camera

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teslashibe/markersteer/internal/log"
	"gocv.io/x/gocv"
)

// ErrClosed is returned when reading from a released capture.
var ErrClosed = errors.New("camera closed")

// Capture reads frames from a local video device
type Capture struct {
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	config Config
	mu     sync.Mutex // Protects cap and frame
	closed bool
}

// Open opens the configured device and applies codec, resolution and buffer size
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera config: %v", errs)
	}

	source := cfg.Source()
	var device any = cfg.Device
	if cfg.URL != "" {
		device = cfg.URL
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %s: device not available", source)
	}

	if cfg.Codec != "" {
		vc.Set(gocv.VideoCaptureFOURCC, vc.ToCodec(cfg.Codec))
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	if cfg.BufferSize > 0 {
		vc.Set(gocv.VideoCaptureBufferSize, float64(cfg.BufferSize))
	}

	gotW := int(vc.Get(gocv.VideoCaptureFrameWidth))
	gotH := int(vc.Get(gocv.VideoCaptureFrameHeight))
	if gotW != cfg.Width || gotH != cfg.Height {
		log.Warn("camera resolution differs from requested",
			"source", source, "requested", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
			"actual", fmt.Sprintf("%dx%d", gotW, gotH))
	}

	log.Info("camera opened", "source", source, "codec", vc.CodecString(), "width", gotW, "height", gotH)

	// Some backends (streams, files) report 0 until the first frame
	if gotW > 0 && gotH > 0 {
		cfg.Width, cfg.Height = gotW, gotH
	}

	return &Capture{
		cap:    vc,
		frame:  gocv.NewMat(),
		config: cfg,
	}, nil
}

// CaptureJPEG reads the next frame and returns it JPEG-encoded
func (c *Capture) CaptureJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	if ok := c.cap.Read(&c.frame); !ok {
		return nil, fmt.Errorf("read camera %s: no frame", c.config.Source())
	}
	if c.frame.Empty() {
		return nil, fmt.Errorf("read camera %s: empty frame", c.config.Source())
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.frame, []int{gocv.IMWriteJpegQuality, c.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out of the native buffer before it is released
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Config returns the settings in effect, with the resolution the device reported
func (c *Capture) Config() Config {
	return c.config
}

// Close releases the device
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	return c.cap.Close()
}
