// Package marker defines fiducial marker detections and the detector interface.
// OpenCV backends live in marker/opencv.
package marker

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
)

// ErrCornerCount is returned when a detector yields a quad without exactly four corners.
var ErrCornerCount = errors.New("marker must have exactly 4 corners")

// Detection represents one detected marker in a single frame
type Detection struct {
	ID int // Dictionary marker ID

	// Corners in pixel coordinates, detector winding order:
	// top-left, top-right, bottom-right, bottom-left
	Corners [4]r2.Point
}

// NewDetection builds a Detection from a detector's point list
func NewDetection(id int, points []r2.Point) (Detection, error) {
	if len(points) != 4 {
		return Detection{}, fmt.Errorf("marker %d: got %d corners: %w", id, len(points), ErrCornerCount)
	}
	d := Detection{ID: id}
	copy(d.Corners[:], points)
	return d, nil
}

// Detector is the interface for marker detection backends
type Detector interface {
	// Detect finds markers in the image and returns their corners
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// Marker kinds
const (
	KindAruco = "aruco"
	KindQR    = "qr"
)

// Config holds detector configuration
type Config struct {
	Kind       string `json:"kind" mapstructure:"kind"`             // "aruco" or "qr"
	Dictionary string `json:"dictionary" mapstructure:"dictionary"` // ArUco dictionary name, e.g. "4x4_250"
}

// DefaultConfig returns production defaults (ArUco, 4x4 markers, 250 IDs)
func DefaultConfig() Config {
	return Config{
		Kind:       KindAruco,
		Dictionary: "4x4_250",
	}
}

// Validate checks the marker kind
func (c Config) Validate() error {
	switch c.Kind {
	case KindAruco, KindQR:
		return nil
	default:
		return fmt.Errorf("unknown marker kind %q (want %q or %q)", c.Kind, KindAruco, KindQR)
	}
}

// First returns the detection the estimators act on, if any
func First(dets []Detection) (Detection, bool) {
	if len(dets) == 0 {
		return Detection{}, false
	}
	return dets[0], true
}
