// Package steering turns a detected marker's corners into a steering signal:
// a normalized horizontal offset and an estimated distance to the marker.
package steering

import "fmt"

// Geometry holds the calibration constants the estimators work from.
// It is fixed at startup; Estimator keeps its own copy.
type Geometry struct {
	// Dead zone half-width in normalized position units (0-1)
	BlindSpot float64 `json:"blind_spot" mapstructure:"blindSpot"`

	// Source frame size in pixels
	FrameWidth  float64 `json:"frame_width" mapstructure:"frameWidth"`
	FrameHeight float64 `json:"frame_height" mapstructure:"frameHeight"` // Not used by the estimators

	// Empirical scale factor for the distance formula
	DistanceCoefficient float64 `json:"distance_coefficient" mapstructure:"distanceCoefficient"`

	// Real-world side length of the printed marker (mm)
	MarkerTrueSize float64 `json:"marker_true_size" mapstructure:"markerTrueSize"`
}

// DefaultGeometry returns the calibration used for a 1280x720 camera and a 150mm marker
func DefaultGeometry() Geometry {
	return Geometry{
		BlindSpot:           0.1, // 10% either side of center
		FrameWidth:          1280,
		FrameHeight:         720,
		DistanceCoefficient: 1.0,
		MarkerTrueSize:      150.0,
	}
}

// Validate checks the geometry is usable by the estimators
func (g Geometry) Validate() error {
	switch {
	case g.FrameWidth <= 0:
		return fmt.Errorf("frame width %v: %w", g.FrameWidth, ErrInvalidGeometryConfig)
	case g.FrameHeight <= 0:
		return fmt.Errorf("frame height %v: %w", g.FrameHeight, ErrInvalidGeometryConfig)
	case g.BlindSpot < 0 || g.BlindSpot > 1:
		return fmt.Errorf("blind spot %v outside [0, 1]: %w", g.BlindSpot, ErrInvalidGeometryConfig)
	case g.DistanceCoefficient <= 0:
		return fmt.Errorf("distance coefficient %v: %w", g.DistanceCoefficient, ErrInvalidGeometryConfig)
	case g.MarkerTrueSize <= 0:
		return fmt.Errorf("marker size %v: %w", g.MarkerTrueSize, ErrInvalidGeometryConfig)
	}
	return nil
}
