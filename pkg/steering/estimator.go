package steering

import (
	"fmt"
	"math"

	"github.com/teslashibe/markersteer/pkg/marker"
)

// Direction is a movement decision derived from detections
type Direction string

// DirectionNone is the neutral decision. No other directions are produced yet.
const DirectionNone Direction = ""

// Estimator converts marker detections into position and distance.
// It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	geometry Geometry
}

// New creates an estimator for the given calibration
func New(geometry Geometry) (*Estimator, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{geometry: geometry}, nil
}

// Geometry returns the calibration the estimator was built with
func (e *Estimator) Geometry() Geometry {
	return e.geometry
}

// RawPosition returns the first marker's normalized horizontal position
// before the dead zone is applied: -1 at the left edge, +1 at the right.
// Returns 0 if there are no detections.
func (e *Estimator) RawPosition(dets []marker.Detection) float64 {
	det, ok := marker.First(dets)
	if !ok {
		return 0
	}

	// Midpoint of the diagonal corners, not the full centroid
	centerX := (det.Corners[0].X + det.Corners[2].X) / 2

	return 2*centerX/e.geometry.FrameWidth - 1
}

// EstimatePosition returns the first marker's normalized horizontal offset in [-1, 1].
// Offsets inside the blind spot (inclusive), empty detection sets and
// non-finite corners return exactly 0.
func (e *Estimator) EstimatePosition(dets []marker.Detection) float64 {
	pos := e.RawPosition(dets)
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0
	}
	if -e.geometry.BlindSpot <= pos && pos <= e.geometry.BlindSpot {
		return 0
	}
	return pos
}

// ApparentSize returns the marker's size in pixels as the sum of its
// top edge and right edge lengths.
func ApparentSize(det marker.Detection) float64 {
	c := det.Corners
	return c[1].Sub(c[0]).Norm() + c[2].Sub(c[1]).Norm()
}

// EstimateDistance returns the distance to the first marker in the units of MarkerTrueSize.
// Empty detection sets return 0. A marker with zero or non-finite apparent size
// returns InvalidDistance and an error wrapping ErrInvalidMarkerGeometry.
func (e *Estimator) EstimateDistance(dets []marker.Detection) (float64, error) {
	det, ok := marker.First(dets)
	if !ok {
		return 0, nil
	}

	size := ApparentSize(det)
	if size == 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return InvalidDistance, fmt.Errorf("marker %d apparent size %v: %w", det.ID, size, ErrInvalidMarkerGeometry)
	}

	distance := e.geometry.DistanceCoefficient * 1000 * e.geometry.MarkerTrueSize / size
	if math.IsInf(distance, 0) {
		return InvalidDistance, fmt.Errorf("marker %d apparent size %v: %w", det.ID, size, ErrInvalidMarkerGeometry)
	}
	return distance, nil
}

// Direction is the hook for a movement decision. It always returns DirectionNone.
func (e *Estimator) Direction(dets []marker.Detection) Direction {
	return DirectionNone
}
