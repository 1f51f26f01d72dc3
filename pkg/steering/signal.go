package steering

import (
	"time"

	"github.com/teslashibe/markersteer/pkg/marker"
)

// Signal is one frame's steering output
type Signal struct {
	Position  float64   `json:"position"`  // Normalized offset, 0 when centered or no target
	Distance  float64   `json:"distance"`  // Same units as MarkerTrueSize, InvalidDistance on degenerate geometry
	Direction Direction `json:"direction"`
	HasTarget bool      `json:"has_target"`
	MarkerID  int       `json:"marker_id"` // -1 without a target
	Markers   int       `json:"markers"`   // Markers seen this frame
	Valid     bool      `json:"valid"`
	Err       string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Compute runs every estimator over one frame's detections
func (e *Estimator) Compute(dets []marker.Detection) Signal {
	sig := Signal{
		Position:  e.EstimatePosition(dets),
		Direction: e.Direction(dets),
		MarkerID:  -1,
		Markers:   len(dets),
		Valid:     true,
		Timestamp: time.Now(),
	}

	if det, ok := marker.First(dets); ok {
		sig.HasTarget = true
		sig.MarkerID = det.ID
	}

	distance, err := e.EstimateDistance(dets)
	sig.Distance = distance
	if err != nil {
		sig.Valid = false
		sig.Err = err.Error()
	}

	return sig
}
