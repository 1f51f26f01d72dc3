package steering

import "errors"

// InvalidDistance is returned by EstimateDistance alongside ErrInvalidMarkerGeometry.
const InvalidDistance = -1.0

var (
	// ErrInvalidMarkerGeometry indicates the marker's apparent size is zero or not finite.
	ErrInvalidMarkerGeometry = errors.New("invalid marker geometry")

	// ErrInvalidGeometryConfig indicates calibration constants the estimators cannot use.
	ErrInvalidGeometryConfig = errors.New("invalid geometry config")
)
