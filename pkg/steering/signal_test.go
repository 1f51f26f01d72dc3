package steering

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/markersteer/pkg/marker"
)

func TestCompute_NoTarget(t *testing.T) {
	e := newEstimator(t, DefaultGeometry())

	sig := e.Compute(nil)
	assert.False(t, sig.HasTarget)
	assert.True(t, sig.Valid)
	assert.Equal(t, 0.0, sig.Position)
	assert.Equal(t, 0.0, sig.Distance)
	assert.Equal(t, -1, sig.MarkerID)
	assert.Equal(t, 0, sig.Markers)
	assert.Equal(t, DirectionNone, sig.Direction)
	assert.Empty(t, sig.Err)
	assert.False(t, sig.Timestamp.IsZero())
}

func TestCompute_Target(t *testing.T) {
	e := newEstimator(t, DefaultGeometry())

	det := edges(50, 50)
	det.ID = 9
	sig := e.Compute([]marker.Detection{det, quad(2, 640, 640)})

	require.True(t, sig.Valid)
	assert.True(t, sig.HasTarget)
	assert.Equal(t, 9, sig.MarkerID)
	assert.Equal(t, 2, sig.Markers)
	assert.Equal(t, 1500.0, sig.Distance)
	// Center at x=25 is near the left edge
	assert.Equal(t, 2*25.0/1280-1, sig.Position)
}

func TestCompute_DegenerateKeepsPosition(t *testing.T) {
	e := newEstimator(t, DefaultGeometry())

	det := marker.Detection{ID: 3}
	sig := e.Compute([]marker.Detection{det})

	assert.False(t, sig.Valid)
	assert.True(t, sig.HasTarget)
	assert.Equal(t, InvalidDistance, sig.Distance)
	assert.Contains(t, sig.Err, ErrInvalidMarkerGeometry.Error())
	assert.Equal(t, -1.0, sig.Position)
}

func TestCompute_NonFiniteCornerStaysEncodable(t *testing.T) {
	e := newEstimator(t, DefaultGeometry())

	tests := []struct {
		name string
		det  marker.Detection
	}{
		{name: "NaN corner", det: func() marker.Detection {
			d := edges(50, 50)
			d.Corners[0].X = math.NaN()
			return d
		}()},
		{name: "opposite infinities", det: func() marker.Detection {
			d := edges(50, 50)
			d.Corners[0].X = math.Inf(1)
			d.Corners[2].X = math.Inf(-1)
			return d
		}()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig := e.Compute([]marker.Detection{tc.det})

			assert.False(t, sig.Valid)
			assert.Equal(t, 0.0, sig.Position)
			assert.Equal(t, InvalidDistance, sig.Distance)

			_, err := json.Marshal(sig)
			assert.NoError(t, err)
		})
	}
}
