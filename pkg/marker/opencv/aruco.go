package opencv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/teslashibe/markersteer/internal/log"
	"github.com/teslashibe/markersteer/pkg/marker"
	"gocv.io/x/gocv"
)

var dictionaries = map[string]gocv.ArucoDictionaryCode{
	"4x4_50":   gocv.ArucoDict4x4_50,
	"4x4_100":  gocv.ArucoDict4x4_100,
	"4x4_250":  gocv.ArucoDict4x4_250,
	"4x4_1000": gocv.ArucoDict4x4_1000,
	"5x5_50":   gocv.ArucoDict5x5_50,
	"5x5_100":  gocv.ArucoDict5x5_100,
	"5x5_250":  gocv.ArucoDict5x5_250,
	"5x5_1000": gocv.ArucoDict5x5_1000,
	"6x6_50":   gocv.ArucoDict6x6_50,
	"6x6_100":  gocv.ArucoDict6x6_100,
	"6x6_250":  gocv.ArucoDict6x6_250,
	"6x6_1000": gocv.ArucoDict6x6_1000,
	"7x7_50":   gocv.ArucoDict7x7_50,
	"7x7_100":  gocv.ArucoDict7x7_100,
	"7x7_250":  gocv.ArucoDict7x7_250,
	"7x7_1000": gocv.ArucoDict7x7_1000,
	"original": gocv.ArucoDictArucoOriginal,
}

// ParseDictionary maps a dictionary name like "4x4_250" (or "DICT_4X4_250") to its code
func ParseDictionary(name string) (gocv.ArucoDictionaryCode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "dict_")
	key = strings.TrimPrefix(key, "aruco_")
	if code, ok := dictionaries[key]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown aruco dictionary: %q", name)
}

// ArucoDetector uses OpenCV's ArucoDetector for square fiducial detection
type ArucoDetector struct {
	detector gocv.ArucoDetector
	config   marker.Config
	mu       sync.Mutex // Protects detection
}

// NewAruco creates a new ArUco detector for the configured dictionary
func NewAruco(cfg marker.Config) (*ArucoDetector, error) {
	code, err := ParseDictionary(cfg.Dictionary)
	if err != nil {
		return nil, err
	}

	dict := gocv.GetPredefinedDictionary(code)
	params := gocv.NewArucoDetectorParameters()

	return &ArucoDetector{
		detector: gocv.NewArucoDetectorWithParams(dict, params),
		config:   cfg,
	}, nil
}

// Detect finds markers in the JPEG image
func (d *ArucoDetector) Detect(jpeg []byte) ([]marker.Detection, error) {
	img, err := decode(jpeg)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	return d.DetectMat(img), nil
}

// DetectMat finds markers in an already decoded frame
func (d *ArucoDetector) DetectMat(img gocv.Mat) []marker.Detection {
	d.mu.Lock()
	corners, ids, _ := d.detector.DetectMarkers(img)
	d.mu.Unlock()

	detections := make([]marker.Detection, 0, len(corners))
	for i, quad := range corners {
		id := -1
		if i < len(ids) {
			id = ids[i]
		}

		points := make([]r2.Point, len(quad))
		for j, p := range quad {
			points[j] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
		}

		det, err := marker.NewDetection(id, points)
		if err != nil {
			log.Debug("skipping malformed marker", "error", err)
			continue
		}
		detections = append(detections, det)
	}

	if len(detections) > 0 {
		log.Debug("aruco markers found", "count", len(detections), "dictionary", d.config.Dictionary)
	}

	return detections
}

// Close releases the detector resources
func (d *ArucoDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detector.Close()
}
