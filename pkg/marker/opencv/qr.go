package opencv

import (
	"strconv"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/teslashibe/markersteer/internal/log"
	"github.com/teslashibe/markersteer/pkg/marker"
	"gocv.io/x/gocv"
)

// QRDetector finds a single QR code per frame with OpenCV's QRCodeDetector.
// The decoded payload becomes the marker ID when it is a decimal integer.
type QRDetector struct {
	detector gocv.QRCodeDetector
	mu       sync.Mutex // Protects detection
}

// NewQR creates a new QR code detector
func NewQR() *QRDetector {
	return &QRDetector{detector: gocv.NewQRCodeDetector()}
}

// Detect finds a QR code in the JPEG image
func (d *QRDetector) Detect(jpeg []byte) ([]marker.Detection, error) {
	img, err := decode(jpeg)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	return d.DetectMat(img), nil
}

// DetectMat finds a QR code in an already decoded frame
func (d *QRDetector) DetectMat(img gocv.Mat) []marker.Detection {
	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()

	d.mu.Lock()
	payload := d.detector.DetectAndDecode(img, &points, &straight)
	d.mu.Unlock()

	if points.Empty() {
		return nil
	}

	values, err := points.DataPtrFloat32()
	if err != nil {
		log.Debug("skipping qr code", "error", err)
		return nil
	}

	id := qrID(payload)
	det, err := marker.NewDetection(id, pointsFromFloats(values))
	if err != nil {
		log.Debug("skipping malformed qr code", "error", err)
		return nil
	}

	log.Debug("qr code found", "id", id, "payload", payload)
	return []marker.Detection{det}
}

// Close releases the detector resources
func (d *QRDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detector.Close()
}

// qrID parses a decimal payload, -1 for anything else (including undecodable codes)
func qrID(payload string) int {
	id, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil || id < 0 {
		return -1
	}
	return id
}

// pointsFromFloats pairs interleaved x, y values. A trailing odd value is dropped.
func pointsFromFloats(values []float32) []r2.Point {
	points := make([]r2.Point, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		points = append(points, r2.Point{X: float64(values[i]), Y: float64(values[i+1])})
	}
	return points
}
