// Package opencv implements marker detectors on top of OpenCV (gocv).
package opencv

import (
	"fmt"

	"github.com/teslashibe/markersteer/pkg/marker"
	"gocv.io/x/gocv"
)

// New creates the detector selected by cfg.Kind
func New(cfg marker.Config) (marker.Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case marker.KindQR:
		return NewQR(), nil
	default:
		return NewAruco(cfg)
	}
}

// Validate checks the settings a detector would be built from without allocating one
func Validate(cfg marker.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Kind == marker.KindAruco {
		if _, err := ParseDictionary(cfg.Dictionary); err != nil {
			return err
		}
	}
	return nil
}

// decode turns encoded image bytes into a BGR frame. The caller closes it.
func decode(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return img, fmt.Errorf("decode image: %w", err)
	}
	if img.Empty() {
		img.Close()
		return img, fmt.Errorf("decode image: empty result")
	}
	return img, nil
}
