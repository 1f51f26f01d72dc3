// Package tracking runs the per-frame loop: capture, detect markers,
// estimate the steering signal and publish it.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/markersteer/internal/log"
	"github.com/teslashibe/markersteer/pkg/marker"
	"github.com/teslashibe/markersteer/pkg/steering"
)

// VideoSource interface for capturing frames
type VideoSource interface {
	CaptureJPEG() ([]byte, error)
}

// Publisher receives every computed signal
type Publisher interface {
	PublishSignal(sig steering.Signal)
}

// Stats counts processed frames
type Stats struct {
	Frames   uint64 `json:"frames"`   // Frames run through the estimators
	Targets  uint64 `json:"targets"`  // Frames with at least one marker
	Invalid  uint64 `json:"invalid"`  // Frames with degenerate marker geometry
	Failures uint64 `json:"failures"` // Capture or detection errors
}

// Tracker drives the capture → detect → estimate loop
type Tracker struct {
	config    Config
	video     VideoSource
	detector  marker.Detector
	estimator *steering.Estimator
	publisher Publisher
	logger    *slog.Logger

	// State
	mu            sync.RWMutex
	last          steering.Signal
	stats         Stats
	lastLoggedPos float64
	hadTarget     bool
	wasInvalid    bool
	failStreak    int
	isRunning     bool
}

// New creates a tracker. The publisher is optional; see SetPublisher.
func New(config Config, video VideoSource, detector marker.Detector, estimator *steering.Estimator) *Tracker {
	return &Tracker{
		config:        config,
		video:         video,
		detector:      detector,
		estimator:     estimator,
		logger:        log.With("component", "tracker"),
		last:          steering.Signal{MarkerID: -1, Valid: true},
		lastLoggedPos: math.NaN(),
	}
}

// SetPublisher sets where signals are sent
func (t *Tracker) SetPublisher(p Publisher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publisher = p
}

// Run processes frames every FrameInterval until ctx is cancelled
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.config.FrameInterval)
	defer ticker.Stop()

	t.setRunning(true)
	defer t.setRunning(false)

	g := t.estimator.Geometry()
	t.logger.Info("tracker started",
		"interval", t.config.FrameInterval,
		"frame", fmt.Sprintf("%.0fx%.0f", g.FrameWidth, g.FrameHeight),
		"blind_spot", g.BlindSpot,
		"marker_size", g.MarkerTrueSize)

	for {
		select {
		case <-ctx.Done():
			s := t.Stats()
			t.logger.Info("tracker stopped", "frames", s.Frames, "targets", s.Targets, "failures", s.Failures)
			return

		case <-ticker.C:
			if _, err := t.ProcessFrame(); err != nil {
				t.reportFailure(err)
			}
		}
	}
}

// ProcessFrame runs one capture → detect → estimate pass and publishes the result.
// Degenerate marker geometry is reported in the signal, not as an error.
func (t *Tracker) ProcessFrame() (steering.Signal, error) {
	frame, err := t.video.CaptureJPEG()
	if err != nil {
		t.countFailure()
		return steering.Signal{}, fmt.Errorf("capture: %w", err)
	}

	dets, err := t.detector.Detect(frame)
	if err != nil {
		t.countFailure()
		return steering.Signal{}, fmt.Errorf("detect: %w", err)
	}

	sig := t.estimator.Compute(dets)

	t.mu.Lock()
	t.last = sig
	t.stats.Frames++
	if sig.HasTarget {
		t.stats.Targets++
	}
	if !sig.Valid {
		t.stats.Invalid++
	}
	t.failStreak = 0
	publisher := t.publisher
	t.logChange(sig)
	t.mu.Unlock()

	if publisher != nil {
		publisher.PublishSignal(sig)
	}

	return sig, nil
}

// logChange logs target acquisition/loss, moves larger than LogThreshold
// and the start of a run of degenerate frames.
// Caller holds t.mu.
func (t *Tracker) logChange(sig steering.Signal) {
	switch {
	case sig.HasTarget && !t.hadTarget:
		t.logger.Info("target acquired", "marker", sig.MarkerID, "position", sig.Position, "distance", sig.Distance)
		t.lastLoggedPos = sig.Position
	case !sig.HasTarget && t.hadTarget:
		t.logger.Info("target lost")
		t.lastLoggedPos = math.NaN()
	case sig.HasTarget && math.Abs(sig.Position-t.lastLoggedPos) >= t.config.LogThreshold:
		t.logger.Debug("target moved", "marker", sig.MarkerID, "position", sig.Position, "distance", sig.Distance)
		t.lastLoggedPos = sig.Position
	}
	switch {
	case !sig.Valid && !t.wasInvalid:
		t.logger.Warn("degenerate marker geometry", "marker", sig.MarkerID, "error", sig.Err)
	case sig.Valid && t.wasInvalid:
		t.logger.Info("marker geometry valid again", "marker", sig.MarkerID)
	}
	t.wasInvalid = !sig.Valid
	t.hadTarget = sig.HasTarget
}

func (t *Tracker) countFailure() {
	t.mu.Lock()
	t.stats.Failures++
	t.failStreak++
	t.mu.Unlock()
}

// reportFailure logs the first failure of a streak and then every 100th
func (t *Tracker) reportFailure(err error) {
	t.mu.RLock()
	streak := t.failStreak
	t.mu.RUnlock()

	if streak == 1 || streak%100 == 0 {
		t.logger.Warn("frame failed", "error", err, "consecutive", streak)
	}
}

// LastSignal returns the most recent signal
func (t *Tracker) LastSignal() steering.Signal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Stats returns frame counters
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// IsRunning returns whether Run is active
func (t *Tracker) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isRunning
}

func (t *Tracker) setRunning(running bool) {
	t.mu.Lock()
	t.isRunning = running
	t.mu.Unlock()
}
