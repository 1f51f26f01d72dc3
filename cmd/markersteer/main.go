// markersteer - ArUco marker steering signal
//
// Reads frames from a camera, finds the first ArUco marker and publishes its
// normalized horizontal offset and estimated distance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/markersteer/internal/config"
	"github.com/teslashibe/markersteer/internal/log"
	"github.com/teslashibe/markersteer/pkg/camera"
	"github.com/teslashibe/markersteer/pkg/gopro"
	"github.com/teslashibe/markersteer/pkg/marker"
	"github.com/teslashibe/markersteer/pkg/marker/opencv"
	"github.com/teslashibe/markersteer/pkg/steering"
	"github.com/teslashibe/markersteer/pkg/tracking"
	"github.com/teslashibe/markersteer/pkg/web"
)

type options struct {
	configPath string
	debug      bool
	device     int
	url        string
	gopro      bool
	preset     string
	dictionary string
	port       string
	noWeb      bool
	slow       bool
	kind       string
	image      string
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(&cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	if opts.debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	if err := run(cfg, opts); err != nil {
		log.Error("markersteer failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Config file (default: ./markersteer.{yaml,json,toml} if present)")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.IntVar(&o.device, "device", -1, "Camera device index (overrides config)")
	flag.StringVar(&o.url, "url", "", "Camera stream URL (overrides device)")
	flag.BoolVar(&o.gopro, "gopro", false, "Start a USB GoPro preview stream and read from it")
	flag.StringVar(&o.preset, "preset", "", "Camera preset: default, vga, 720p, 1080p")
	flag.StringVar(&o.kind, "kind", "", "Marker kind: aruco or qr (overrides config)")
	flag.StringVar(&o.dictionary, "dict", "", "ArUco dictionary, e.g. 4x4_250 (overrides config)")
	flag.StringVar(&o.port, "port", "", "Signal API port (overrides config)")
	flag.BoolVar(&o.noWeb, "no-web", false, "Disable the signal API")
	flag.BoolVar(&o.slow, "slow", false, "Process 5 frames per second instead of 20")
	flag.StringVar(&o.image, "image", "", "Process a single image file, print the signal and exit")
	flag.Parse()
	return o
}

// applyFlags layers command line overrides on top of the loaded config
func applyFlags(cfg *config.Config, o options) error {
	if o.preset != "" {
		p := camera.GetPreset(o.preset)
		if p == nil {
			return fmt.Errorf("unknown preset %q (available: %v)", o.preset, camera.PresetNames())
		}
		// Only the size comes from the preset
		cfg.Camera.Width = p.Width
		cfg.Camera.Height = p.Height
		cfg.Geometry.FrameWidth = float64(p.Width)
		cfg.Geometry.FrameHeight = float64(p.Height)
	}
	if o.device >= 0 {
		cfg.Camera.Device = o.device
	}
	if o.url != "" {
		cfg.Camera.URL = o.url
	}
	if o.gopro {
		cfg.GoPro.Enabled = true
	}
	if o.kind != "" {
		cfg.Marker.Kind = o.kind
	}
	if o.dictionary != "" {
		cfg.Marker.Dictionary = o.dictionary
	}
	if o.port != "" {
		cfg.Web.Port = o.port
	}
	if o.noWeb {
		cfg.Web.Enabled = false
	}
	if o.slow {
		cfg.Tracking.FrameInterval = tracking.SlowConfig().FrameInterval
	}
	return nil
}

func run(cfg config.Config, opts options) error {
	estimator, err := steering.New(cfg.Geometry)
	if err != nil {
		return err
	}

	detector, err := opencv.New(cfg.Marker)
	if err != nil {
		return err
	}
	defer detector.Close()

	if opts.image != "" {
		return processImage(opts.image, detector, estimator)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.GoPro.Enabled {
		gp, err := gopro.New(cfg.GoPro.Serial)
		if err != nil {
			return err
		}
		if err := gp.StreamStart(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer stopCancel()
			if err := gp.StreamStop(stopCtx); err != nil {
				log.Warn("gopro stream stop failed", "error", err)
			}
		}()
		if cfg.Camera.URL == "" {
			cfg.Camera.URL = gopro.StreamURL
		}
	}

	cam, err := camera.Open(cfg.Camera)
	if err != nil {
		return err
	}
	defer cam.Close()

	if actual := cam.Config(); float64(actual.Width) != cfg.Geometry.FrameWidth || float64(actual.Height) != cfg.Geometry.FrameHeight {
		log.Warn("camera size differs from geometry frame size",
			"camera", fmt.Sprintf("%dx%d", actual.Width, actual.Height),
			"geometry", fmt.Sprintf("%.0fx%.0f", cfg.Geometry.FrameWidth, cfg.Geometry.FrameHeight))
	}

	tracker := tracking.New(cfg.Tracking, cam, detector, estimator)

	if cfg.Web.Enabled {
		server := web.NewServer(cfg.Web.Port, cfg.Geometry)
		server.OnStats = tracker.Stats
		if err := server.StartAsync(ctx); err != nil {
			return err
		}
		tracker.SetPublisher(server)
	}

	tracker.Run(ctx)
	return nil
}

// processImage runs the estimators over one still image
func processImage(path string, detector marker.Detector, estimator *steering.Estimator) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	dets, err := detector.Detect(data)
	if err != nil {
		return fmt.Errorf("detect %s: %w", path, err)
	}

	sig := estimator.Compute(dets)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sig)
}
