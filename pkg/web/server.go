// Package web serves the live steering signal over HTTP and websocket
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/markersteer/internal/log"
	"github.com/teslashibe/markersteer/pkg/hub"
	"github.com/teslashibe/markersteer/pkg/steering"
	"github.com/teslashibe/markersteer/pkg/tracking"
)

// Server publishes signals to HTTP and websocket clients
type Server struct {
	app      *fiber.App
	port     string
	geometry steering.Geometry
	logger   *slog.Logger

	// Latest signal
	signal   steering.Signal
	signalMu sync.RWMutex

	signalHub *hub.Hub

	// Stats callback, usually Tracker.Stats
	OnStats func() tracking.Stats
}

// NewServer creates a signal server for the given geometry
func NewServer(port string, geometry steering.Geometry) *Server {
	s := &Server{
		port:      port,
		geometry:  geometry,
		logger:    log.With("component", "web"),
		signal:    steering.Signal{MarkerID: -1, Valid: true},
		signalHub: hub.New("signal"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "markersteer",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/signal", s.handleSignal)
	api.Get("/geometry", s.handleGeometry)
	api.Get("/stats", s.handleStats)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/signal", websocket.New(s.handleSignalWS))

	s.app = app
	return s
}

// Start runs the hub and listens on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("signal API listening", "addr", ln.Addr().String())

	go s.signalHub.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	return s.app.Listener(ln)
}

// StartAsync binds the port, then serves in a goroutine.
// A bind failure is returned to the caller.
func (s *Server) StartAsync(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}

	go func() {
		if err := s.Serve(ctx, ln); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
	return nil
}

func (s *Server) listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", s.port, err)
	}
	return ln, nil
}

// PublishSignal stores the latest signal and broadcasts it to websocket clients.
// Implements tracking.Publisher.
func (s *Server) PublishSignal(sig steering.Signal) {
	s.signalMu.Lock()
	s.signal = sig
	s.signalMu.Unlock()

	if err := s.signalHub.BroadcastJSON(sig); err != nil {
		s.logger.Warn("encode signal", "error", err)
	}
}

// Signal returns the latest published signal
func (s *Server) Signal() steering.Signal {
	s.signalMu.RLock()
	defer s.signalMu.RUnlock()
	return s.signal
}

// SignalClients returns the number of connected websocket clients
func (s *Server) SignalClients() int {
	return s.signalHub.ClientCount()
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}
