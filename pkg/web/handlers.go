package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/markersteer/pkg/hub"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleSignal returns the latest signal
func (s *Server) handleSignal(c *fiber.Ctx) error {
	return c.JSON(s.Signal())
}

// handleGeometry returns the active calibration
func (s *Server) handleGeometry(c *fiber.Ctx) error {
	return c.JSON(s.geometry)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	if s.OnStats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tracker not attached",
		})
	}
	return c.JSON(s.OnStats())
}

// handleSignalWS streams every published signal, starting with the latest one
func (s *Server) handleSignalWS(c *websocket.Conn) {
	var initial []hub.Message
	if data, err := json.Marshal(s.Signal()); err == nil {
		initial = append(initial, hub.NewJSONMessage(data))
	}

	client := hub.NewClient(s.signalHub, c, initial...)
	client.Run()
}
