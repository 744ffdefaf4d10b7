package controller

import (
	"context"

	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/service"
	"pulse-companion-be/pkg/rppg"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const stopCommand = "stop"

type streamMessage struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Summary *rppg.Summary `json:"summary,omitempty"`
}

type IStreamController interface {
	RegisterRoutes(r fiber.Router)
}

type streamController struct {
	service service.IStreamService
	logger  logger.ILogger
}

func NewStreamController(service service.IStreamService, logger logger.ILogger) IStreamController {
	return &streamController{service: service, logger: logger}
}

func (c *streamController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/stream")
	h.Get(":patientId", c.upgrade, websocket.New(c.serve))
}

// upgrade rejects plain HTTP and unknown patients before the handshake.
func (c *streamController) upgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	session, err := c.service.NewSession(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return err
	}
	ctx.Locals("session", session)
	return ctx.Next()
}

// serve reads binary JPEG frames and answers each with the frame result. A
// text "stop" ends the session with a summary.
func (c *streamController) serve(conn *websocket.Conn) {
	session, ok := conn.Locals("session").(*service.StreamSession)
	if !ok {
		_ = conn.WriteJSON(streamMessage{Type: "error", Message: "session not initialised"})
		return
	}
	ctx := context.Background()

	defer func() {
		summary := session.Close()
		_ = conn.WriteJSON(streamMessage{Type: "summary", Summary: &summary})
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("STREAM", "Stream connection closed", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			if string(data) == stopCommand {
				return
			}
			_ = conn.WriteJSON(streamMessage{Type: "error", Message: "send JPEG frames as binary messages or \"stop\""})
		case websocket.BinaryMessage:
			res, err := session.ProcessJPEG(ctx, data)
			if err != nil {
				_ = conn.WriteJSON(streamMessage{Type: "error", Message: err.Error()})
				continue
			}
			if err := conn.WriteJSON(res); err != nil {
				return
			}
		}
	}
}
