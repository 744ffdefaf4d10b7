package handler

import (
	"time"

	internalEvents "pulse-companion-be/internal/events"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/pkg/serverutils"
	internalWS "pulse-companion-be/internal/websocket"
	"pulse-companion-be/pkg/analytics"
	"pulse-companion-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	bus    internalEvents.Bus
	hub    *internalWS.Hub
	logger logger.ILogger
	debug  bool
}

// NewNotificationHandler serves the alert websocket. bus may be nil; debug
// enables the trigger endpoint.
func NewNotificationHandler(bus internalEvents.Bus, hub *internalWS.Hub, log logger.ILogger, debug bool) *NotificationHandler {
	return &NotificationHandler{
		bus:    bus,
		hub:    hub,
		logger: log,
		debug:  debug,
	}
}

// ServeWs streams alerts for ?patient_id=, or for every patient when omitted.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	patientID := c.Query("patient_id")

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"patient_id": patientID})
		internalWS.ServeWs(h.hub, conn, patientID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"patient_id": patientID})
	})(c)
}

// Connections reports how many alert sockets this instance holds.
func (h *NotificationHandler) Connections(c *fiber.Ctx) error {
	return c.JSON(serverutils.SuccessResponse("Alert connections", fiber.Map{"connections": h.hub.ClientCount()}))
}

// DebugTriggerEvent simulates a vitals alert to test the flow.
func (h *NotificationHandler) DebugTriggerEvent(c *fiber.Ctx) error {
	type Request struct {
		PatientId string `json:"patient_id" validate:"required"`
		Message   string `json:"message"`
		Severity  string `json:"severity" validate:"omitempty,oneof=info warning critical"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Severity == "" {
		req.Severity = analytics.SeverityWarning
	}
	if req.Message == "" {
		req.Message = "Test alert"
	}

	evt := events.BaseEvent{
		Type: events.TypeVitalsAlert,
		Data: map[string]interface{}{
			"patient_id": req.PatientId,
			"severity":   req.Severity,
			"alerts": []map[string]interface{}{
				{"type": "test", "severity": req.Severity, "message": req.Message},
			},
		},
		OccurredAt: time.Now(),
	}

	delivered := "bus"
	if h.bus == nil || h.bus.Publish(c.UserContext(), evt) != nil {
		h.hub.SendEvent(evt)
		delivered = "local"
	}

	return c.JSON(serverutils.SuccessResponse("Event published", fiber.Map{"delivered_via": delivered, "event": evt}))
}

// RegisterRoutes registers the alert routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	alerts := router.Group("/alerts")
	alerts.Get("/ws", h.ServeWs)
	alerts.Get("/connections", h.Connections)

	if h.debug {
		debug := router.Group("/debug")
		debug.Post("/trigger-alert", h.DebugTriggerEvent)
	}
}
