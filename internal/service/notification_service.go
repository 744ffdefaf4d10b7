package service

import (
	"context"
	"fmt"

	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/pkg/events"
	pktNats "pulse-companion-be/pkg/nats" // Renamed to avoid collision
)

// NotificationDelivery pushes events to connected dashboards.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	SendEvent(event events.Event)
}

// EventSubscriber is satisfied by pkg/nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type NotificationService struct {
	subscriber EventSubscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub EventSubscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start subscribes one durable consumer per event type. With several
// instances each event is handled once and the hub relays it cluster-wide.
func (s *NotificationService) Start(ctx context.Context) error {
	for _, eventType := range []string{events.TypeVitalsAlert, events.TypeCheckinAlert, events.TypeVitalsRecorded} {
		durable := "notify-" + sanitizeDurable(eventType)
		if err := s.subscriber.Subscribe(ctx, eventType, durable, s.handleEvent); err != nil {
			s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{
				"event_type": eventType,
				"error":      err.Error(),
			})
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
	return nil
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	patientID, _ := payload["patient_id"].(string)
	if patientID == "" {
		s.logger.Warn("NotificationService", "Event without patient_id dropped", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	if event.EventType() != events.TypeVitalsRecorded {
		s.logger.Info("NotificationService", fmt.Sprintf("Delivering %s", event.EventType()), map[string]interface{}{
			"patient_id": patientID,
			"severity":   payload["severity"],
		})
	}

	if s.delivery != nil {
		s.delivery.SendEvent(event)
	}
	return nil
}

// durable names may not contain dots
func sanitizeDurable(eventType string) string {
	out := []byte(eventType)
	for i, b := range out {
		if b == '.' {
			out[i] = '_'
		}
	}
	return string(out)
}
