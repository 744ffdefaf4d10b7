package events

import (
	"context"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/pkg/analytics"
	pkgEvents "pulse-companion-be/pkg/events"
)

// Publisher abstracts event publishing for vitals and check-in operations
type Publisher interface {
	PublishVitalsRecorded(ctx context.Context, reading *entity.VitalReading)
	PublishVitalsAlert(ctx context.Context, reading *entity.VitalReading, alerts []analytics.Alert)
	PublishCheckinAlert(ctx context.Context, turn *entity.CheckinTurn)
}

// Bus is the transport side, satisfied by pkg/nats.Publisher.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// LocalSink receives alerts directly when no bus is configured or publishing
// fails. The websocket hub implements it.
type LocalSink interface {
	SendEvent(event pkgEvents.Event)
}

// BusPublisher implements Publisher on top of a Bus with a local fallback
type BusPublisher struct {
	bus    Bus
	local  LocalSink
	logger logger.ILogger
}

func NewBusPublisher(bus Bus, local LocalSink, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		bus:    bus,
		local:  local,
		logger: logger,
	}
}

// PublishVitalsRecorded emits vitals.recorded for every stored reading
func (p *BusPublisher) PublishVitalsRecorded(ctx context.Context, reading *entity.VitalReading) {
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeVitalsRecorded,
		Data: map[string]interface{}{
			"patient_id":    reading.PatientId,
			"reading_id":    reading.Id.String(),
			"heart_rate":    reading.HeartRate,
			"hrv":           reading.HRV,
			"quality_score": reading.QualityScore,
			"source":        reading.Source,
			"recorded_at":   reading.RecordedAt,
		},
		OccurredAt: time.Now(),
	}
	p.publish(ctx, evt, false)
}

// PublishVitalsAlert emits vitals.alert when a reading crosses a threshold
func (p *BusPublisher) PublishVitalsAlert(ctx context.Context, reading *entity.VitalReading, alerts []analytics.Alert) {
	if len(alerts) == 0 {
		return
	}

	items := make([]map[string]interface{}, len(alerts))
	severity := analytics.SeverityInfo
	for i, a := range alerts {
		items[i] = map[string]interface{}{
			"type":     a.Type,
			"severity": a.Severity,
			"message":  a.Message,
		}
		severity = maxSeverity(severity, a.Severity)
	}

	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeVitalsAlert,
		Data: map[string]interface{}{
			"patient_id": reading.PatientId,
			"reading_id": reading.Id.String(),
			"heart_rate": reading.HeartRate,
			"hrv":        reading.HRV,
			"severity":   severity,
			"alerts":     items,
		},
		OccurredAt: time.Now(),
	}
	p.publish(ctx, evt, true)
}

// PublishCheckinAlert emits checkin.alert when a reply says the care team
// should be told
func (p *BusPublisher) PublishCheckinAlert(ctx context.Context, turn *entity.CheckinTurn) {
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeCheckinAlert,
		Data: map[string]interface{}{
			"patient_id":      turn.PatientId,
			"turn_id":         turn.Id.String(),
			"message":         turn.Prompt,
			"provider":        turn.Provider,
			"sentiment":       turn.Sentiment,
			"fallback_reason": turn.FallbackReason,
		},
		OccurredAt: time.Now(),
	}
	p.publish(ctx, evt, true)
}

func (p *BusPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent, alert bool) {
	if p.bus != nil {
		err := p.bus.Publish(ctx, evt)
		if err == nil {
			return
		}
		p.logger.Error("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}

	// Alerts must reach connected dashboards even when the bus is down.
	if alert && p.local != nil {
		p.local.SendEvent(evt)
	}
}

func maxSeverity(a, b string) string {
	rank := map[string]int{
		analytics.SeverityInfo:     0,
		analytics.SeverityWarning:  1,
		analytics.SeverityCritical: 2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
