package events

import (
	"context"
	"errors"
	"testing"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/pkg/analytics"
	pkgEvents "pulse-companion-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	err       error
	published []pkgEvents.Event
}

func (b *fakeBus) Publish(ctx context.Context, event pkgEvents.Event) error {
	b.published = append(b.published, event)
	return b.err
}

type fakeSink struct {
	received []pkgEvents.Event
}

func (s *fakeSink) SendEvent(event pkgEvents.Event) {
	s.received = append(s.received, event)
}

func reading() *entity.VitalReading {
	return &entity.VitalReading{Id: uuid.New(), PatientId: "maria_001", HeartRate: 125, HRV: 18}
}

func TestPublishVitalsAlert_HighestSeverity(t *testing.T) {
	bus := &fakeBus{}
	p := NewBusPublisher(bus, &fakeSink{}, logger.NewNop())

	p.PublishVitalsAlert(context.Background(), reading(), []analytics.Alert{
		{Type: analytics.AlertLowHRV, Severity: analytics.SeverityWarning, Message: "HRV critically low: 18 ms"},
		{Type: analytics.AlertHighHR, Severity: analytics.SeverityCritical, Message: "Heart rate critically high: 125 bpm"},
	})

	require.Len(t, bus.published, 1)
	evt := bus.published[0]
	assert.Equal(t, pkgEvents.TypeVitalsAlert, evt.EventType())
	assert.Equal(t, analytics.SeverityCritical, evt.Payload()["severity"])
	assert.Equal(t, "maria_001", evt.Payload()["patient_id"])
}

func TestPublishVitalsAlert_NoAlertsIsNoop(t *testing.T) {
	bus := &fakeBus{}
	p := NewBusPublisher(bus, nil, logger.NewNop())

	p.PublishVitalsAlert(context.Background(), reading(), nil)
	assert.Empty(t, bus.published)
}

func TestPublish_FallsBackToLocalSinkForAlerts(t *testing.T) {
	bus := &fakeBus{err: errors.New("nats: no responders")}
	sink := &fakeSink{}
	p := NewBusPublisher(bus, sink, logger.NewNop())

	p.PublishCheckinAlert(context.Background(), &entity.CheckinTurn{Id: uuid.New(), PatientId: "maria_001", Sentiment: "negative"})
	p.PublishVitalsRecorded(context.Background(), reading())

	require.Len(t, sink.received, 1, "only alerts are delivered locally")
	assert.Equal(t, pkgEvents.TypeCheckinAlert, sink.received[0].EventType())
}

func TestPublish_WithoutBus(t *testing.T) {
	sink := &fakeSink{}
	p := NewBusPublisher(nil, sink, logger.NewNop())

	assert.NotPanics(t, func() {
		p.PublishVitalsRecorded(context.Background(), reading())
		p.PublishCheckinAlert(context.Background(), &entity.CheckinTurn{PatientId: "maria_001"})
	})
	assert.Len(t, sink.received, 1)
}
