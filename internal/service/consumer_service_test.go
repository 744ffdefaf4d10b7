package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pulse-companion-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerService_StoresPublishedMeasurements(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newTestDeps(t)
	d.seedPatient(t)
	vitals := newVitalsService(d)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "measurements", vitals, d.log)
	require.NoError(t, consumer.Consume(ctx))
	publisher := NewPublisherService("measurements", pubSub)

	publish := func(msg dto.PublishMeasurementMessage) {
		payload, err := json.Marshal(msg)
		require.NoError(t, err)
		require.NoError(t, publisher.Publish(ctx, payload))
	}

	publish(dto.PublishMeasurementMessage{PatientId: "ghost", HeartRate: 70, HRV: ptr(40.0), QualityScore: 0.8, MeasuredAt: time.Now()})
	require.NoError(t, publisher.Publish(ctx, []byte("{broken")))
	publish(dto.PublishMeasurementMessage{PatientId: "maria_001", HeartRate: 76.2, HRV: ptr(38.4), QualityScore: 0.77, MeasuredAt: time.Now()})

	require.Eventually(t, func() bool {
		_, err := vitals.Latest(ctx, "maria_001")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	latest, err := vitals.Latest(ctx, "maria_001")
	require.NoError(t, err)
	assert.Equal(t, 76.2, latest.HeartRate)
	assert.Equal(t, 1, d.publisher.recordedCount())
}

func TestConsumerService_RetryBudget(t *testing.T) {
	cs := &consumerService{attempts: map[string]int{}}

	assert.True(t, cs.retry("m1"))
	assert.True(t, cs.retry("m1"))
	assert.False(t, cs.retry("m1"))
	assert.Empty(t, cs.attempts)
}
