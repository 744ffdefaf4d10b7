package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/pkg/rppg"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// maxDeliveries bounds redelivery of a measurement whose store keeps failing.
const maxDeliveries = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	vitalsService IVitalsService
	logger        logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	vitalsService IVitalsService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		vitalsService: vitalsService,
		logger:        logger,
		attempts:      make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishMeasurementMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal measurement", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	err := cs.vitalsService.RecordMeasurement(ctx, payload.PatientId, rppg.Measurement{
		HeartRate:    payload.HeartRate,
		HRV:          payload.HRV,
		QualityScore: payload.QualityScore,
		At:           payload.MeasuredAt,
	})
	if err == nil {
		cs.forget(msg.UUID)
		msg.Ack()
		return
	}

	// Patient removed while the session was still streaming.
	if errors.Is(err, ErrPatientNotFound) {
		cs.logger.Warn("CONSUMER", "Measurement for unknown patient dropped", map[string]interface{}{"patient_id": payload.PatientId})
		cs.forget(msg.UUID)
		msg.Ack()
		return
	}

	if cs.retry(msg.UUID) {
		cs.logger.Warn("CONSUMER", "Failed to store measurement, retrying", map[string]interface{}{
			"patient_id": payload.PatientId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Error("CONSUMER", "Measurement dropped after retries", map[string]interface{}{
		"patient_id": payload.PatientId,
		"error":      err.Error(),
	})
	msg.Ack()
}

func (cs *consumerService) retry(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.attempts[id]++
	if cs.attempts[id] < maxDeliveries {
		return true
	}
	delete(cs.attempts, id)
	return false
}

func (cs *consumerService) forget(id string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.attempts, id)
}
