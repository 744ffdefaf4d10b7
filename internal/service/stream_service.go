package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/metrics"
	"pulse-companion-be/pkg/resilience"
	"pulse-companion-be/pkg/rppg"
)

type IStreamService interface {
	// NewSession starts a capture for an existing patient. Sessions are not
	// safe for concurrent use; each websocket connection owns one.
	NewSession(ctx context.Context, patientId string) (*StreamSession, error)
}

type streamService struct {
	uowFactory    unitofwork.RepositoryFactory
	detector      rppg.Detector
	cfg           rppg.MonitorConfig
	vitalsService IVitalsService
	publisher     IPublisherService
	metrics       *metrics.Metrics
	logger        logger.ILogger
}

func NewStreamService(
	uowFactory unitofwork.RepositoryFactory,
	detector rppg.Detector,
	cfg rppg.MonitorConfig,
	vitalsService IVitalsService,
	publisher IPublisherService,
	m *metrics.Metrics,
	logger logger.ILogger,
) IStreamService {
	return &streamService{
		uowFactory:    uowFactory,
		detector:      detector,
		cfg:           cfg,
		vitalsService: vitalsService,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
	}
}

func (s *streamService) NewSession(ctx context.Context, patientId string) (*StreamSession, error) {
	if s.detector == nil {
		return nil, ErrDetectorUnavailable
	}
	if _, err := findPatient(ctx, s.uowFactory.NewUnitOfWork(ctx), patientId); err != nil {
		return nil, err
	}

	everyN := s.cfg.EveryNFrames
	if everyN <= 0 {
		everyN = rppg.DefaultEveryNFrames
	}

	s.logger.Info("STREAM", "Stream session started", map[string]interface{}{"patient_id": patientId})
	return &StreamSession{
		svc:       s,
		patientId: patientId,
		everyN:    everyN,
		monitor:   rppg.NewMonitor(s.cfg, s.detector, s.logger.Zap("RPPG")),
		started:   time.Now(),
	}, nil
}

type StreamSession struct {
	svc       *streamService
	patientId string
	everyN    int
	monitor   *rppg.Monitor
	seq       uint64
	started   time.Time
}

// ProcessJPEG runs one encoded frame through the monitor. Completed estimates
// are handed to the measurement pipeline; the live cache is refreshed on every frame.
func (ss *StreamSession) ProcessJPEG(ctx context.Context, data []byte) (*dto.StreamFrameResponse, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		ss.svc.metrics.StreamFrame("invalid")
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	ss.seq++
	res := ss.monitor.ProcessFrame(rppg.FrameFromImage(img, ss.seq, time.Now()))
	ss.svc.metrics.StreamFrame(string(res.Status))

	if res.FaceDetected && ss.monitor.Frames()%ss.everyN == 0 {
		if res.Measurement != nil {
			ss.svc.metrics.VitalsEstimate("estimated")
		} else {
			ss.svc.metrics.VitalsEstimate("insufficient")
		}
	}

	ss.svc.vitalsService.UpdateLive(ctx, &entity.LiveVitals{
		PatientId:    ss.patientId,
		HeartRate:    res.HeartRate,
		HRV:          res.HRV,
		Confidence:   res.Confidence,
		Status:       string(res.Status),
		FaceDetected: res.FaceDetected,
	})

	if res.Measurement != nil {
		ss.publishMeasurement(ctx, res.Measurement)
	}

	out := &dto.StreamFrameResponse{FrameResult: res}
	if res.Status == rppg.StatusNoFace {
		out.Message, _ = resilience.SensorMessage(resilience.SensorFaceNotDetected)
	}
	return out, nil
}

func (ss *StreamSession) publishMeasurement(ctx context.Context, m *rppg.Measurement) {
	payload, err := json.Marshal(dto.PublishMeasurementMessage{
		PatientId:    ss.patientId,
		HeartRate:    m.HeartRate,
		HRV:          m.HRV,
		QualityScore: m.QualityScore,
		MeasuredAt:   m.At,
	})
	if err != nil {
		ss.svc.logger.Error("STREAM", "Failed to encode measurement", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := ss.svc.publisher.Publish(ctx, payload); err != nil {
		ss.svc.logger.Warn("STREAM", "Failed to publish measurement", map[string]interface{}{
			"patient_id": ss.patientId,
			"error":      err.Error(),
		})
	}
}

// Close ends the session and returns the aggregate of its estimates.
func (ss *StreamSession) Close() rppg.Summary {
	summary := ss.monitor.Summary()
	ss.svc.logger.Info("STREAM", "Stream session ended", map[string]interface{}{
		"patient_id": ss.patientId,
		"frames":     ss.monitor.Frames(),
		"estimates":  summary.Samples,
		"duration_s": time.Since(ss.started).Seconds(),
	})
	return summary
}
