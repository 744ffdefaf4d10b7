package service

import (
	"context"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/events"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/cache"
	"pulse-companion-be/internal/repository/specification"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/analytics"
	"pulse-companion-be/pkg/metrics"
	"pulse-companion-be/pkg/rppg"
)

type IVitalsService interface {
	Record(ctx context.Context, req *dto.RecordVitalsRequest) (*dto.RecordVitalsResponse, error)
	RecordMeasurement(ctx context.Context, patientId string, m rppg.Measurement) error
	List(ctx context.Context, patientId string, days int) (*dto.ListVitalsResponse, error)
	Latest(ctx context.Context, patientId string) (*dto.VitalReadingResponse, error)
	Live(ctx context.Context, patientId string) (*dto.LiveVitalsResponse, error)
	UpdateLive(ctx context.Context, live *entity.LiveVitals)
}

type vitalsService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	live       cache.LiveVitalsCache
	metrics    *metrics.Metrics
	thresholds analytics.Thresholds
	logger     logger.ILogger
	now        func() time.Time
}

func NewVitalsService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	live cache.LiveVitalsCache,
	m *metrics.Metrics,
	logger logger.ILogger,
) IVitalsService {
	return &vitalsService{
		uowFactory: uowFactory,
		publisher:  publisher,
		live:       live,
		metrics:    m,
		thresholds: analytics.DefaultThresholds,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *vitalsService) Record(ctx context.Context, req *dto.RecordVitalsRequest) (*dto.RecordVitalsResponse, error) {
	recordedAt := s.now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}
	source := req.Source
	if source == "" {
		source = entity.VitalSourceManual
	}

	reading := &entity.VitalReading{
		PatientId:    req.PatientId,
		RecordedAt:   recordedAt,
		HeartRate:    req.HeartRate,
		HRV:          req.HRV,
		QualityScore: req.QualityScore,
		Source:       source,
	}
	alerts, err := s.store(ctx, reading)
	if err != nil {
		return nil, err
	}

	return &dto.RecordVitalsResponse{
		Reading: *toVitalResponse(reading),
		Alerts:  alerts,
	}, nil
}

// RecordMeasurement persists a completed camera estimate. Estimates without
// an HRV value are not stored since every stored reading carries both series.
func (s *vitalsService) RecordMeasurement(ctx context.Context, patientId string, m rppg.Measurement) error {
	if m.HRV == nil {
		s.logger.Debug("VITALS", "Measurement without HRV not stored", map[string]interface{}{"patient_id": patientId})
		return nil
	}

	_, err := s.store(ctx, &entity.VitalReading{
		PatientId:    patientId,
		RecordedAt:   m.At,
		HeartRate:    analytics.Round(m.HeartRate, 1),
		HRV:          analytics.Round(*m.HRV, 1),
		QualityScore: analytics.Round(m.QualityScore, 2),
		Source:       entity.VitalSourceCamera,
	})
	return err
}

func (s *vitalsService) store(ctx context.Context, reading *entity.VitalReading) ([]analytics.Alert, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, reading.PatientId)
	if err != nil {
		return nil, err
	}

	if err := uow.VitalReadingRepository().Create(ctx, reading); err != nil {
		return nil, err
	}

	alerts := analytics.CheckAlerts(reading.HeartRate, reading.HRV, patientBaseline(patient), s.thresholds)

	s.logger.Info("VITALS", "Vital recorded", map[string]interface{}{
		"patient_id": reading.PatientId,
		"heart_rate": reading.HeartRate,
		"hrv":        reading.HRV,
		"source":     reading.Source,
		"alerts":     len(alerts),
	})

	if s.publisher != nil {
		s.publisher.PublishVitalsRecorded(ctx, reading)
		s.publisher.PublishVitalsAlert(ctx, reading, alerts)
	}
	return alerts, nil
}

// List returns readings oldest first; days <= 0 returns the full history.
func (s *vitalsService) List(ctx context.Context, patientId string, days int) (*dto.ListVitalsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findPatient(ctx, uow, patientId); err != nil {
		return nil, err
	}

	readings, err := recentReadings(ctx, uow, patientId, days, s.now())
	if err != nil {
		return nil, err
	}

	res := &dto.ListVitalsResponse{PatientId: patientId, Vitals: make([]*dto.VitalReadingResponse, 0, len(readings))}
	for _, r := range readings {
		res.Vitals = append(res.Vitals, toVitalResponse(r))
	}
	res.Count = len(res.Vitals)
	return res, nil
}

func (s *vitalsService) Latest(ctx context.Context, patientId string) (*dto.VitalReadingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findPatient(ctx, uow, patientId); err != nil {
		return nil, err
	}

	latest, err := latestReading(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNoVitals
	}
	return toVitalResponse(latest), nil
}

func (s *vitalsService) Live(ctx context.Context, patientId string) (*dto.LiveVitalsResponse, error) {
	if s.live == nil {
		return nil, ErrNoLiveVitals
	}
	live, err := s.live.Get(ctx, patientId)
	if err != nil {
		return nil, err
	}
	if live == nil {
		s.metrics.CacheMiss()
		return nil, ErrNoLiveVitals
	}
	s.metrics.CacheHit()

	return &dto.LiveVitalsResponse{
		PatientId:    live.PatientId,
		HeartRate:    live.HeartRate,
		HRV:          live.HRV,
		Confidence:   live.Confidence,
		Status:       live.Status,
		FaceDetected: live.FaceDetected,
		UpdatedAt:    live.UpdatedAt,
	}, nil
}

// UpdateLive is best effort; stream sessions keep running when the cache is down.
func (s *vitalsService) UpdateLive(ctx context.Context, live *entity.LiveVitals) {
	if s.live == nil {
		return
	}
	if live.UpdatedAt.IsZero() {
		live.UpdatedAt = s.now()
	}
	if err := s.live.Set(ctx, live); err != nil {
		s.logger.Warn("VITALS", "Failed to cache live vitals", map[string]interface{}{
			"patient_id": live.PatientId,
			"error":      err.Error(),
		})
	}
}

func recentReadings(ctx context.Context, uow unitofwork.UnitOfWork, patientId string, days int, now time.Time) ([]*entity.VitalReading, error) {
	specs := []specification.Specification{specification.ByPatientID{PatientID: patientId}}
	if days > 0 {
		specs = append(specs, specification.RecordedSince{Since: now.AddDate(0, 0, -days)})
	}
	specs = append(specs, specification.OrderBy{Field: "recorded_at"})
	return uow.VitalReadingRepository().FindAll(ctx, specs...)
}

func latestReading(ctx context.Context, uow unitofwork.UnitOfWork, patientId string) (*entity.VitalReading, error) {
	return uow.VitalReadingRepository().FindOne(ctx,
		specification.ByPatientID{PatientID: patientId},
		specification.OrderBy{Field: "recorded_at", Desc: true},
	)
}

func toAnalyticsReadings(readings []*entity.VitalReading) []analytics.Reading {
	out := make([]analytics.Reading, len(readings))
	for i, r := range readings {
		out[i] = analytics.Reading{HeartRate: r.HeartRate, HRV: r.HRV, QualityScore: r.QualityScore}
	}
	return out
}

func toVitalResponse(r *entity.VitalReading) *dto.VitalReadingResponse {
	return &dto.VitalReadingResponse{
		Id:           r.Id,
		PatientId:    r.PatientId,
		RecordedAt:   r.RecordedAt,
		HeartRate:    r.HeartRate,
		HRV:          r.HRV,
		QualityScore: r.QualityScore,
		Source:       r.Source,
	}
}
