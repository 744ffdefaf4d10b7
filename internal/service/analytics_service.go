package service

import (
	"context"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/analytics"
	"pulse-companion-be/pkg/resilience"
)

const (
	DefaultAnalyticsDays = 7
	alertStatusNoData    = "no_data"
)

type IAnalyticsService interface {
	Stats(ctx context.Context, patientId string, days int) (*dto.StatsResponse, error)
	Trends(ctx context.Context, patientId string, days int) (*dto.TrendsResponse, error)
	Alerts(ctx context.Context, patientId string) (*dto.AlertsResponse, error)
	BaselineComparison(ctx context.Context, patientId string) (*dto.BaselineComparisonResponse, error)
	Risk(ctx context.Context, patientId string, days int) (*dto.RiskResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	thresholds analytics.Thresholds
	now        func() time.Time
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory) IAnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		thresholds: analytics.DefaultThresholds,
		now:        time.Now,
	}
}

func (s *analyticsService) window(ctx context.Context, patientId string, days int) ([]analytics.Reading, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findPatient(ctx, uow, patientId); err != nil {
		return nil, err
	}
	readings, err := recentReadings(ctx, uow, patientId, days, s.now())
	if err != nil {
		return nil, err
	}
	return toAnalyticsReadings(readings), nil
}

func (s *analyticsService) Stats(ctx context.Context, patientId string, days int) (*dto.StatsResponse, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	readings, err := s.window(ctx, patientId, days)
	if err != nil {
		return nil, err
	}
	stats, err := analytics.CalculateStats(readings)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{PatientId: patientId, Days: days, Stats: stats}, nil
}

func (s *analyticsService) Trends(ctx context.Context, patientId string, days int) (*dto.TrendsResponse, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	readings, err := s.window(ctx, patientId, days)
	if err != nil {
		return nil, err
	}
	report, err := analytics.AnalyzeTrends(readings)
	if err != nil {
		return nil, err
	}
	return &dto.TrendsResponse{PatientId: patientId, Days: days, TrendReport: report}, nil
}

func (s *analyticsService) Alerts(ctx context.Context, patientId string) (*dto.AlertsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}

	latest, err := latestReading(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &dto.AlertsResponse{PatientId: patientId, Status: alertStatusNoData, Alerts: []analytics.Alert{}}, nil
	}

	alerts := analytics.CheckAlerts(latest.HeartRate, latest.HRV, patientBaseline(patient), s.thresholds)
	return &dto.AlertsResponse{
		PatientId:  patientId,
		RecordedAt: &latest.RecordedAt,
		CurrentHR:  &latest.HeartRate,
		CurrentHRV: &latest.HRV,
		Alerts:     alerts,
		AlertCount: len(alerts),
	}, nil
}

// BaselineComparison averages the last ComparisonWindowDays of readings.
func (s *analyticsService) BaselineComparison(ctx context.Context, patientId string) (*dto.BaselineComparisonResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}
	baseline := patientBaseline(patient)
	if !baseline.Valid() {
		return nil, analytics.ErrNoBaseline
	}

	readings, err := recentReadings(ctx, uow, patientId, analytics.ComparisonWindowDays, s.now())
	if err != nil {
		return nil, err
	}
	comparison, err := analytics.CompareToBaseline(toAnalyticsReadings(readings), baseline)
	if err != nil {
		return nil, err
	}
	return &dto.BaselineComparisonResponse{PatientId: patientId, Comparison: comparison}, nil
}

// Risk scores the latest reading against the baseline and the trend of the
// preceding days.
func (s *analyticsService) Risk(ctx context.Context, patientId string, days int) (*dto.RiskResponse, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, patientId)
	if err != nil {
		return nil, err
	}

	history, err := recentReadings(ctx, uow, patientId, days, s.now())
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNoVitals
	}

	readings := toAnalyticsReadings(history)
	current := readings[len(readings)-1]
	assessment := analytics.AssessRisk(current, patientBaseline(patient), readings)
	return &dto.RiskResponse{
		PatientId:          patientId,
		ReadingsAnalyzed:   len(readings),
		RiskAssessment:     assessment,
		PatientExplanation: resilience.PatientExplanation(resilience.RiskLevel(assessment.Level)),
	}, nil
}
