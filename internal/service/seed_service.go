package service

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/unitofwork"
)

const (
	DemoPatientId    = "maria_001"
	DemoHistoryDays  = 30
	DemoDecliningDay = 5
)

type SeedResult struct {
	PatientId string
	Normal    int
	Declining int
}

type ISeedService interface {
	// SeedDemo replaces the demo patient with a fresh month of readings:
	// stable vitals followed by a short decompensation.
	SeedDemo(ctx context.Context) (*SeedResult, error)
}

type seedService struct {
	uowFactory unitofwork.RepositoryFactory
	rng        *rand.Rand
	logger     logger.ILogger
	now        func() time.Time
}

func NewSeedService(uowFactory unitofwork.RepositoryFactory, rng *rand.Rand, logger logger.ILogger) ISeedService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &seedService{
		uowFactory: uowFactory,
		rng:        rng,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *seedService) SeedDemo(ctx context.Context) (*SeedResult, error) {
	now := s.now().UTC()
	patient := DemoPatient(now)

	normal := s.normalReadings(now, DemoHistoryDays, DemoDecliningDay)
	declining := decliningReadings(now, DemoDecliningDay)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.VitalReadingRepository().DeleteByPatientId(ctx, patient.Id); err != nil {
		return nil, err
	}
	if err := uow.CheckinTurnRepository().DeleteByPatientId(ctx, patient.Id); err != nil {
		return nil, err
	}
	if err := uow.PatientRepository().Delete(ctx, patient.Id); err != nil {
		return nil, err
	}
	if err := uow.PatientRepository().Create(ctx, patient); err != nil {
		return nil, err
	}
	if err := uow.VitalReadingRepository().CreateBatch(ctx, append(normal, declining...)); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("SEED", "Demo patient seeded", map[string]interface{}{
		"patient_id": patient.Id,
		"normal":     len(normal),
		"declining":  len(declining),
	})
	return &SeedResult{PatientId: patient.Id, Normal: len(normal), Declining: len(declining)}, nil
}

func DemoPatient(now time.Time) *entity.Patient {
	hr, hrv := 68.0, 45.0
	return &entity.Patient{
		Id:                DemoPatientId,
		Name:              "Maria Gonzalez",
		Age:               67,
		Conditions:        []string{"Heart Failure", "Type 2 Diabetes"},
		BaselineHeartRate: &hr,
		BaselineHRV:       &hrv,
		CreatedAt:         now,
	}
}

// normalReadings covers days-skip mornings around the 68/45 baseline.
func (s *seedService) normalReadings(now time.Time, days, skip int) []*entity.VitalReading {
	start := now.AddDate(0, 0, -days)
	out := make([]*entity.VitalReading, 0, days-skip)
	for day := 0; day < days-skip; day++ {
		out = append(out, &entity.VitalReading{
			PatientId:    DemoPatientId,
			RecordedAt:   start.AddDate(0, 0, day).Add(8 * time.Hour),
			HeartRate:    float64(64 + s.rng.IntN(9)),
			HRV:          float64(41 + s.rng.IntN(9)),
			QualityScore: math.Round((0.85+s.rng.Float64()*0.10)*100) / 100,
			Source:       entity.VitalSourceSeed,
		})
	}
	return out
}

// decliningReadings worsens by a fixed step each morning: HR 68 to 89, HRV 45 to 28.
func decliningReadings(now time.Time, days int) []*entity.VitalReading {
	start := now.AddDate(0, 0, -days)
	out := make([]*entity.VitalReading, 0, days)
	for day := 0; day < days; day++ {
		out = append(out, &entity.VitalReading{
			PatientId:    DemoPatientId,
			RecordedAt:   start.AddDate(0, 0, day).Add(8 * time.Hour),
			HeartRate:    float64(68 + int(float64(day)*5.25)),
			HRV:          float64(45 - int(float64(day)*4.25)),
			QualityScore: 0.88,
			Source:       entity.VitalSourceSeed,
		})
	}
	return out
}
