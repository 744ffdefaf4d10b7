package service

import (
	"context"
	"time"

	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/cache"
	"pulse-companion-be/internal/repository/memory"
	"pulse-companion-be/internal/repository/specification"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/pkg/analytics"
)

type IPatientService interface {
	Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	Show(ctx context.Context, id string) (*dto.PatientResponse, error)
	List(ctx context.Context) (*dto.ListPatientsResponse, error)
	Update(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	Delete(ctx context.Context, id string) (*dto.DeletePatientResponse, error)
}

type patientService struct {
	uowFactory    unitofwork.RepositoryFactory
	conversations *memory.ConversationRepository
	live          cache.LiveVitalsCache
	logger        logger.ILogger
}

func NewPatientService(
	uowFactory unitofwork.RepositoryFactory,
	conversations *memory.ConversationRepository,
	live cache.LiveVitalsCache,
	logger logger.ILogger,
) IPatientService {
	return &patientService{
		uowFactory:    uowFactory,
		conversations: conversations,
		live:          live,
		logger:        logger,
	}
}

func (s *patientService) Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.PatientRepository().FindOne(ctx, specification.ByPatientKey{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPatientExists
	}

	patient := entity.Patient{
		Id:                req.Id,
		Name:              req.Name,
		Age:               req.Age,
		Conditions:        req.Conditions,
		BaselineHeartRate: req.BaselineHeartRate,
		BaselineHRV:       req.BaselineHRV,
		CreatedAt:         time.Now(),
	}
	if patient.Conditions == nil {
		patient.Conditions = []string{}
	}

	if err := uow.PatientRepository().Create(ctx, &patient); err != nil {
		return nil, err
	}

	s.logger.Info("PATIENT", "Patient created", map[string]interface{}{"patient_id": patient.Id})
	return toPatientResponse(&patient), nil
}

func (s *patientService) Show(ctx context.Context, id string) (*dto.PatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

func (s *patientService) List(ctx context.Context) (*dto.ListPatientsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patients, err := uow.PatientRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}

	res := &dto.ListPatientsResponse{Patients: make([]*dto.PatientResponse, 0, len(patients))}
	for _, p := range patients {
		res.Patients = append(res.Patients, toPatientResponse(p))
	}
	res.Count = len(res.Patients)
	return res, nil
}

func (s *patientService) Update(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patient, err := findPatient(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		patient.Name = *req.Name
		changed = true
	}
	if req.Age != nil {
		patient.Age = *req.Age
		changed = true
	}
	if req.Conditions != nil {
		patient.Conditions = req.Conditions
		changed = true
	}
	if req.BaselineHeartRate != nil {
		patient.BaselineHeartRate = req.BaselineHeartRate
		changed = true
	}
	if req.BaselineHRV != nil {
		patient.BaselineHRV = req.BaselineHRV
		changed = true
	}

	if changed {
		if err := uow.PatientRepository().Update(ctx, patient); err != nil {
			return nil, err
		}
	}
	return toPatientResponse(patient), nil
}

// Delete removes the patient together with their vitals and check-in history.
func (s *patientService) Delete(ctx context.Context, id string) (*dto.DeletePatientResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findPatient(ctx, uow, id); err != nil {
		return nil, err
	}

	vitalsCount, err := uow.VitalReadingRepository().Count(ctx, specification.ByPatientID{PatientID: id})
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.VitalReadingRepository().DeleteByPatientId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.CheckinTurnRepository().DeleteByPatientId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.PatientRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.conversations != nil {
		s.conversations.Delete(id)
	}
	if s.live != nil {
		if err := s.live.Delete(ctx, id); err != nil {
			s.logger.Warn("PATIENT", "Failed to clear live vitals", map[string]interface{}{"patient_id": id, "error": err.Error()})
		}
	}

	s.logger.Info("PATIENT", "Patient deleted", map[string]interface{}{"patient_id": id, "vitals_deleted": vitalsCount})
	return &dto.DeletePatientResponse{Id: id, VitalsDeleted: vitalsCount}, nil
}

func findPatient(ctx context.Context, uow unitofwork.UnitOfWork, id string) (*entity.Patient, error) {
	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByPatientKey{ID: id})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}

func patientBaseline(p *entity.Patient) *analytics.Baseline {
	if p == nil || p.BaselineHeartRate == nil || p.BaselineHRV == nil {
		return nil
	}
	return &analytics.Baseline{HeartRate: *p.BaselineHeartRate, HRV: *p.BaselineHRV}
}

func toPatientResponse(p *entity.Patient) *dto.PatientResponse {
	conditions := p.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	return &dto.PatientResponse{
		Id:         p.Id,
		Name:       p.Name,
		Age:        p.Age,
		Conditions: conditions,
		Baseline: dto.PatientBaseline{
			HeartRate: p.BaselineHeartRate,
			HRV:       p.BaselineHRV,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
