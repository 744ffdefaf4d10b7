package mapper

import (
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/model"

	"gorm.io/datatypes"
)

type PatientMapper struct{}

func NewPatientMapper() *PatientMapper {
	return &PatientMapper{}
}

func (m *PatientMapper) ToEntity(p *model.Patient) *entity.Patient {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	conditions := make([]string, len(p.Conditions))
	copy(conditions, p.Conditions)

	return &entity.Patient{
		Id:                p.Id,
		Name:              p.Name,
		Age:               p.Age,
		Conditions:        conditions,
		BaselineHeartRate: p.BaselineHeartRate,
		BaselineHRV:       p.BaselineHRV,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *PatientMapper) ToModel(p *entity.Patient) *model.Patient {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	conditions := datatypes.JSONSlice[string]{}
	conditions = append(conditions, p.Conditions...)

	return &model.Patient{
		Id:                p.Id,
		Name:              p.Name,
		Age:               p.Age,
		Conditions:        conditions,
		BaselineHeartRate: p.BaselineHeartRate,
		BaselineHRV:       p.BaselineHRV,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *PatientMapper) ToEntities(patients []*model.Patient) []*entity.Patient {
	entities := make([]*entity.Patient, len(patients))
	for i, p := range patients {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
