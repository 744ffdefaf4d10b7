package mapper

import (
	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/model"
)

type VitalReadingMapper struct{}

func NewVitalReadingMapper() *VitalReadingMapper {
	return &VitalReadingMapper{}
}

func (m *VitalReadingMapper) ToEntity(v *model.VitalReading) *entity.VitalReading {
	if v == nil {
		return nil
	}
	return &entity.VitalReading{
		Id:           v.Id,
		PatientId:    v.PatientId,
		RecordedAt:   v.RecordedAt,
		HeartRate:    v.HeartRate,
		HRV:          v.HRV,
		QualityScore: v.QualityScore,
		Source:       v.Source,
		CreatedAt:    v.CreatedAt,
	}
}

func (m *VitalReadingMapper) ToModel(v *entity.VitalReading) *model.VitalReading {
	if v == nil {
		return nil
	}
	return &model.VitalReading{
		Id:           v.Id,
		PatientId:    v.PatientId,
		RecordedAt:   v.RecordedAt,
		HeartRate:    v.HeartRate,
		HRV:          v.HRV,
		QualityScore: v.QualityScore,
		Source:       v.Source,
		CreatedAt:    v.CreatedAt,
	}
}

func (m *VitalReadingMapper) ToEntities(readings []*model.VitalReading) []*entity.VitalReading {
	entities := make([]*entity.VitalReading, len(readings))
	for i, v := range readings {
		entities[i] = m.ToEntity(v)
	}
	return entities
}

func (m *VitalReadingMapper) ToModels(readings []*entity.VitalReading) []*model.VitalReading {
	models := make([]*model.VitalReading, len(readings))
	for i, v := range readings {
		models[i] = m.ToModel(v)
	}
	return models
}
