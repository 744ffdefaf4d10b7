package contract

import (
	"context"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/specification"
)

type VitalReadingRepository interface {
	Create(ctx context.Context, reading *entity.VitalReading) error
	CreateBatch(ctx context.Context, readings []*entity.VitalReading) error
	DeleteByPatientId(ctx context.Context, patientId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VitalReading, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VitalReading, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
