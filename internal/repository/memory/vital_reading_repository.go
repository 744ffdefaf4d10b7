package memory

import (
	"context"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type VitalReadingRepository struct {
	table *table[entity.VitalReading]
}

func (r *VitalReadingRepository) Create(ctx context.Context, reading *entity.VitalReading) error {
	if reading.Id == uuid.Nil {
		reading.Id = uuid.New()
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	r.table.put(reading)
	return nil
}

func (r *VitalReadingRepository) CreateBatch(ctx context.Context, readings []*entity.VitalReading) error {
	for _, reading := range readings {
		if err := r.Create(ctx, reading); err != nil {
			return err
		}
	}
	return nil
}

func (r *VitalReadingRepository) DeleteByPatientId(ctx context.Context, patientId string) error {
	r.table.deleteWhere("patient_id", patientId)
	return nil
}

func (r *VitalReadingRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VitalReading, error) {
	rows, err := r.table.query(specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *VitalReadingRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VitalReading, error) {
	return r.table.query(specs...)
}

func (r *VitalReadingRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.table.query(specs...)
	return int64(len(rows)), err
}
