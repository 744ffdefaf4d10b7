package memory

import (
	"context"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/specification"
)

type PatientRepository struct {
	table *table[entity.Patient]
}

func (r *PatientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now()
	}
	r.table.put(patient)
	return nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *entity.Patient) error {
	now := time.Now()
	patient.UpdatedAt = &now
	r.table.put(patient)
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	r.table.delete(id)
	return nil
}

func (r *PatientRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Patient, error) {
	rows, err := r.table.query(specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *PatientRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Patient, error) {
	return r.table.query(specs...)
}

func (r *PatientRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.table.query(specs...)
	return int64(len(rows)), err
}
