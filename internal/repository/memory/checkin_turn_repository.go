package memory

import (
	"context"
	"time"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CheckinTurnRepository struct {
	table *table[entity.CheckinTurn]
}

func (r *CheckinTurnRepository) Create(ctx context.Context, turn *entity.CheckinTurn) error {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	r.table.put(turn)
	return nil
}

func (r *CheckinTurnRepository) DeleteByPatientId(ctx context.Context, patientId string) error {
	r.table.deleteWhere("patient_id", patientId)
	return nil
}

func (r *CheckinTurnRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CheckinTurn, error) {
	return r.table.query(specs...)
}

func (r *CheckinTurnRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.table.query(specs...)
	return int64(len(rows)), err
}
