package contract

import (
	"context"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/repository/specification"
)

type CheckinTurnRepository interface {
	Create(ctx context.Context, turn *entity.CheckinTurn) error
	DeleteByPatientId(ctx context.Context, patientId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CheckinTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
