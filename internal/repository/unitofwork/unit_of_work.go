package unitofwork

import (
	"context"

	"pulse-companion-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PatientRepository() contract.PatientRepository
	VitalReadingRepository() contract.VitalReadingRepository
	CheckinTurnRepository() contract.CheckinTurnRepository
}
