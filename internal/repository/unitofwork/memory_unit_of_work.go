package unitofwork

import (
	"context"
	"fmt"

	"pulse-companion-be/internal/repository/contract"
	"pulse-companion-be/internal/repository/memory"
)

// MemoryUnitOfWork serves repositories backed by a memory.Store. Writes are
// applied immediately, so Rollback cannot undo them.
type MemoryUnitOfWork struct {
	store  *memory.Store
	active bool
}

func (u *MemoryUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.active = true
	return nil
}

func (u *MemoryUnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	return nil
}

func (u *MemoryUnitOfWork) Rollback() error {
	if !u.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *MemoryUnitOfWork) PatientRepository() contract.PatientRepository {
	return u.store.PatientRepository()
}

func (u *MemoryUnitOfWork) VitalReadingRepository() contract.VitalReadingRepository {
	return u.store.VitalReadingRepository()
}

func (u *MemoryUnitOfWork) CheckinTurnRepository() contract.CheckinTurnRepository {
	return u.store.CheckinTurnRepository()
}
