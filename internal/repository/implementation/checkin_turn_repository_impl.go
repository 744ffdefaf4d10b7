package implementation

import (
	"context"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/mapper"
	"pulse-companion-be/internal/model"
	"pulse-companion-be/internal/repository/contract"
	"pulse-companion-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckinTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CheckinTurnMapper
}

func NewCheckinTurnRepository(db *gorm.DB) contract.CheckinTurnRepository {
	return &CheckinTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewCheckinTurnMapper(),
	}
}

func (r *CheckinTurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CheckinTurnRepositoryImpl) Create(ctx context.Context, turn *entity.CheckinTurn) error {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	m := r.mapper.ToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.ToEntity(m)
	return nil
}

func (r *CheckinTurnRepositoryImpl) DeleteByPatientId(ctx context.Context, patientId string) error {
	return r.db.WithContext(ctx).Where("patient_id = ?", patientId).Delete(&model.CheckinTurn{}).Error
}

func (r *CheckinTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CheckinTurn, error) {
	var models []*model.CheckinTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CheckinTurnRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CheckinTurn{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
