package implementation

import (
	"context"
	"errors"

	"pulse-companion-be/internal/entity"
	"pulse-companion-be/internal/mapper"
	"pulse-companion-be/internal/model"
	"pulse-companion-be/internal/repository/contract"
	"pulse-companion-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const vitalBatchSize = 200

type VitalReadingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VitalReadingMapper
}

func NewVitalReadingRepository(db *gorm.DB) contract.VitalReadingRepository {
	return &VitalReadingRepositoryImpl{
		db:     db,
		mapper: mapper.NewVitalReadingMapper(),
	}
}

func (r *VitalReadingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VitalReadingRepositoryImpl) Create(ctx context.Context, reading *entity.VitalReading) error {
	if reading.Id == uuid.Nil {
		reading.Id = uuid.New()
	}
	m := r.mapper.ToModel(reading)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*reading = *r.mapper.ToEntity(m)
	return nil
}

func (r *VitalReadingRepositoryImpl) CreateBatch(ctx context.Context, readings []*entity.VitalReading) error {
	if len(readings) == 0 {
		return nil
	}
	for _, reading := range readings {
		if reading.Id == uuid.Nil {
			reading.Id = uuid.New()
		}
	}
	models := r.mapper.ToModels(readings)
	if err := r.db.WithContext(ctx).CreateInBatches(models, vitalBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		*readings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *VitalReadingRepositoryImpl) DeleteByPatientId(ctx context.Context, patientId string) error {
	return r.db.WithContext(ctx).Where("patient_id = ?", patientId).Delete(&model.VitalReading{}).Error
}

func (r *VitalReadingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VitalReading, error) {
	var m model.VitalReading
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	// Take keeps the caller's ordering; First would append a primary key order.
	if err := query.Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VitalReadingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VitalReading, error) {
	var models []*model.VitalReading
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *VitalReadingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.VitalReading{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
