package implementation

import (
	"context"
	"errors"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/mapper"
	"notes-intelligence-be/internal/model"
	"notes-intelligence-be/internal/repository/contract"

	"gorm.io/gorm"
)

type StyleProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StyleProfileMapper
}

func NewStyleProfileRepository(db *gorm.DB) contract.StyleProfileRepository {
	return &StyleProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewStyleProfileMapper(),
	}
}

func (r *StyleProfileRepositoryImpl) FindCurrent(ctx context.Context) (*entity.StyleProfile, error) {
	var m model.StyleProfile
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *StyleProfileRepositoryImpl) Replace(ctx context.Context, p *entity.StyleProfile) error {
	m, err := r.mapper.ToModel(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.StyleProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		saved, err := r.mapper.ToEntity(m)
		if err != nil {
			return err
		}
		*p = *saved
		return nil
	})
}
