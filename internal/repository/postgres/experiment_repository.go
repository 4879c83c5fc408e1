package postgres

import (
	"context"
	"errors"
	"fmt"

	"recoEngine/business/bandit"
	"recoEngine/domain"

	"gorm.io/gorm"
)

type ExperimentRepository struct {
	DB *gorm.DB
}

var _ bandit.ExperimentRepository = (*ExperimentRepository)(nil)

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{DB: db}
}

func (r *ExperimentRepository) FindByName(ctx context.Context, name string) (domain.Experiment, bool, error) {
	var exp domain.Experiment

	err := r.DB.WithContext(ctx).
		Where("name = ?", name).
		First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Experiment{}, false, nil
	}
	if err != nil {
		return domain.Experiment{}, false, fmt.Errorf("failed to query experiments: %w", err)
	}
	return exp, true, nil
}

func (r *ExperimentRepository) Variants(ctx context.Context, experimentID uint64) ([]domain.ExperimentVariant, error) {
	var variants []domain.ExperimentVariant
	if err := r.DB.WithContext(ctx).
		Where("experiment_id = ?", experimentID).
		Order("id ASC").
		Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to query experiment_variants: %w", err)
	}
	return variants, nil
}
