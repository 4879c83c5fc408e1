package postgres

import (
	"context"
	"fmt"

	"recoEngine/business/category"
	"recoEngine/domain"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

var _ category.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

// FindAll summarizes every category with its product and view+purchase counts,
// most interacted first.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.CategorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []domain.CategorySummary
	err := r.DB.WithContext(ctx).
		Table("products AS p").
		Select(`p.category AS category,
			COUNT(DISTINCT p.id) AS product_count,
			COUNT(e.id) AS interactions`).
		Joins("LEFT JOIN events AS e ON e.product_id = p.id AND e.event_type IN ?",
			[]string{domain.EventView, domain.EventPurchase}).
		Group("p.category").
		Order("interactions DESC, category ASC").
		Scan(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	return categories, nil
}
