package postgres

import (
	"context"
	"errors"
	"fmt"

	"recoEngine/business/copywriter"
	"recoEngine/domain"

	"gorm.io/gorm"
)

type GeneratedContentRepository struct {
	DB *gorm.DB
}

var _ copywriter.ContentRepository = (*GeneratedContentRepository)(nil)

func NewGeneratedContentRepository(db *gorm.DB) *GeneratedContentRepository {
	return &GeneratedContentRepository{
		DB: db,
	}
}

// FindContent returns the newest stored content of the given type.
func (r *GeneratedContentRepository) FindContent(
	ctx context.Context,
	productID uint64,
	contentType string,
) (domain.GeneratedContent, bool, error) {

	if err := ctx.Err(); err != nil {
		return domain.GeneratedContent{}, false, fmt.Errorf("context error: %w", err)
	}

	var row domain.GeneratedContent
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND type = ?", productID, contentType).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.GeneratedContent{}, false, nil
	}
	if err != nil {
		return domain.GeneratedContent{}, false, fmt.Errorf("failed to query generated_content: %w", err)
	}

	return row, true, nil
}

func (r *GeneratedContentRepository) SaveContent(ctx context.Context, content *domain.GeneratedContent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(content).Error; err != nil {
		return fmt.Errorf("failed to save generated_content: %w", err)
	}
	return nil
}
