package category

import (
	"context"
	"fmt"

	"recoEngine/business/bandit"
	"recoEngine/business/resultcache"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]domain.CategorySummary, error)
}

const categoriesKey = "categories"

type categoryService struct {
	categoryRepo CategoryRepository
	cache        *resultcache.Cache
}

func NewCategoryService(categoryRepo CategoryRepository, cache *resultcache.Cache) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var cached []domain.CategorySummary
	if s.cache.Get(ctx, categoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all categories", "trace_id", bandit.TraceIDFromContext(ctx), "error", err)
		return nil, err
	}

	s.cache.Set(ctx, categoriesKey, categories, resultcache.DefaultTTL)

	return categories, nil
}
