package strategy

import (
	"context"
	"fmt"

	"recoEngine/business/ranking"
	"recoEngine/domain"
)

// CatalogRepository contract interface
type CatalogRepository interface {
	// MostPopular orders products by view+purchase count.
	MostPopular(ctx context.Context, limit int) ([]domain.Product, error)
	TopViewedCategories(ctx context.Context, subjectID string, limit int) ([]string, error)
	NewestInCategories(ctx context.Context, categories []string, limit int) ([]domain.Product, error)
	Newest(ctx context.Context, limit int) ([]domain.Product, error)
}

const (
	PopularityBased = "popularity_based"
	CategoryBased   = "category_based"
	EmbeddingRank   = "embedding_rank"
)

const (
	popularLimit       = 20
	categoryLimit      = 20
	topCategories      = 3
	embeddingPoolLimit = 50
)

// ---- popularity_based ----

type popularity struct {
	catalog CatalogRepository
}

func NewPopularity(catalog CatalogRepository) Strategy {
	return &popularity{catalog: catalog}
}

func (s *popularity) Name() string       { return PopularityBased }
func (s *popularity) Mode() ranking.Mode { return ranking.ModeWeighted }

func (s *popularity) Fetch(ctx context.Context, _ string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	products, err := s.catalog.MostPopular(ctx, popularLimit)
	if err != nil {
		return nil, fmt.Errorf("popular products: %w", err)
	}
	return products, nil
}

// ---- category_based ----

type category struct {
	catalog CatalogRepository
}

func NewCategory(catalog CatalogRepository) Strategy {
	return &category{catalog: catalog}
}

func (s *category) Name() string       { return CategoryBased }
func (s *category) Mode() ranking.Mode { return ranking.ModeWeighted }

// Fetch returns the newest products in the subject's most viewed categories,
// or the newest products overall when the subject has no history.
func (s *category) Fetch(ctx context.Context, subjectID string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cats, err := s.catalog.TopViewedCategories(ctx, subjectID, topCategories)
	if err != nil {
		return nil, fmt.Errorf("top viewed categories: %w", err)
	}

	if len(cats) > 0 {
		products, err := s.catalog.NewestInCategories(ctx, cats, categoryLimit)
		if err != nil {
			return nil, fmt.Errorf("newest in categories: %w", err)
		}
		if len(products) > 0 {
			return products, nil
		}
	}

	products, err := s.catalog.Newest(ctx, categoryLimit)
	if err != nil {
		return nil, fmt.Errorf("newest products: %w", err)
	}
	return products, nil
}

// ---- embedding_rank ----

type embeddingRank struct {
	catalog CatalogRepository
}

func NewEmbeddingRank(catalog CatalogRepository) Strategy {
	return &embeddingRank{catalog: catalog}
}

func (s *embeddingRank) Name() string       { return EmbeddingRank }
func (s *embeddingRank) Mode() ranking.Mode { return ranking.ModeEmbedding }

func (s *embeddingRank) Fetch(ctx context.Context, _ string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	products, err := s.catalog.Newest(ctx, embeddingPoolLimit)
	if err != nil {
		return nil, fmt.Errorf("newest products: %w", err)
	}
	return products, nil
}

// Defaults registers the built-in strategies in their canonical order.
func Defaults(catalog CatalogRepository) (*Registry, error) {
	return NewRegistry(
		NewPopularity(catalog),
		NewCategory(catalog),
		NewEmbeddingRank(catalog),
	)
}
