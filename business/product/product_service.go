package product

import (
	"context"
	"fmt"

	"recoEngine/business/bandit"
	"recoEngine/business/resultcache"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error)
}

type productService struct {
	productRepo ProductRepository
	cache       *resultcache.Cache
}

func NewProductService(productRepo ProductRepository, cache *resultcache.Cache) *productService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
	}
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *productService) ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset cannot be negative", domain.ErrInvalidArgument)
	}

	products, err := s.productRepo.List(ctx, category, limit, offset)
	if err != nil {
		logger.Error("failed to list products", "trace_id", bandit.TraceIDFromContext(ctx), "error", err)
		return nil, err
	}

	return products, nil
}

// GetProductByID reads through the result cache (product:<id>).
func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: invalid product id", domain.ErrInvalidArgument)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	key := resultcache.ProductKey(id)

	var cached domain.Product
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Warn("failed to find product by id", "trace_id", bandit.TraceIDFromContext(ctx), "product_id", id, "error", err)
		return nil, err
	}

	s.cache.Set(ctx, key, product, resultcache.DefaultTTL)

	return &product, nil
}
