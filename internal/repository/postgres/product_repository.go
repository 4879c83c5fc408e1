package postgres

import (
	"context"
	"errors"
	"fmt"

	"recoEngine/business/ranking"
	"recoEngine/business/strategy"
	"recoEngine/domain"

	"gorm.io/gorm"
)

// interaction types that count towards popularity
var popularityEvents = []string{domain.EventView, domain.EventPurchase}

type ProductRepository struct {
	DB *gorm.DB
}

var (
	_ strategy.CatalogRepository = (*ProductRepository)(nil)
	_ ranking.SignalSource       = (*ProductRepository)(nil)
)

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []domain.Product
	if err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// ---- Catalog ----

func (r *ProductRepository) interactionCounts() *gorm.DB {
	return r.DB.Model(&domain.Event{}).
		Select("product_id, COUNT(*) AS interactions").
		Where("event_type IN ?", popularityEvents).
		Group("product_id")
}

func (r *ProductRepository) MostPopular(ctx context.Context, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).
		Table("products AS p").
		Select("p.*").
		Joins("JOIN (?) AS e ON e.product_id = p.id", r.interactionCounts()).
		Order("e.interactions DESC, p.id ASC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query popular products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) TopViewedCategories(ctx context.Context, subjectID string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []string
	if err := r.DB.WithContext(ctx).
		Table("events AS e").
		Joins("JOIN products AS p ON p.id = e.product_id").
		Where("e.user_id = ? AND e.event_type = ? AND p.category <> ''", subjectID, domain.EventView).
		Group("p.category").
		Order("COUNT(*) DESC, p.category ASC").
		Limit(limit).
		Pluck("p.category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to query viewed categories: %w", err)
	}

	return categories, nil
}

func (r *ProductRepository) NewestInCategories(ctx context.Context, categories []string, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(categories) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).
		Where("category IN ?", categories).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Newest(ctx context.Context, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query newest products: %w", err)
	}

	return products, nil
}

// ---- Ranking signals ----

type interactionRow struct {
	ProductID    uint64 `gorm:"column:product_id"`
	Interactions int64  `gorm:"column:interactions"`
}

func (r *ProductRepository) InteractionCounts(ctx context.Context, productIDs []uint64) (map[uint64]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[uint64]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []interactionRow
	if err := r.interactionCounts().
		WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}

	for _, row := range rows {
		out[row.ProductID] = row.Interactions
	}
	return out, nil
}

// RecentCategories looks at the subject's last `limit` events and returns
// the category of each view among them, newest first. Duplicates are kept.
func (r *ProductRepository) RecentCategories(ctx context.Context, subjectID string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	recent := r.DB.
		Table("events").
		Select("product_id, event_type, timestamp").
		Where("user_id = ?", subjectID).
		Order("timestamp DESC").
		Limit(limit)

	var categories []string
	if err := r.DB.WithContext(ctx).
		Table("(?) AS e", recent).
		Joins("JOIN products AS p ON p.id = e.product_id").
		Where("e.event_type = ?", domain.EventView).
		Order("e.timestamp DESC").
		Pluck("p.category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent categories: %w", err)
	}

	return categories, nil
}
