package postgres

import (
	"context"
	"fmt"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BanditRepository struct {
	DB *gorm.DB
}

var _ bandit.PerformanceStore = (*BanditRepository)(nil)

func NewBanditRepository(db *gorm.DB) *BanditRepository {
	return &BanditRepository{DB: db}
}

// ---- Performance ----

func (r *BanditRepository) Get(ctx context.Context, scope string, names []string) (map[string]domain.PerformanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[string]domain.PerformanceRecord, len(names))
	if len(names) == 0 {
		return out, nil
	}

	var rows []domain.PerformanceRecord
	if err := r.DB.WithContext(ctx).
		Where("scope = ? AND algorithm IN ?", scope, names).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query algorithm_performance: %w", err)
	}

	for _, row := range rows {
		out[row.StrategyName] = row
	}
	return out, nil
}

// Increment is a single INSERT ... ON CONFLICT DO UPDATE, so concurrent
// outcomes for the same arm never lose an update.
func (r *BanditRepository) Increment(ctx context.Context, scope, name string, success bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if scope == "" || name == "" {
		return fmt.Errorf("%w: scope and strategy are required", domain.ErrInvalidArgument)
	}

	var successes int64
	if success {
		successes = 1
	}
	now := time.Now()

	row := domain.PerformanceRecord{
		Scope:        scope,
		StrategyName: name,
		Trials:       1,
		Successes:    successes,
		UpdatedAt:    now,
	}

	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "scope"}, {Name: "algorithm"}},
			DoUpdates: clause.Assignments(map[string]any{
				"trials":     gorm.Expr("algorithm_performance.trials + 1"),
				"successes":  gorm.Expr("algorithm_performance.successes + ?", successes),
				"updated_at": now,
			}),
		}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert algorithm_performance: %w", err)
	}

	return nil
}

// ---- Decisions ----

func (r *BanditRepository) AppendDecision(ctx context.Context, d domain.Decision) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&d).Error; err != nil {
		return fmt.Errorf("failed to save decision log: %w", err)
	}

	return nil
}

// RecentDecisions returns the newest decisions for a subject, newest first.
func (r *BanditRepository) RecentDecisions(ctx context.Context, subjectID string, limit int) ([]domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 20
	}

	var rows []domain.Decision
	if err := r.DB.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query decision_logs: %w", err)
	}
	return rows, nil
}
