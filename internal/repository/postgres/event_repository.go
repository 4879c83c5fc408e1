package postgres

import (
	"context"
	"fmt"

	"recoEngine/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) SaveEvent(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

func (r *EventRepository) ListByUser(ctx context.Context, userID, eventType string, limit int) ([]domain.UserEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Table("events AS e").
		Select("e.*, p.name AS product_name, p.category AS product_category").
		Joins("JOIN products AS p ON p.id = e.product_id").
		Where("e.user_id = ?", userID)

	if eventType != "" {
		q = q.Where("e.event_type = ?", eventType)
	}

	var rows []domain.UserEvent
	if err := q.Order("e.timestamp DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query user events: %w", err)
	}

	return rows, nil
}
