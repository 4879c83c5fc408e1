package event

import (
	"context"
	"fmt"

	"recoEngine/business/bandit"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

// EventRepository contract interface
type EventRepository interface {
	SaveEvent(ctx context.Context, event *domain.Event) error
	ListByUser(ctx context.Context, userID, eventType string, limit int) ([]domain.UserEvent, error)
}

type eventService struct {
	eventRepo EventRepository
}

func NewEventService(eventRepo EventRepository) *eventService {
	return &eventService{eventRepo: eventRepo}
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// TrackEvent records an interaction. Events feed popularity, category
// relevance and the category strategy.
func (s *eventService) TrackEvent(ctx context.Context, userID string, productID uint64, eventType string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if userID == "" || productID == 0 {
		return nil, fmt.Errorf("%w: user id and product id are required", domain.ErrInvalidArgument)
	}
	if !domain.IsValidEventType(eventType) {
		return nil, fmt.Errorf("%w: invalid event type %q", domain.ErrInvalidArgument, eventType)
	}

	ev := &domain.Event{
		UserID:    userID,
		ProductID: productID,
		EventType: eventType,
	}
	if err := s.eventRepo.SaveEvent(ctx, ev); err != nil {
		logger.Error("failed to track event", "trace_id", bandit.TraceIDFromContext(ctx), "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	logger.Debug("event_tracked",
		"trace_id", bandit.TraceIDFromContext(ctx),
		"user_id", userID,
		"product_id", productID,
		"event_type", eventType,
	)
	return ev, nil
}

func (s *eventService) UserEvents(ctx context.Context, userID, eventType string, limit int) ([]domain.UserEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	if eventType != "" && !domain.IsValidEventType(eventType) {
		return nil, fmt.Errorf("%w: invalid event type %q", domain.ErrInvalidArgument, eventType)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return s.eventRepo.ListByUser(ctx, userID, eventType, limit)
}
