package copywriter

import (
	"context"
	"fmt"

	"recoEngine/business/bandit"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

// ContentRepository contract interface
type ContentRepository interface {
	FindContent(ctx context.Context, productID uint64, contentType string) (domain.GeneratedContent, bool, error)
	SaveContent(ctx context.Context, content *domain.GeneratedContent) error
}

// StoredGenerator serves previously generated descriptions and persists
// newly generated ones.
type StoredGenerator struct {
	repo ContentRepository
	next Generator
}

func NewStoredGenerator(repo ContentRepository, next Generator) *StoredGenerator {
	return &StoredGenerator{repo: repo, next: next}
}

func (g *StoredGenerator) Generate(ctx context.Context, p domain.Product) (string, error) {
	tid := bandit.TraceIDFromContext(ctx)

	existing, ok, err := g.repo.FindContent(ctx, p.ID, domain.ContentDescription)
	if err != nil {
		logger.Warn("generated_content_lookup_failed", "trace_id", tid, "product_id", p.ID, "error", err)
	} else if ok && existing.Content != "" {
		return existing.Content, nil
	}

	text, err := g.next.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}

	content := &domain.GeneratedContent{
		ProductID: p.ID,
		Type:      domain.ContentDescription,
		Content:   text,
	}
	if err := g.repo.SaveContent(ctx, content); err != nil {
		logger.Warn("generated_content_save_failed", "trace_id", tid, "product_id", p.ID, "error", err)
	}

	return text, nil
}

// Personalize is subject specific, so it is never stored.
func (g *StoredGenerator) Personalize(ctx context.Context, subjectID string, p domain.Product) (string, error) {
	if pz, ok := g.next.(Personalizer); ok {
		return pz.Personalize(ctx, subjectID, p)
	}
	return FallbackPitch(p), nil
}
