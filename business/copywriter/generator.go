// Package copywriter produces the marketing copy attached to recommended
// products. Every generator is best-effort: callers fall back to the
// product's own description when Generate fails.
package copywriter

import (
	"context"
	"fmt"
	"strings"

	"recoEngine/domain"
)

type Generator interface {
	Generate(ctx context.Context, product domain.Product) (string, error)
}

// Personalizer writes the short pitch shown next to an item for one subject.
// Generators may implement it; callers use FallbackPitch when they don't.
type Personalizer interface {
	Personalize(ctx context.Context, subjectID string, product domain.Product) (string, error)
}

var bannedWords = map[string]struct{}{
	"scam":     {},
	"illegal":  {},
	"hate":     {},
	"violence": {},
}

const redacted = "[redacted]"

// Redact replaces banned words, compared case-insensitively per
// space-separated token, with "[redacted]".
func Redact(text string) string {
	words := strings.Split(text, " ")
	for i, w := range words {
		if _, banned := bannedWords[strings.ToLower(w)]; banned {
			words[i] = redacted
		}
	}
	return strings.Join(words, " ")
}

// TemplateGenerator renders offline copy from the product fields alone.
type TemplateGenerator struct {
	Persona string
}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{Persona: "smart shopper"}
}

func (g *TemplateGenerator) Generate(ctx context.Context, p domain.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	desc := p.Description
	if desc == "" {
		desc = "Great product"
	}

	interest := p.Category
	if interest == "" {
		interest = "trending"
	}

	persona := g.Persona
	if persona == "" {
		persona = "smart shopper"
	}

	return fmt.Sprintf("%s: tailored for %s. Ideal if you love %s. %s Now at $%.2f.",
		p.Name, persona, interest, Redact(desc), p.Price), nil
}

func (g *TemplateGenerator) Personalize(ctx context.Context, subjectID string, p domain.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}
	return FallbackPitch(p), nil
}

// FallbackPitch is the fixed one-line recommendation used when no
// personalizer answers in time.
func FallbackPitch(p domain.Product) string {
	return fmt.Sprintf("Check out %s - a great product in our %s collection!", p.Name, p.Category)
}
