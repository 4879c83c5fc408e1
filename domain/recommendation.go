package domain

import "time"

// RecommendationContext is the client supplied `context` query parameter.
type RecommendationContext struct {
	ViewedProducts []uint64 `json:"viewedProducts,omitempty"`
	SessionText    string   `json:"sessionText,omitempty"`
	Query          string   `json:"query,omitempty"`
	Platform       string   `json:"platform,omitempty"`
}

// HasViewed reports whether productID was already surfaced in this session.
func (c RecommendationContext) HasViewed(productID uint64) bool {
	for _, id := range c.ViewedProducts {
		if id == productID {
			return true
		}
	}
	return false
}

type ScoredProduct struct {
	Product
	Score                      float64 `json:"score"`
	EnhancedDescription        string  `json:"enhanced_description,omitempty"`
	PersonalizedRecommendation string  `json:"personalized_recommendation,omitempty"`
}

type RecommendationResult struct {
	SubjectID   string          `json:"subject_id"`
	Strategy    string          `json:"strategy"`
	Mode        DecisionMode    `json:"mode"`
	Items       []ScoredProduct `json:"items"`
	GeneratedAt time.Time       `json:"generated_at"`
	CacheHit    bool            `json:"cache_hit"`
}

type Feedback struct {
	SubjectID     string `json:"subjectId" validate:"required"`
	Strategy      string `json:"strategy" validate:"required"`
	WasSuccessful bool   `json:"wasSuccessful"`
}

// EmbeddingVector is L2-normalized, or all zeros when the source text had no tokens.
type EmbeddingVector []float64
