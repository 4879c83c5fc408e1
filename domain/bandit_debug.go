package domain

type ScoreBreakdown struct {
	ProductID  uint64  `json:"product_id"`
	Popularity float64 `json:"popularity"` // min(1, interactions/100)
	Relevance  float64 `json:"relevance"`  // 1.0 or 0.2 baseline
	Recency    float64 `json:"recency"`    // 1 - age/30d
	Diversity  float64 `json:"diversity"`  // 0.1 if already viewed
	Similarity float64 `json:"similarity"` // embedding mode only
	FinalScore float64 `json:"final_score"`
}
