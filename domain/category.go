package domain

// CategorySummary is derived from products.category; there is no category table.
type CategorySummary struct {
	Category     string `gorm:"column:category" json:"category"`
	ProductCount int64  `gorm:"column:product_count" json:"product_count"`
	Interactions int64  `gorm:"column:interactions" json:"interactions"`
}
