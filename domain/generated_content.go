package domain

import "time"

const (
	ContentDescription  = "description"
	ContentPersonalized = "personalized"
)

type GeneratedContent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint64    `gorm:"column:product_id;not null;index:idx_generated_content_product_type" json:"product_id"`
	Type      string    `gorm:"column:type;not null;index:idx_generated_content_product_type" json:"type"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GeneratedContent) TableName() string {
	return "generated_content"
}
