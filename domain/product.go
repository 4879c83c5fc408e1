package domain

import (
	"strings"
	"time"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name            TEXT NOT NULL,
//     description     TEXT,
//     category        TEXT,
//     price           NUMERIC NOT NULL,
//     image_url       TEXT,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:text;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;type:text" json:"category"`
	Price       float64   `gorm:"column:price;type:numeric" json:"price"`
	ImageURL    string    `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// Text joins the textual fields used for embedding, skipping empty ones.
func (p Product) Text() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.Category, p.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
