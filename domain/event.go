package domain

import "time"

// CREATE TABLE public.events (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id     TEXT NOT NULL,
//     product_id  BIGINT NOT NULL REFERENCES products(id),
//     event_type  TEXT NOT NULL,
//     timestamp   TIMESTAMPTZ DEFAULT NOW()
// );

const (
	EventView     = "view"
	EventPurchase = "purchase"
	EventCartAdd  = "cart_add"
	EventWishlist = "wishlist"
)

type Event struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;not null;index" json:"product_id"`
	EventType string    `gorm:"column:event_type;not null" json:"event_type"`
	Timestamp time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (Event) TableName() string {
	return "events"
}

// IsValidEventType reports whether t is one of the tracked interaction types.
func IsValidEventType(t string) bool {
	switch t {
	case EventView, EventPurchase, EventCartAdd, EventWishlist:
		return true
	}
	return false
}

// UserEvent is an event joined with the product it refers to.
type UserEvent struct {
	Event
	ProductName     string `gorm:"column:product_name" json:"product_name"`
	ProductCategory string `gorm:"column:product_category" json:"product_category"`
}
