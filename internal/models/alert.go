package models

import "time"

// Alert is a user-defined price threshold tied to exactly one product.
// Alerts are created and deleted individually, never edited in place.
type Alert struct {
	ID          int64      `json:"id"`
	ProductID   int64      `json:"product_id"`
	TargetPrice float64    `json:"target_price"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   *time.Time `json:"created_at"`
}
