package models

import (
	"math"
	"time"
)

// Product is one tracked product as the remote service reports it.
// The server is authoritative for every field: records are replaced
// wholesale on load, add and refresh, never patched locally.
type Product struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Name          string     `json:"name"`
	Image         *string    `json:"image"`
	CurrentPrice  float64    `json:"current_price"`
	OriginalPrice *float64   `json:"original_price"`
	Currency      string     `json:"currency"`
	Description   *string    `json:"description"`
	Rating        *float64   `json:"rating"`
	InStock       bool       `json:"in_stock"`
	CreatedAt     *time.Time `json:"created_at"`
	LastUpdated   *time.Time `json:"last_updated"`
}

// DiscountPercent returns the rounded discount share against the original
// price. The second value is false when no original price is known or the
// product is not discounted.
func (p Product) DiscountPercent() (int, bool) {
	if p.OriginalPrice == nil || *p.OriginalPrice <= 0 || p.CurrentPrice >= *p.OriginalPrice {
		return 0, false
	}

	orig := *p.OriginalPrice
	return int(math.Round((orig - p.CurrentPrice) * 100 / orig)), true
}

// PricePoint is one immutable sample of a product's price history,
// produced only by the remote service.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
