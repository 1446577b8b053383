package domain

import "math"

// Promo is a discount rule for booking payments.
type Promo struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Discount    float64 `json:"discount"`
	MaxDiscount float64 `json:"max_discount"`
	Info        string  `json:"info"`
	MinPurchase float64 `json:"min_purchase"`
}

// IsValid reports whether the amount meets the minimum-purchase gate.
func (p *Promo) IsValid(amount float64) bool {
	return amount >= p.MinPurchase
}

// DiscountedPrice computes the price after applying the promo to the given
// pre-discount total. MaxDiscount caps the final price, not the discount
// amount.
func (p *Promo) DiscountedPrice(total float64) float64 {
	return math.Min(total*(1-p.Discount), p.MaxDiscount)
}
