package entity

import (
	"time"

	"github.com/oksasatya/buytoro/pkg/pricing"
)

const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

type Product struct {
	ID            string
	Name          string
	Brand         string
	Category      string
	Description   string
	Price         float64
	DiscountPrice *float64
	Images        []string
	CountInStock  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePrice is what a customer pays per unit.
func (p *Product) EffectivePrice() float64 {
	return pricing.EffectivePrice(p.Price, p.DiscountPrice)
}

// Status is derived from the stock counter and never stored.
func (p *Product) Status() string {
	if p.CountInStock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

// PrimaryImage is the image captured into order line items.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
