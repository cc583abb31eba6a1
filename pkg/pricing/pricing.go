// Package pricing holds the checkout price policy shared by the API server
// and the storefront client.
package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	// FreeShippingThreshold: orders whose items total exceeds this ship free.
	FreeShippingThreshold = 5000
	FlatShippingFee       = 100
)

var taxRate = decimal.RequireFromString("0.02")

// Line is one priced cart/order entry.
type Line struct {
	UnitPrice float64
	Qty       int
}

// Summary is the full price breakdown of an order.
type Summary struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// EffectivePrice is the discount price when one is set, else the list price.
func EffectivePrice(price float64, discountPrice *float64) float64 {
	if discountPrice != nil && *discountPrice > 0 {
		return *discountPrice
	}
	return price
}

// Compute prices a set of lines. Amounts are summed exactly and the tax is
// rounded half away from zero to whole currency units.
func Compute(lines []Line) Summary {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	items = items.Round(2)

	shipping := decimal.NewFromInt(FlatShippingFee)
	if items.GreaterThan(decimal.NewFromInt(FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	tax := items.Mul(taxRate).Round(0)
	total := items.Add(shipping).Add(tax)

	return Summary{
		ItemsPrice:    items.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}

// Consistent reports whether the components add up to the total, to the cent.
func (s Summary) Consistent() bool {
	sum := decimal.NewFromFloat(s.ItemsPrice).
		Add(decimal.NewFromFloat(s.ShippingPrice)).
		Add(decimal.NewFromFloat(s.TaxPrice)).
		Round(2)
	return sum.Equal(decimal.NewFromFloat(s.TotalPrice).Round(2))
}

// Equal compares two summaries to the cent.
func (s Summary) Equal(o Summary) bool {
	eq := func(a, b float64) bool {
		return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
	}
	return eq(s.ItemsPrice, o.ItemsPrice) &&
		eq(s.ShippingPrice, o.ShippingPrice) &&
		eq(s.TaxPrice, o.TaxPrice) &&
		eq(s.TotalPrice, o.TotalPrice)
}
