package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestEffectivePrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1200.0, EffectivePrice(1200, nil))
	assert.Equal(t, 1200.0, EffectivePrice(1200, ptr(0)))
	assert.Equal(t, 999.0, EffectivePrice(1200, ptr(999)))
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []Line
		want  Summary
	}{
		{
			name:  "below threshold pays flat shipping",
			lines: []Line{{UnitPrice: 1000, Qty: 1}},
			want:  Summary{ItemsPrice: 1000, ShippingPrice: 100, TaxPrice: 20, TotalPrice: 1120},
		},
		{
			name:  "exactly threshold still pays shipping",
			lines: []Line{{UnitPrice: 2500, Qty: 2}},
			want:  Summary{ItemsPrice: 5000, ShippingPrice: 100, TaxPrice: 100, TotalPrice: 5200},
		},
		{
			name:  "above threshold ships free",
			lines: []Line{{UnitPrice: 5000.5, Qty: 1}},
			want:  Summary{ItemsPrice: 5000.5, ShippingPrice: 0, TaxPrice: 100, TotalPrice: 5100.5},
		},
		{
			name:  "tax rounds half up",
			lines: []Line{{UnitPrice: 25, Qty: 1}, {UnitPrice: 50, Qty: 1}},
			want:  Summary{ItemsPrice: 75, ShippingPrice: 100, TaxPrice: 2, TotalPrice: 177},
		},
		{
			name:  "empty cart",
			lines: nil,
			want:  Summary{ItemsPrice: 0, ShippingPrice: 100, TaxPrice: 0, TotalPrice: 100},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tt.lines)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Consistent())
		})
	}
}

func TestConsistent(t *testing.T) {
	t.Parallel()

	assert.True(t, Summary{ItemsPrice: 0.1, ShippingPrice: 0.2, TaxPrice: 0, TotalPrice: 0.3}.Consistent())
	assert.False(t, Summary{ItemsPrice: 1000, ShippingPrice: 100, TaxPrice: 20, TotalPrice: 1100}.Consistent())
}
