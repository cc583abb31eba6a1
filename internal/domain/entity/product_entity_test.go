package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_Derived(t *testing.T) {
	t.Parallel()

	discount := 899.0
	p := &Product{Price: 1000, CountInStock: 0}
	assert.Equal(t, StatusOutOfStock, p.Status())
	assert.Equal(t, 1000.0, p.EffectivePrice())
	assert.Equal(t, "", p.PrimaryImage())

	p.CountInStock = 3
	p.DiscountPrice = &discount
	p.Images = []string{"a.png", "b.png"}
	assert.Equal(t, StatusInStock, p.Status())
	assert.Equal(t, 899.0, p.EffectivePrice())
	assert.Equal(t, "a.png", p.PrimaryImage())
}

func TestUser_Sanitized(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Password: "hash", Wishlist: []string{"p1"}}
	s := u.Sanitized()
	assert.Empty(t, s.Password)
	assert.Equal(t, "hash", u.Password)
	s.Wishlist[0] = "p2"
	assert.Equal(t, "p1", u.Wishlist[0])
	assert.Nil(t, (*User)(nil).Sanitized())
}
