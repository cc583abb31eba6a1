// Package storefront holds the shopper's session state on a single device:
// cart, wishlist, auth session, checkout details and the last alert. It
// talks to the API only to log in and to place orders.
package storefront

import (
	"errors"
	"time"
)

var (
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrExceedsStock     = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrNotInCart        = errors.New("product is not in the cart")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotLoggedIn      = errors.New("please log in first")
	ErrMissingShipping  = errors.New("shipping address is incomplete")
	ErrMissingPayment   = errors.New("payment method is not selected")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrPaymentMethod    = errors.New("payment method must be COD or CARD")
)

// Storage keys for the persisted slices of State.
const (
	KeyCartItems       = "cartItems"
	KeyWishlist        = "wishlist"
	KeyUserInfo        = "userInfo"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
)

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// Product is a catalog entry as served by the API.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discountPrice,omitempty"`
	Images        []string  `json:"images"`
	CountInStock  int       `json:"countInStock"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CartItem captures the product at the moment it was added. Price is the
// effective sale price.
type CartItem struct {
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Qty          int     `json:"qty"`
}

// UserInfo is the last login or register response.
type UserInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Image     string    `json:"image,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a ShippingAddress) Complete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// State is an immutable snapshot handed to subscribers.
type State struct {
	CartItems       []CartItem
	Wishlist        []string
	UserInfo        *UserInfo
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Alert           *Alert
	CheckingOut     bool
}

// CartCount is the total number of units in the cart.
func (s State) CartCount() int {
	n := 0
	for _, it := range s.CartItems {
		n += it.Qty
	}
	return n
}

func (s State) InWishlist(productID string) bool {
	for _, id := range s.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	out := s
	out.CartItems = append([]CartItem(nil), s.CartItems...)
	out.Wishlist = append([]string(nil), s.Wishlist...)
	if s.UserInfo != nil {
		u := *s.UserInfo
		out.UserInfo = &u
	}
	if s.Alert != nil {
		a := *s.Alert
		out.Alert = &a
	}
	return out
}
