package storefront

import (
	"fmt"

	"github.com/oksasatya/buytoro/pkg/pricing"
)

// Action is a state change request handled by reduce.
type Action interface {
	isAction()
}

type (
	AddToCart struct {
		Product Product
		Qty     int
	}
	UpdateQty struct {
		ProductID string
		Qty       int
	}
	RemoveFromCart struct{ ProductID string }
	ClearCart      struct{}

	AddToWishlist      struct{ ProductID string }
	RemoveFromWishlist struct{ ProductID string }
	ToggleWishlist     struct{ ProductID string }

	SetUserInfo struct{ Info UserInfo }
	Logout      struct{}

	SaveShippingAddress struct{ Address ShippingAddress }
	SavePaymentMethod   struct{ Method string }

	DismissAlert struct{}

	checkoutStarted  struct{}
	checkoutFinished struct{ Err error }
)

func (AddToCart) isAction()           {}
func (UpdateQty) isAction()           {}
func (RemoveFromCart) isAction()      {}
func (ClearCart) isAction()           {}
func (AddToWishlist) isAction()       {}
func (RemoveFromWishlist) isAction()  {}
func (ToggleWishlist) isAction()      {}
func (SetUserInfo) isAction()         {}
func (Logout) isAction()              {}
func (SaveShippingAddress) isAction() {}
func (SavePaymentMethod) isAction()   {}
func (DismissAlert) isAction()        {}
func (checkoutStarted) isAction()     {}
func (checkoutFinished) isAction()    {}

func success(msg string) *Alert { return &Alert{Kind: AlertSuccess, Message: msg} }

// reduce returns the next state. A rejected action returns the error and
// leaves s untouched; the caller owns turning it into an alert.
func reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case AddToCart:
		p := a.Product
		if a.Qty < 1 {
			return s, ErrInvalidQuantity
		}
		i := cartIndex(s.CartItems, p.ID)
		if i < 0 {
			if p.CountInStock <= 0 {
				return s, ErrOutOfStock
			}
			if a.Qty > p.CountInStock {
				return s, ErrExceedsStock
			}
			image := ""
			if len(p.Images) > 0 {
				image = p.Images[0]
			}
			s.CartItems = append(s.CartItems, CartItem{
				Product:      p.ID,
				Name:         p.Name,
				Image:        image,
				Price:        pricing.EffectivePrice(p.Price, p.DiscountPrice),
				CountInStock: p.CountInStock,
				Qty:          a.Qty,
			})
		} else {
			it := s.CartItems[i]
			// Fresh catalog data wins over what was captured earlier.
			it.CountInStock = p.CountInStock
			if it.Qty+a.Qty > it.CountInStock {
				return s, ErrExceedsStock
			}
			it.Qty += a.Qty
			s.CartItems[i] = it
		}
		s.Alert = success(fmt.Sprintf("%s added to cart", p.Name))

	case UpdateQty:
		i := cartIndex(s.CartItems, a.ProductID)
		if i < 0 {
			return s, ErrNotInCart
		}
		if a.Qty < 1 {
			return s, ErrInvalidQuantity
		}
		if a.Qty > s.CartItems[i].CountInStock {
			return s, ErrExceedsStock
		}
		s.CartItems[i].Qty = a.Qty
		s.Alert = success("cart updated")

	case RemoveFromCart:
		i := cartIndex(s.CartItems, a.ProductID)
		if i < 0 {
			return s, ErrNotInCart
		}
		s.CartItems = append(s.CartItems[:i], s.CartItems[i+1:]...)
		s.Alert = success("item removed from cart")

	case ClearCart:
		s.CartItems = nil

	case AddToWishlist:
		if !s.InWishlist(a.ProductID) {
			s.Wishlist = append(s.Wishlist, a.ProductID)
		}
		s.Alert = success("added to wishlist")

	case RemoveFromWishlist:
		s.Wishlist = without(s.Wishlist, a.ProductID)
		s.Alert = success("removed from wishlist")

	case ToggleWishlist:
		if s.InWishlist(a.ProductID) {
			return reduce(s, RemoveFromWishlist(a))
		}
		return reduce(s, AddToWishlist(a))

	case SetUserInfo:
		info := a.Info
		s.UserInfo = &info

	case Logout:
		s.UserInfo = nil

	case SaveShippingAddress:
		if !a.Address.Complete() {
			return s, ErrMissingShipping
		}
		s.ShippingAddress = a.Address

	case SavePaymentMethod:
		if a.Method != "COD" && a.Method != "CARD" {
			return s, ErrPaymentMethod
		}
		s.PaymentMethod = a.Method

	case DismissAlert:
		s.Alert = nil

	case checkoutStarted:
		s.CheckingOut = true

	case checkoutFinished:
		s.CheckingOut = false
		if a.Err != nil {
			s.Alert = &Alert{Kind: AlertError, Message: a.Err.Error()}
			break
		}
		s.CartItems = nil
		s.Alert = success("order placed")

	default:
		return s, fmt.Errorf("storefront: unknown action %T", a)
	}
	return s, nil
}

// persisted lists the storage keys an accepted action changes.
func persisted(a Action) []string {
	switch a := a.(type) {
	case AddToCart, UpdateQty, RemoveFromCart, ClearCart:
		return []string{KeyCartItems}
	case AddToWishlist, RemoveFromWishlist, ToggleWishlist:
		return []string{KeyWishlist}
	case SetUserInfo, Logout:
		return []string{KeyUserInfo}
	case SaveShippingAddress:
		return []string{KeyShippingAddress}
	case SavePaymentMethod:
		return []string{KeyPaymentMethod}
	case checkoutFinished:
		if a.Err == nil {
			return []string{KeyCartItems}
		}
	}
	return nil
}

func cartIndex(items []CartItem, productID string) int {
	for i, it := range items {
		if it.Product == productID {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
