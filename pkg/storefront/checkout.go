package storefront

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/buytoro/pkg/pricing"
)

// Authenticator is the part of the API used to open a session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*UserInfo, error)
	Register(ctx context.Context, name, email, password string) (*UserInfo, error)
}

// OrderPlacer is the part of the API used by Checkout.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, token string, req OrderRequest, idemKey string) (*Order, bool, error)
}

// Login stores the session on success. Errors set an error alert.
func (s *Store) Login(ctx context.Context, api Authenticator, email, password string) (*UserInfo, error) {
	return s.openSession(api.Login(ctx, email, password))
}

func (s *Store) Register(ctx context.Context, api Authenticator, name, email, password string) (*UserInfo, error) {
	return s.openSession(api.Register(ctx, name, email, password))
}

func (s *Store) openSession(info *UserInfo, err error) (*UserInfo, error) {
	if err != nil {
		s.setAlert(&Alert{Kind: AlertError, Message: err.Error()})
		return nil, err
	}
	if err := s.Dispatch(SetUserInfo{Info: *info}); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) setAlert(a *Alert) {
	s.mu.Lock()
	s.state.Alert = a
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)
}

// Summary prices the current cart.
func (s *Store) Summary() pricing.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.state.CartItems)
}

func summarize(items []CartItem) pricing.Summary {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Qty: it.Qty})
	}
	return pricing.Compute(lines)
}

// BuildOrderRequest assembles the order payload from the cart and the saved
// checkout details.
func (s *Store) BuildOrderRequest() (OrderRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildOrderRequest(s.state)
}

func buildOrderRequest(st State) (OrderRequest, error) {
	if len(st.CartItems) == 0 {
		return OrderRequest{}, ErrEmptyCart
	}
	if !st.ShippingAddress.Complete() {
		return OrderRequest{}, ErrMissingShipping
	}
	if st.PaymentMethod == "" {
		return OrderRequest{}, ErrMissingPayment
	}
	items := make([]OrderItem, 0, len(st.CartItems))
	for _, it := range st.CartItems {
		items = append(items, OrderItem{Product: it.Product, Name: it.Name, Image: it.Image, Price: it.Price, Qty: it.Qty})
	}
	sum := summarize(st.CartItems)
	return OrderRequest{
		OrderItems:      items,
		ShippingAddress: st.ShippingAddress,
		PaymentMethod:   st.PaymentMethod,
		ItemsPrice:      sum.ItemsPrice,
		ShippingPrice:   sum.ShippingPrice,
		TaxPrice:        sum.TaxPrice,
		TotalPrice:      sum.TotalPrice,
	}, nil
}

// Checkout places the order for the current cart and clears the cart on
// success. Only one checkout runs at a time; a concurrent call gets
// ErrCheckoutInFlight. Each attempt carries a fresh idempotency key.
func (s *Store) Checkout(ctx context.Context, api OrderPlacer) (*Order, error) {
	s.mu.Lock()
	if s.state.CheckingOut {
		s.mu.Unlock()
		return nil, ErrCheckoutInFlight
	}
	if s.state.UserInfo == nil {
		s.mu.Unlock()
		s.setAlert(&Alert{Kind: AlertWarning, Message: ErrNotLoggedIn.Error()})
		return nil, ErrNotLoggedIn
	}
	req, err := buildOrderRequest(s.state)
	if err != nil {
		s.mu.Unlock()
		s.setAlert(&Alert{Kind: AlertWarning, Message: err.Error()})
		return nil, err
	}
	token := s.state.UserInfo.Token
	s.state, _ = reduce(s.state.clone(), checkoutStarted{})
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)

	order, _, err := api.CreateOrder(ctx, token, req, uuid.NewString())
	if dErr := s.Dispatch(checkoutFinished{Err: err}); dErr != nil {
		return nil, dErr
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
