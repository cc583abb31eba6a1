package entity

import "time"

const (
	PaymentCOD  = "COD"
	PaymentCard = "CARD"
)

// OrderItem is a point-in-time snapshot of a purchased product.
type OrderItem struct {
	ProductID string
	Name      string
	Image     string
	Price     float64
	Qty       int
}

type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

type Order struct {
	ID              string
	UserID          string
	User            *UserSummary
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	ShippingPrice   float64
	TaxPrice        float64
	TotalPrice      float64

	IsPaid      bool
	PaidAt      *time.Time
	IsDelivered bool
	DeliveredAt *time.Time
	IsCancelled bool
	CancelledAt *time.Time

	// Version increases on every status change; writes compare-and-set on it.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so transitions can be attempted without
// touching the caller's value.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	if o.User != nil {
		u := *o.User
		cp.User = &u
	}
	cp.PaidAt = copyTime(o.PaidAt)
	cp.DeliveredAt = copyTime(o.DeliveredAt)
	cp.CancelledAt = copyTime(o.CancelledAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
