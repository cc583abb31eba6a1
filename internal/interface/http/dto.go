package handlers

import (
	"time"

	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/internal/domain/entity"
)

type userResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	IsBlocked bool       `json:"isBlocked"`
	Image     string     `json:"image,omitempty"`
	Wishlist  []string   `json:"wishlist"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// authResponse flattens the profile and token, as returned by register
// and login.
type authResponse struct {
	userResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toUser(u *entity.User) userResponse {
	wishlist := u.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		IsBlocked: u.IsBlocked,
		Image:     u.ImageURL,
		Wishlist:  wishlist,
		LastLogin: u.LastLoginAt,
		CreatedAt: u.CreatedAt,
	}
}

func toUsers(users []*entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out
}

func toAuth(res *application.AuthResult) authResponse {
	return authResponse{userResponse: toUser(res.User), Token: res.Token, ExpiresAt: res.ExpiresAt}
}

type productResponse struct {
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
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toProduct(p *entity.Product) productResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        images,
		CountInStock:  p.CountInStock,
		Status:        p.Status(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProducts(products []*entity.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	return out
}

type productPageResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
}

type orderItemDTO struct {
	Product string  `json:"product" binding:"required"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price" binding:"money"`
	Qty     int     `json:"qty"`
}

type shippingAddressDTO struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	User            *entity.UserSummary `json:"user,omitempty"`
	OrderItems      []orderItemDTO      `json:"orderItems"`
	ShippingAddress shippingAddressDTO  `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	ItemsPrice      float64             `json:"itemsPrice"`
	ShippingPrice   float64             `json:"shippingPrice"`
	TaxPrice        float64             `json:"taxPrice"`
	TotalPrice      float64             `json:"totalPrice"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	IsCancelled     bool                `json:"isCancelled"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrder(o *entity.Order) orderResponse {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{Product: it.ProductID, Name: it.Name, Image: it.Image, Price: it.Price, Qty: it.Qty})
	}
	a := o.ShippingAddress
	return orderResponse{
		ID:              o.ID,
		User:            o.User,
		OrderItems:      items,
		ShippingAddress: shippingAddressDTO{Address: a.Address, City: a.City, PostalCode: a.PostalCode, Country: a.Country},
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice,
		ShippingPrice:   o.ShippingPrice,
		TaxPrice:        o.TaxPrice,
		TotalPrice:      o.TotalPrice,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		IsCancelled:     o.IsCancelled,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// orderLineResponse is a captured line item plus the product as it is now.
type orderLineResponse struct {
	orderItemDTO
	Current *productResponse `json:"current,omitempty"`
}

// orderDetailResponse replaces orderItems with expanded lines.
type orderDetailResponse struct {
	orderResponse
	OrderItems []orderLineResponse `json:"orderItems"`
}

func toOrderDetail(o *entity.Order, products map[string]*entity.Product) orderDetailResponse {
	base := toOrder(o)
	lines := make([]orderLineResponse, 0, len(base.OrderItems))
	for _, it := range base.OrderItems {
		line := orderLineResponse{orderItemDTO: it}
		if p, ok := products[it.Product]; ok {
			current := toProduct(p)
			line.Current = &current
		}
		lines = append(lines, line)
	}
	return orderDetailResponse{orderResponse: base, OrderItems: lines}
}

func toOrders(orders []*entity.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out
}
