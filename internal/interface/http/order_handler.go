package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
	"github.com/oksasatya/buytoro/pkg/response"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// Lifecycle rejections (entity.TransitionError) are mapped by kind in fail.
var orderStatus = statusTable{
	application.ErrOrderNotFound:       http.StatusNotFound,
	application.ErrProductNotFound:     http.StatusNotFound,
	application.ErrNoOrderItems:        http.StatusBadRequest,
	application.ErrInsufficientStock:   http.StatusBadRequest,
	application.ErrInvalidQuantity:     http.StatusBadRequest,
	application.ErrOrderForbidden:      http.StatusForbidden,
	application.ErrConcurrentUpdate:    http.StatusConflict,
	application.ErrDuplicateSubmission: http.StatusConflict,
}

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type createOrderRequest struct {
	OrderItems      []orderItemDTO     `json:"orderItems" binding:"dive"`
	ShippingAddress shippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,paymentmethod"`
	ItemsPrice      float64            `json:"itemsPrice" binding:"money"`
	ShippingPrice   float64            `json:"shippingPrice" binding:"money"`
	TaxPrice        float64            `json:"taxPrice" binding:"money"`
	TotalPrice      float64            `json:"totalPrice" binding:"money"`
}

// Create POST /api/orders. A repeated Idempotency-Key answers 200 with the
// order created first.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if len(req.OrderItems) == 0 {
		response.Error[any](c, http.StatusBadRequest, application.ErrNoOrderItems.Error(), nil)
		return
	}

	items := make([]application.OrderItemInput, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, application.OrderItemInput{ProductID: it.Product, Qty: it.Qty, Name: it.Name, Image: it.Image, Price: it.Price})
	}
	a := req.ShippingAddress
	o, replayed, err := h.Svc.Create(c.Request.Context(), middleware.Actor(c), application.CreateOrderInput{
		Items:           items,
		ShippingAddress: entity.ShippingAddress{Address: a.Address, City: a.City, PostalCode: a.PostalCode, Country: a.Country},
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		ShippingPrice:   req.ShippingPrice,
		TaxPrice:        req.TaxPrice,
		TotalPrice:      req.TotalPrice,
	}, c.GetHeader(HeaderIdempotencyKey))
	if err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	if replayed {
		response.Success(c, http.StatusOK, toOrder(o), "order already created", map[string]any{"replayed": true})
		return
	}
	response.Success(c, http.StatusCreated, toOrder(o), "order created", nil)
}

// Mine GET /api/orders/myorders
func (h *OrderHandler) Mine(c *gin.Context) {
	orders, err := h.Svc.ListMine(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toOrders(orders), "orders", nil)
}

// List GET /api/orders (admin)
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toOrders(orders), "orders", map[string]any{"total": len(orders)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, products, err := h.Svc.Detail(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toOrderDetail(o, products), "order", nil)
}

func (h *OrderHandler) Pay(c *gin.Context) {
	h.transition(c, entity.ActionPay, "order paid")
}

func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, entity.ActionDeliver, "order delivered")
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, entity.ActionCancel, "order cancelled")
}

func (h *OrderHandler) transition(c *gin.Context, action entity.Action, message string) {
	o, err := h.Svc.Transition(c.Request.Context(), c.Param("id"), action, middleware.Actor(c))
	if err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toOrder(o), message, nil)
}

// Delete DELETE /api/orders/:id (admin)
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.Logger, orderStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "order removed", nil)
}
