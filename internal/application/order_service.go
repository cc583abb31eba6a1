package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	"github.com/oksasatya/buytoro/pkg/helpers"
	"github.com/oksasatya/buytoro/pkg/mailer"
	mailtpl "github.com/oksasatya/buytoro/pkg/mailer/templates"
	"github.com/oksasatya/buytoro/pkg/pricing"
)

const (
	idempotencyTTL     = 24 * time.Hour
	idempotencyPending = "pending"
	// statusAttempts bounds the compare-and-set loop: the first write plus
	// one reload-and-reapply.
	statusAttempts = 2
)

type OrderService struct {
	Orders   repo.OrderRepository
	Products repo.ProductRepository
	Users    repo.UserRepository
	KV       KeyValue
	Mail     MailQueue
	Cfg      *config.Config
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewOrderService(orders repo.OrderRepository, products repo.ProductRepository, users repo.UserRepository, logger *logrus.Logger) *OrderService {
	return &OrderService{Orders: orders, Products: products, Users: users, Logger: logger, Now: time.Now}
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type OrderItemInput struct {
	ProductID string
	Qty       int
	// Client-side copies; the catalog is authoritative.
	Name  string
	Image string
	Price float64
}

type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress entity.ShippingAddress
	PaymentMethod   string
	// Client-computed totals, compared against the server's figures.
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

// Create places an order for actor. With a non-empty idempotencyKey a retry
// of the same request returns the first order and replayed=true.
func (s *OrderService) Create(ctx context.Context, actor entity.Actor, in CreateOrderInput, idempotencyKey string) (order *entity.Order, replayed bool, err error) {
	if len(in.Items) == 0 {
		return nil, false, ErrNoOrderItems
	}

	key := ""
	if s.KV != nil && strings.TrimSpace(idempotencyKey) != "" {
		key = helpers.KeyOrderIdempotency(actor.UserID, strings.TrimSpace(idempotencyKey))
		var claimed bool
		claimed, err = s.KV.SetNX(ctx, key, idempotencyPending, idempotencyTTL)
		if err != nil {
			return nil, false, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			o, err := s.replay(ctx, key)
			return o, o != nil, err
		}
		defer func() {
			if err != nil {
				_ = s.KV.Del(ctx, key)
			}
		}()
	}

	o, err := s.build(ctx, actor, in)
	if err != nil {
		return nil, false, err
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, false, err
	}
	if key != "" {
		s.recordKey(ctx, key, o.ID)
	}

	ordersCreated.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "user_id": o.UserID, "total": o.TotalPrice}).Info("order created")
	}
	s.notify(ctx, o, mailtpl.OrderPlaced)
	return o, false, nil
}

// recordKey points a claimed key at the persisted order. When that fails
// twice the claim is released: a pending key would refuse every retry until
// it expires, while a released one lets a retry place a second order.
func (s *OrderService) recordKey(ctx context.Context, key, orderID string) {
	err := s.KV.Set(ctx, key, orderID, idempotencyTTL)
	if err != nil {
		err = s.KV.Set(ctx, key, orderID, idempotencyTTL)
	}
	if err == nil {
		return
	}
	delErr := s.KV.Del(ctx, key)
	if s.Logger != nil {
		s.Logger.WithError(errors.Join(err, delErr)).WithField("order_id", orderID).Warn("record idempotency key failed; key released")
	}
}

func (s *OrderService) replay(ctx context.Context, key string) (*entity.Order, error) {
	id, ok, err := s.KV.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || id == idempotencyPending {
		return nil, ErrDuplicateSubmission
	}
	o, err := s.Orders.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// build validates the request against the catalog and prices it. Repeated
// lines for the same product are merged.
func (s *OrderService) build(ctx context.Context, actor entity.Actor, in CreateOrderInput) (*entity.Order, error) {
	qty := map[string]int{}
	var ids []string
	for _, it := range in.Items {
		if it.Qty < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Qty
	}

	products, err := s.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]entity.OrderItem, 0, len(ids))
	lines := make([]pricing.Line, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if qty[id] > p.CountInStock {
			return nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.CountInStock)
		}
		price := p.EffectivePrice()
		items = append(items, entity.OrderItem{ProductID: p.ID, Name: p.Name, Image: p.PrimaryImage(), Price: price, Qty: qty[id]})
		lines = append(lines, pricing.Line{UnitPrice: price, Qty: qty[id]})
	}

	sum := pricing.Compute(lines)
	client := pricing.Summary{ItemsPrice: in.ItemsPrice, ShippingPrice: in.ShippingPrice, TaxPrice: in.TaxPrice, TotalPrice: in.TotalPrice}
	if client.TotalPrice != 0 && !client.Equal(sum) && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id":      actor.UserID,
			"client_total": client.TotalPrice,
			"server_total": sum.TotalPrice,
		}).Warn("client order totals differ from catalog prices; using server figures")
	}

	return &entity.Order{
		UserID:          actor.UserID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      sum.ItemsPrice,
		ShippingPrice:   sum.ShippingPrice,
		TaxPrice:        sum.TaxPrice,
		TotalPrice:      sum.TotalPrice,
	}, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]*entity.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]*entity.Order, error) {
	return s.Orders.ListAll(ctx)
}

// Get returns the order if actor owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, id string, actor entity.Actor) (*entity.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanView(actor) {
		return nil, ErrOrderForbidden
	}
	return o, nil
}

// Detail is Get plus the current catalog entry of each line item's product,
// keyed by product id. Deleted products are absent from the map. Line items
// keep the name, image and price captured at checkout either way.
func (s *OrderService) Detail(ctx context.Context, id string, actor entity.Actor) (*entity.Order, map[string]*entity.Product, error) {
	o, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	found, err := s.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	products := make(map[string]*entity.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	return o, products, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) MarkPaid(ctx context.Context, id string, actor entity.Actor) (*entity.Order, error) {
	return s.Transition(ctx, id, entity.ActionPay, actor)
}

func (s *OrderService) MarkDelivered(ctx context.Context, id string, actor entity.Actor) (*entity.Order, error) {
	return s.Transition(ctx, id, entity.ActionDeliver, actor)
}

func (s *OrderService) Cancel(ctx context.Context, id string, actor entity.Actor) (*entity.Order, error) {
	return s.Transition(ctx, id, entity.ActionCancel, actor)
}

// Transition applies a lifecycle action with a compare-and-set on the
// order version. A lost race reloads and re-checks the rules once, so a
// concurrent terminal transition is reported as a rule violation.
func (s *OrderService) Transition(ctx context.Context, id string, action entity.Action, actor entity.Actor) (*entity.Order, error) {
	for attempt := 0; attempt < statusAttempts; attempt++ {
		o, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		expected := o.Version
		if err := entity.ApplyTransition(o, action, actor, s.now()); err != nil {
			return nil, err
		}
		err = s.Orders.UpdateStatus(ctx, o, expected)
		switch {
		case err == nil:
			s.recordTransition(ctx, o, action, actor)
			return o, nil
		case errors.Is(err, repo.ErrVersionConflict):
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"order_id": id, "action": action, "attempt": attempt + 1}).Warn("order version conflict")
			}
			continue
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrOrderNotFound
		default:
			return nil, err
		}
	}
	return nil, ErrConcurrentUpdate
}

func (s *OrderService) recordTransition(ctx context.Context, o *entity.Order, action entity.Action, actor entity.Actor) {
	status := ""
	switch action {
	case entity.ActionPay:
		ordersPaid.Add(1)
		status = mailtpl.OrderPaid
	case entity.ActionDeliver:
		ordersDelivered.Add(1)
		status = mailtpl.OrderDelivered
	case entity.ActionCancel:
		ordersCancelled.Add(1)
		status = mailtpl.OrderCancelled
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"order_id": o.ID,
			"action":   action,
			"actor_id": actor.UserID,
			"admin":    actor.IsAdmin,
			"version":  o.Version,
		}).Info("order status changed")
	}
	s.notify(ctx, o, status)
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	err := s.Orders.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// notify emails the order owner. Failures are logged by the queue.
func (s *OrderService) notify(ctx context.Context, o *entity.Order, status string) {
	if s.Mail == nil || s.Cfg == nil || status == "" {
		return
	}
	name, email := "", ""
	if o.User != nil {
		name, email = o.User.Name, o.User.Email
	}
	if email == "" && s.Users != nil {
		u, err := s.Users.GetByID(ctx, o.UserID)
		if err != nil {
			return
		}
		name, email = u.Name, u.Email
	}

	data := mailtpl.OrderData{
		ID:            o.ID,
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		ShipTo:        formatAddress(o.ShippingAddress),
	}
	for _, it := range o.Items {
		data.Items = append(data.Items, mailtpl.OrderLine{Name: it.Name, Qty: it.Qty, Price: it.Price})
	}
	job := mailer.EmailJob{
		To:       email,
		Template: mailtpl.OrderUpdate,
		Data:     mailtpl.NewOrderUpdateData(s.Cfg, name, email, status, data),
	}
	_ = s.Mail.Enqueue(ctx, job)
}

func formatAddress(a entity.ShippingAddress) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
