package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders []*entity.Order // insertion order
	users  *UserRepository

	// BeforeUpdate, when set, runs inside UpdateStatus before the version
	// check. Tests use it to interleave a competing write.
	BeforeUpdate func(id string)
}

// NewOrderRepository takes the user fake to fill in owner summaries; it may be nil.
func NewOrderRepository(users *UserRepository) *OrderRepository {
	r := &OrderRepository{users: users}
	if users != nil {
		users.referenced = r.hasOrders
	}
	return r
}

func (r *OrderRepository) hasOrders(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.UserID == userID {
			return true
		}
	}
	return false
}

func (r *OrderRepository) withUser(o *entity.Order) *entity.Order {
	cp := o.Clone()
	if r.users != nil {
		cp.User = r.users.summary(o.UserID)
	} else {
		cp.User = &entity.UserSummary{ID: o.UserID}
	}
	return cp
}

func (r *OrderRepository) find(id string) *entity.Order {
	for _, o := range r.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (r *OrderRepository) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	o.ID = uuid.NewString()
	o.Version = 1
	o.CreatedAt, o.UpdatedAt = now, now
	stored := o.Clone()
	stored.User = nil
	r.orders = append(r.orders, stored)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o := r.find(id)
	if o == nil {
		return nil, repository.ErrNotFound
	}
	return r.withUser(o), nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	return r.list(func(o *entity.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]*entity.Order, error) {
	return r.list(func(*entity.Order) bool { return true }), nil
}

// list returns matches newest first.
func (r *OrderRepository) list(keep func(o *entity.Order) bool) []*entity.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		if keep(r.orders[i]) {
			out = append(out, r.withUser(r.orders[i]))
		}
	}
	return out
}

func (r *OrderRepository) UpdateStatus(_ context.Context, o *entity.Order, expectedVersion int) error {
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(o.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.find(o.ID)
	if cur == nil {
		return repository.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	cur.IsPaid, cur.PaidAt = o.IsPaid, o.PaidAt
	cur.IsDelivered, cur.DeliveredAt = o.IsDelivered, o.DeliveredAt
	cur.IsCancelled, cur.CancelledAt = o.IsCancelled, o.CancelledAt
	cur.UpdatedAt = o.UpdatedAt
	cur.Version++
	o.Version = cur.Version
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
