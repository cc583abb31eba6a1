package repository

import (
	"context"

	"github.com/oksasatya/buytoro/internal/domain/entity"
)

type OrderRepository interface {
	// Create stores the order and its items atomically and sets ID, Version
	// and timestamps on o.
	Create(ctx context.Context, o *entity.Order) error
	// GetByID returns the order with items and the owner's summary.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	ListAll(ctx context.Context) ([]*entity.Order, error)
	// UpdateStatus writes the status flags of o if the stored version still
	// equals expectedVersion, else ErrVersionConflict. On success o.Version
	// holds the new version.
	UpdateStatus(ctx context.Context, o *entity.Order, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}
