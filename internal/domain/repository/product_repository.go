package repository

import (
	"context"

	"github.com/oksasatya/buytoro/internal/domain/entity"
)

// ProductFilter narrows List. IDs, when set, restricts the result to those
// products in the given order (used for search hits).
type ProductFilter struct {
	Keyword string
	Brand   string
	IDs     []string
	Limit   int
	Offset  int
}

type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	Brands(ctx context.Context) ([]string, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
}
