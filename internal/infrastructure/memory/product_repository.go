package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	seq      int
	order    map[string]int
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: map[string]*entity.Product{}, order: map[string]int{}}
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		cp.DiscountPrice = &d
	}
	return &cp
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	r.seq++
	r.order[p.ID] = r.seq
	r.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProduct(p), nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*entity.Product
	if f.IDs != nil {
		for _, id := range f.IDs {
			if p, ok := r.products[id]; ok {
				candidates = append(candidates, p)
			}
		}
	} else {
		for _, p := range r.products {
			candidates = append(candidates, p)
		}
		// newest first
		sort.Slice(candidates, func(i, j int) bool { return r.order[candidates[i].ID] > r.order[candidates[j].ID] })
	}

	kw := strings.ToLower(strings.TrimSpace(f.Keyword))
	brand := strings.TrimSpace(f.Brand)
	matched := []*entity.Product{}
	for _, p := range candidates {
		if kw != "" && !strings.Contains(strings.ToLower(p.Name), kw) && !strings.Contains(strings.ToLower(p.Brand), kw) {
			continue
		}
		if brand != "" && !strings.EqualFold(p.Brand, brand) {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	if f.Limit > 0 {
		start := min(f.Offset, total)
		end := min(start+f.Limit, total)
		matched = matched[start:end]
	}
	out := make([]*entity.Product, 0, len(matched))
	for _, p := range matched {
		out = append(out, copyProduct(p))
	}
	return out, total, nil
}

func (r *ProductRepository) Brands(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range r.products {
		if !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now()
	r.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	delete(r.order, id)
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
