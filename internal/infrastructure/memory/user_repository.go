package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User

	// referenced reports whether other rows point at the user; Delete then
	// fails with ErrInUse like the orders foreign key does.
	referenced func(userID string) bool
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*entity.User{}}
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	cp.Wishlist = append([]string{}, u.Wishlist...)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}

func (r *UserRepository) byEmail(email string) *entity.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if r.byEmail(u.Email) != nil {
		return repository.ErrDuplicate
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u := r.byEmail(strings.ToLower(strings.TrimSpace(email)))
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) List(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []string) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if other := r.byEmail(u.Email); other != nil && other.ID != u.ID {
		return repository.ErrDuplicate
	}
	u.UpdatedAt = time.Now()
	cur.Name, cur.Email, cur.ImageURL, cur.UpdatedAt = u.Name, u.Email, u.ImageURL, u.UpdatedAt
	return nil
}

func (r *UserRepository) mutate(id string, fn func(u *entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *entity.User) {
		u.Password = hash
		u.UpdatedAt = time.Now()
	})
}

func (r *UserRepository) SetBlocked(_ context.Context, id string, blocked bool) error {
	return r.mutate(id, func(u *entity.User) {
		u.IsBlocked = blocked
		u.UpdatedAt = time.Now()
	})
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *entity.User) { u.LastLoginAt = &at })
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	// Checked before locking: the order fake reads users while holding its own lock.
	if r.referenced != nil && r.referenced(id) {
		return repository.ErrInUse
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) AddToWishlist(_ context.Context, userID, productID string) error {
	return r.mutate(userID, func(u *entity.User) {
		for _, id := range u.Wishlist {
			if id == productID {
				return
			}
		}
		u.Wishlist = append(u.Wishlist, productID)
	})
}

func (r *UserRepository) RemoveFromWishlist(_ context.Context, userID, productID string) error {
	err := r.mutate(userID, func(u *entity.User) {
		out := u.Wishlist[:0]
		for _, id := range u.Wishlist {
			if id != productID {
				out = append(out, id)
			}
		}
		u.Wishlist = out
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// summary is used by the order fake to embed owner details.
func (r *UserRepository) summary(id string) *entity.UserSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return &entity.UserSummary{ID: id}
	}
	return &entity.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

var _ repository.UserRepository = (*UserRepository)(nil)
