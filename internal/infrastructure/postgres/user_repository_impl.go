package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.is_admin, u.is_blocked, u.last_login_at, u.image_url,
	COALESCE((SELECT array_agg(w.product_id::text ORDER BY w.created_at) FROM user_wishlist w WHERE w.user_id = u.id), '{}'),
	u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsAdmin, &u.IsBlocked, &u.LastLoginAt,
		&u.ImageURL, &u.Wishlist, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, is_admin, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.IsAdmin, u.ImageURL)

	return translate(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE u.id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], u.id)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !validID(u.ID) {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, image_url = $3, updated_at = $4
		WHERE id = $5
	`, u.Name, u.Email, u.ImageURL, u.UpdatedAt, u.ID)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, id, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, hash)
}

func (r *UserRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return r.exec(ctx, id, `UPDATE users SET is_blocked = $2, updated_at = NOW() WHERE id = $1`, blocked)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, id, `UPDATE users SET last_login_at = $2 WHERE id = $1`, at)
}

// Delete fails with ErrInUse while the user still owns orders.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, id, `DELETE FROM users WHERE id = $1`)
}

// exec runs a single-row statement keyed by id ($1).
func (r *UserRepository) exec(ctx context.Context, id, sql string, args ...any) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddToWishlist(ctx context.Context, userID, productID string) error {
	if !validID(userID) || !validID(productID) {
		return repository.ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_wishlist (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, productID)
	return translateFK(err)
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if !validID(userID) || !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM user_wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return translate(err)
}

var _ repository.UserRepository = (*UserRepository)(nil)
