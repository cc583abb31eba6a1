package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderSelect = `
	SELECT o.id, o.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
	       o.address, o.city, o.postal_code, o.country, o.payment_method,
	       o.items_price, o.shipping_price, o.tax_price, o.total_price,
	       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.is_cancelled, o.cancelled_at,
	       o.version, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	o := &entity.Order{User: &entity.UserSummary{}}
	a := &o.ShippingAddress
	if err := row.Scan(&o.ID, &o.UserID, &o.User.Name, &o.User.Email,
		&a.Address, &a.City, &a.PostalCode, &a.Country, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.IsCancelled, &o.CancelledAt,
		&o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	o.User.ID = o.UserID
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if !validID(o.UserID) {
		return repository.ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a := o.ShippingAddress
	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, address, city, postal_code, country, payment_method,
		                    items_price, shipping_price, tax_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at, updated_at
	`, o.UserID, a.Address, a.City, a.PostalCode, a.Country, o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice)
	if err := row.Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return translateFK(err)
	}

	batch := &pgx.Batch{}
	for i, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, name, image, price, qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, o.ID, i, it.ProductID, it.Name, it.Image, it.Price, it.Qty)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return translate(err)
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	if !validID(userID) {
		return []*entity.Order{}, nil
	}
	return r.list(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*entity.Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachItems loads line items for all orders in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*entity.Order, len(orders))
	for _, o := range orders {
		o.Items = []entity.OrderItem{}
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, name, image, price, qty
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it entity.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Image, &it.Price, &it.Qty); err != nil {
			return err
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus is a compare-and-set on version.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *entity.Order, expectedVersion int) error {
	if !validID(o.ID) {
		return repository.ErrNotFound
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now()
	}
	var version int
	err := r.pool.QueryRow(ctx, `
		UPDATE orders
		SET is_paid = $3, paid_at = $4, is_delivered = $5, delivered_at = $6,
		    is_cancelled = $7, cancelled_at = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`, o.ID, expectedVersion, o.IsPaid, o.PaidAt, o.IsDelivered, o.DeliveredAt,
		o.IsCancelled, o.CancelledAt, o.UpdatedAt).Scan(&version)
	if err == nil {
		o.Version = version
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Zero rows: either the order is gone or someone else won.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrVersionConflict
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
