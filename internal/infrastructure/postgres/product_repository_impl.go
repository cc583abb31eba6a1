package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	"github.com/oksasatya/buytoro/internal/domain/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, brand, category, description, price, discount_price, images, count_in_stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Price, &p.DiscountPrice,
		&p.Images, &p.CountInStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	out := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, brand, category, description, price, discount_price, images, count_in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Brand, p.Category, p.Description, p.Price, p.DiscountPrice, p.Images, p.CountInStock)

	return translate(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// GetByIDs returns the products that exist, in the order of ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], id)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	order := "created_at DESC"
	if f.IDs != nil {
		ids := validIDs(f.IDs)
		if len(ids) == 0 {
			return []*entity.Product{}, 0, nil
		}
		p := arg(ids)
		where = append(where, "id = ANY("+p+"::uuid[])")
		order = "array_position(" + p + "::uuid[], id)"
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		p := arg("%" + kw + "%")
		where = append(where, "(name ILIKE "+p+" OR brand ILIKE "+p+")")
	}
	if b := strings.TrimSpace(f.Brand); b != "" {
		where = append(where, "LOWER(brand) = LOWER("+arg(b)+")")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productColumns + ` FROM products` + cond + ` ORDER BY ` + order
	if f.Limit > 0 {
		q += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepository) Brands(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT brand FROM products ORDER BY brand`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, brand = $2, category = $3, description = $4, price = $5,
		    discount_price = $6, images = $7, count_in_stock = $8, updated_at = $9
		WHERE id = $10
	`, p.Name, p.Brand, p.Category, p.Description, p.Price, p.DiscountPrice, p.Images, p.CountInStock, p.UpdatedAt, p.ID)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
