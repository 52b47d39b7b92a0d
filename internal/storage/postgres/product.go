package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Soft-deleted products are invisible to reads and to order validation.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const getProductSQL = `SELECT id, store_id, name, price, stock, image, version
	FROM products WHERE id = $1 AND deleted_at IS NULL`

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := from(ctx, r.pool).QueryRow(ctx, getProductSQL, id).
		Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock, &p.Image, &p.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	return &p, nil
}

const listProductsSQL = `SELECT id, store_id, name, price, stock, image, version
	FROM products WHERE deleted_at IS NULL AND ($1 = '' OR store_id = $1)
	ORDER BY id`

func (r *ProductRepository) List(ctx context.Context, storeID string) ([]product.Product, error) {
	rows, err := from(ctx, r.pool).Query(ctx, listProductsSQL, storeID)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock, &p.Image, &p.Version); err != nil {
			return nil, errors.Wrap(err, "scanning product")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const upsertProductSQL = `INSERT INTO products (id, store_id, name, price, stock, image)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		store_id = EXCLUDED.store_id,
		name = EXCLUDED.name,
		price = EXCLUDED.price,
		stock = EXCLUDED.stock,
		image = EXCLUDED.image,
		version = products.version + 1,
		deleted_at = NULL`

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := from(ctx, r.pool).Exec(ctx, upsertProductSQL,
		p.ID, p.StoreID, p.Name, p.Price, p.Stock, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "creating product %q", p.ID)
	}
	return nil
}

const updateProductSQL = `UPDATE products
	SET name = $2, price = $3, stock = $4, image = $5, version = version + 1
	WHERE id = $1 AND deleted_at IS NULL`

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := from(ctx, r.pool).Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Price, p.Stock, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "updating product %q", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// decrementStockSQL only matches when enough stock remains, so the check
// and the decrement are a single atomic statement. The version bump keeps
// the optimistic-concurrency counter honest for external writers.
const decrementStockSQL = `UPDATE products
	SET stock = stock - $2, version = version + 1
	WHERE id = $1 AND deleted_at IS NULL AND stock >= $2`

func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	tag, err := from(ctx, r.pool).Exec(ctx, decrementStockSQL, id, qty)
	if err != nil {
		return false, errors.Wrapf(err, "decrementing stock for product %q", id)
	}
	return tag.RowsAffected() == 1, nil
}

const softDeleteProductSQL = `UPDATE products SET deleted_at = now()
	WHERE id = $1 AND deleted_at IS NULL`

func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := from(ctx, r.pool).Exec(ctx, softDeleteProductSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting product %q", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}
