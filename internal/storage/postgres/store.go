package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/domain/store"
)

var _ store.Repository = (*StoreRepository)(nil)

// StoreRepository implements store.Repository backed by PostgreSQL.
// Soft-deleted stores are invisible to all reads.
type StoreRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository returns a StoreRepository that uses the given pool.
func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

const getStoreSQL = `SELECT id, name, created_at FROM stores
	WHERE id = $1 AND deleted_at IS NULL`

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*store.Store, error) {
	var s store.Store
	err := from(ctx, r.pool).QueryRow(ctx, getStoreSQL, id).
		Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting store %q", id)
	}
	return &s, nil
}

const listStoresSQL = `SELECT id, name, created_at FROM stores
	WHERE deleted_at IS NULL ORDER BY created_at`

func (r *StoreRepository) List(ctx context.Context) ([]store.Store, error) {
	rows, err := from(ctx, r.pool).Query(ctx, listStoresSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing stores")
	}
	defer rows.Close()

	var out []store.Store
	for rows.Next() {
		var s store.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning store")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const upsertStoreSQL = `INSERT INTO stores (id, name) VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, deleted_at = NULL`

func (r *StoreRepository) Create(ctx context.Context, s *store.Store) error {
	if _, err := from(ctx, r.pool).Exec(ctx, upsertStoreSQL, s.ID, s.Name); err != nil {
		return errors.Wrapf(err, "creating store %q", s.ID)
	}
	return nil
}
