package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/domain/auth"
)

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

const findAPIKeySQL = `SELECT id, key_hash, name, store_id, scopes
	FROM api_keys WHERE key_hash = $1`

func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	var info auth.APIKeyInfo
	err := from(ctx, r.pool).QueryRow(ctx, findAPIKeySQL, hash).
		Scan(&info.ID, &info.KeyHash, &info.Name, &info.StoreID, &info.Scopes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, errors.Wrap(err, "finding api key")
	}
	return &info, nil
}

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, store_id, scopes)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (key_hash) DO UPDATE SET
		name = EXCLUDED.name,
		store_id = EXCLUDED.store_id,
		scopes = EXCLUDED.scopes`

func (r *APIKeyRepository) Upsert(ctx context.Context, info *auth.APIKeyInfo) error {
	_, err := from(ctx, r.pool).Exec(ctx, upsertAPIKeySQL,
		info.ID, info.KeyHash, info.Name, info.StoreID, info.Scopes,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting api key %q", info.Name)
	}
	return nil
}
