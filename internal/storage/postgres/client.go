package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/domain/client"
)

var _ client.Repository = (*ClientRepository)(nil)

// ClientRepository implements client.Repository backed by PostgreSQL.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a ClientRepository that uses the given pool.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const getClientByPhoneSQL = `SELECT id, first_name, last_name, email, phone_number,
	street, city, state, zip_code FROM clients WHERE phone_number = $1`

func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*client.Client, error) {
	var c client.Client
	err := from(ctx, r.pool).QueryRow(ctx, getClientByPhoneSQL, phone).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.ZipCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting client by phone %q", phone)
	}
	return &c, nil
}

const createClientSQL = `INSERT INTO clients
	(id, first_name, last_name, email, phone_number, street, city, state, zip_code)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	_, err := from(ctx, r.pool).Exec(ctx, createClientSQL,
		c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode,
	)
	if err != nil {
		return errors.Wrapf(err, "creating client %q", c.ID)
	}
	return nil
}

const listPhonesSQL = `SELECT phone_number FROM clients`

// ListPhones returns every stored phone number, used to warm the phone
// index at startup.
func (r *ClientRepository) ListPhones(ctx context.Context) ([]string, error) {
	rows, err := from(ctx, r.pool).Query(ctx, listPhonesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing client phones")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, errors.Wrap(err, "scanning phone")
		}
		out = append(out, phone)
	}
	return out, rows.Err()
}
