package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// join their client on every read; line items live in order_items with the
// price snapshot taken at order time.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const createOrderSQL = `INSERT INTO orders
	(id, store_id, client_id, status, payment_method, total_price, order_date, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const createOrderItemSQL = `INSERT INTO order_items
	(order_id, position, product_id, product_name, unit_price, ordered_quantity)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	q := from(ctx, r.pool)

	_, err := q.Exec(ctx, createOrderSQL,
		o.ID, o.StoreID, o.Client.ID, o.Status, o.PaymentMethod,
		o.TotalPrice, o.OrderDate, o.Version,
	)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	for i, it := range o.Items {
		_, err := q.Exec(ctx, createOrderItemSQL,
			o.ID, i, it.ProductID, it.ProductName, it.UnitPrice, it.OrderedQuantity,
		)
		if err != nil {
			return errors.Wrapf(err, "creating order item %d of order %q", i, o.ID)
		}
	}
	return nil
}

const orderColumns = `o.id, o.store_id, o.status, o.payment_method, o.total_price,
	o.order_date, o.version,
	c.id, c.first_name, c.last_name, c.email, c.phone_number,
	c.street, c.city, c.state, c.zip_code`

const getOrderSQL = `SELECT ` + orderColumns + `
	FROM orders o JOIN clients c ON c.id = o.client_id
	WHERE o.id = $1`

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	q := from(ctx, r.pool)

	o, err := scanOrder(q.QueryRow(ctx, getOrderSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	if err := r.attachItems(ctx, q, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// getActiveOrderSQL filters cancelled orders out at query time: a cancelled
// order is indistinguishable from a missing one.
const getActiveOrderSQL = `SELECT ` + orderColumns + `
	FROM orders o JOIN clients c ON c.id = o.client_id
	WHERE o.id = $1 AND o.store_id = $2 AND o.status <> 'CANCELLED'`

func (r *OrderRepository) GetActive(ctx context.Context, id, storeID string) (*order.Order, error) {
	q := from(ctx, r.pool)

	o, err := scanOrder(q.QueryRow(ctx, getActiveOrderSQL, id, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting active order %q", id)
	}

	if err := r.attachItems(ctx, q, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

const listOrdersSQL = `SELECT ` + orderColumns + `
	FROM orders o JOIN clients c ON c.id = o.client_id
	WHERE o.store_id = $1 ORDER BY o.order_date`

func (r *OrderRepository) ListByStore(ctx context.Context, storeID string) ([]order.Order, error) {
	q := from(ctx, r.pool)

	rows, err := q.Query(ctx, listOrdersSQL, storeID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for store %q", storeID)
	}
	defer rows.Close()

	var refs []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning order")
		}
		refs = append(refs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, q, refs); err != nil {
		return nil, err
	}

	out := make([]order.Order, len(refs))
	for i, o := range refs {
		out[i] = *o
	}
	return out, nil
}

const updateOrderStatusSQL = `UPDATE orders
	SET status = $2, version = version + 1
	WHERE id = $1 AND version = $3`

// UpdateStatus performs the version-checked status write. A zero-row
// update means the order changed under us: the caller's expected version
// is stale and the whole operation must fail.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, expectedVersion int64) error {
	tag, err := from(ctx, r.pool).Exec(ctx, updateOrderStatusSQL, id, status, expectedVersion)
	if err != nil {
		return errors.Wrapf(err, "updating status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrVersionConflict
	}
	return nil
}

const listItemsSQL = `SELECT order_id, product_id, product_name, unit_price, ordered_quantity
	FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`

func (r *OrderRepository) attachItems(ctx context.Context, q querier, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := q.Query(ctx, listItemsSQL, ids)
	if err != nil {
		return errors.Wrap(err, "listing order items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      order.LineItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.OrderedQuantity); err != nil {
			return errors.Wrap(err, "scanning order item")
		}
		o := byID[orderID]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// row abstracts pgx.Row and pgx.Rows for shared scanning.
type row interface {
	Scan(dest ...any) error
}

func scanOrder(r row) (*order.Order, error) {
	var o order.Order
	err := r.Scan(
		&o.ID, &o.StoreID, &o.Status, &o.PaymentMethod, &o.TotalPrice,
		&o.OrderDate, &o.Version,
		&o.Client.ID, &o.Client.FirstName, &o.Client.LastName, &o.Client.Email,
		&o.Client.PhoneNumber,
		&o.Client.Address.Street, &o.Client.Address.City, &o.Client.Address.State,
		&o.Client.Address.ZipCode,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
