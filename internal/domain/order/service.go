package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storely/storefront/internal/domain/client"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
	"github.com/storely/storefront/internal/events"
)

// TxRunner runs fn inside a single storage transaction: every write issued
// through the repositories within fn commits atomically or not at all.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Outbox enqueues events as part of the surrounding transaction so they are
// published only for state that actually committed.
type Outbox interface {
	Enqueue(ctx context.Context, ev events.Event) error
}

// Service owns the order lifecycle: creation against store inventory, the
// status state machine, and store-scoped retrieval.
type Service struct {
	stores   store.Repository
	products product.Repository
	clients  client.Repository
	orders   Repository
	tx       TxRunner
	outbox   Outbox
	phones   *client.PhoneIndex

	now   func() time.Time
	newID func() string
}

// NewService creates the order lifecycle service with its required
// dependencies.
func NewService(
	stores store.Repository,
	products product.Repository,
	clients client.Repository,
	orders Repository,
	tx TxRunner,
	outbox Outbox,
) *Service {
	return &Service{
		stores:   stores,
		products: products,
		clients:  clients,
		orders:   orders,
		tx:       tx,
		outbox:   outbox,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// UsePhoneIndex installs a bloom-filter fast path for client phone lookups.
// Optional; without it every order creation issues the exact query.
func (s *Service) UsePhoneIndex(idx *client.PhoneIndex) {
	s.phones = idx
}

// NewOrderItem is one requested (product, quantity) pair.
type NewOrderItem struct {
	ProductID       string
	OrderedQuantity int
}

// NewClient holds the buyer details supplied with an order.
type NewClient struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     client.Address
}

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	StoreID       string
	PaymentMethod PaymentMethod
	Items         []NewOrderItem
	Client        NewClient
}

// CreateOrder validates the request against store inventory, reserves
// stock, prices the order, resolves the client by phone number, and
// persists the order with status PENDING.
//
// Stock decrements, client creation, the order insert, and the
// order:created outbox row form one transaction: a failure at any line
// item leaves no partial effects. Line items are validated strictly in
// input order, and earlier decrements are visible to later items, so a
// product listed twice is checked against cumulative demand.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	st, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("Store %s Not Found", req.StoreID)
		}
		return nil, errors.Wrapf(err, "get store %s", req.StoreID)
	}

	var created *Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		items := make([]LineItem, 0, len(req.Items))
		total := decimal.Zero

		for _, it := range req.Items {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return NotFoundf("Product with id %s Not Found", it.ProductID)
				}
				return errors.Wrapf(err, "get product %s", it.ProductID)
			}
			if p.StoreID != st.ID {
				return BadRequestf("Product available within another store")
			}
			if it.OrderedQuantity > p.Stock {
				return BadRequestf("Ordered quantity is more than the available stock")
			}

			// The conditional decrement re-checks stock atomically, closing
			// the window between the read above and this write under
			// concurrent orders.
			ok, err := s.products.DecrementStock(ctx, p.ID, it.OrderedQuantity)
			if err != nil {
				return errors.Wrapf(err, "decrement stock for product %s", p.ID)
			}
			if !ok {
				return BadRequestf("Ordered quantity is more than the available stock")
			}

			items = append(items, LineItem{
				ProductID:       p.ID,
				ProductName:     p.Name,
				UnitPrice:       p.Price,
				OrderedQuantity: it.OrderedQuantity,
			})
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.OrderedQuantity))))
		}

		cl, err := s.resolveClient(ctx, req.Client)
		if err != nil {
			return err
		}

		o := &Order{
			ID:            s.newID(),
			StoreID:       st.ID,
			Client:        *cl,
			Status:        StatusPending,
			PaymentMethod: req.PaymentMethod,
			TotalPrice:    total,
			Items:         items,
			OrderDate:     s.now(),
			Version:       1,
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		ev := events.OrderCreated(o.ID, string(o.Status), eventItems(items))
		if err := s.outbox.Enqueue(ctx, ev); err != nil {
			return errors.Wrap(err, "enqueue order created")
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveClient finds the client by phone number, creating one with the
// supplied details on first order. The phone index short-circuits the
// lookup for definitely-unknown numbers; a stale positive after a rollback
// only costs the exact query.
func (s *Service) resolveClient(ctx context.Context, nc NewClient) (*client.Client, error) {
	if s.phones == nil || s.phones.MayExist(nc.PhoneNumber) {
		cl, err := s.clients.GetByPhone(ctx, nc.PhoneNumber)
		if err == nil {
			return cl, nil
		}
		if !errors.Is(err, client.ErrNotFound) {
			return nil, errors.Wrap(err, "find client by phone")
		}
	}

	cl := &client.Client{
		ID:          s.newID(),
		FirstName:   nc.FirstName,
		LastName:    nc.LastName,
		Email:       nc.Email,
		PhoneNumber: nc.PhoneNumber,
		Address:     nc.Address,
	}
	if err := s.clients.Create(ctx, cl); err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	if s.phones != nil {
		s.phones.Add(nc.PhoneNumber)
	}
	return cl, nil
}

// ListOrders returns all orders of the store with client data attached.
func (s *Service) ListOrders(ctx context.Context, storeID string) ([]Order, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("Store %s not found", storeID)
		}
		return nil, errors.Wrapf(err, "get store %s", storeID)
	}

	orders, err := s.orders.ListByStore(ctx, storeID)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders for store %s", storeID)
	}
	return orders, nil
}

// GetOrder returns one order scoped to the store. A missing order and an
// order belonging to another store produce the same error so callers
// cannot tell "doesn't exist" from "not yours".
func (s *Service) GetOrder(ctx context.Context, orderID, storeID string) (*Order, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("Store %s not found", storeID)
		}
		return nil, errors.Wrapf(err, "get store %s", storeID)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFoundf("Order %s not found in current store", orderID)
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}
	if o.StoreID != storeID {
		return nil, NotFoundf("Order %s not found in current store", orderID)
	}
	return o, nil
}

// UpdateOrder applies a status transition. Cancelled orders are filtered
// out at lookup and report the same not-found as nonexistent ones. A
// same-status update is a no-op returning the current order. The write is
// version-checked; a concurrent modification fails with
// ErrVersionConflict instead of silently overwriting.
//
// Cancellation does not restore inventory.
func (s *Service) UpdateOrder(ctx context.Context, orderID, storeID string, to Status) (*Order, error) {
	o, err := s.orders.GetActive(ctx, orderID, storeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFoundf("Order Not Found in Current Store")
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if o.Status == to {
		return o, nil
	}
	if !o.Status.allows(to) {
		return nil, BadRequestf("Can't update order status from %s to %s", o.Status, to)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateStatus(ctx, o.ID, to, o.Version); err != nil {
			return err
		}
		if to == StatusCancelled {
			ev := events.OrderCancelled(o.ID, string(to), eventItems(o.Items))
			if err := s.outbox.Enqueue(ctx, ev); err != nil {
				return errors.Wrap(err, "enqueue order cancelled")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.Status = to
	o.Version++
	return o, nil
}

func eventItems(items []LineItem) []events.Item {
	out := make([]events.Item, len(items))
	for i, it := range items {
		out[i] = events.Item{ID: it.ProductID, Quantity: it.OrderedQuantity}
	}
	return out
}
