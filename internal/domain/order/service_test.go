package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/storefront/internal/domain/client"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
	"github.com/storely/storefront/internal/events"
)

// --- Mock implementations ---

type mockStoreRepo struct {
	byID map[string]*store.Store
}

func (m *mockStoreRepo) GetByID(_ context.Context, id string) (*store.Store, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (m *mockStoreRepo) List(_ context.Context) ([]store.Store, error) { return nil, nil }
func (m *mockStoreRepo) Create(_ context.Context, _ *store.Store) error {
	return nil
}

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) SoftDelete(_ context.Context, _ string) error       { return nil }

func (m *mockProductRepo) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	p, ok := m.byID[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.Version++
	return true, nil
}

type mockClientRepo struct {
	byPhone map[string]*client.Client
	created []*client.Client
}

func (m *mockClientRepo) GetByPhone(_ context.Context, phone string) (*client.Client, error) {
	c, ok := m.byPhone[phone]
	if !ok {
		return nil, client.ErrNotFound
	}
	return c, nil
}

func (m *mockClientRepo) Create(_ context.Context, c *client.Client) error {
	if m.byPhone == nil {
		m.byPhone = make(map[string]*client.Client)
	}
	m.byPhone[c.PhoneNumber] = c
	m.created = append(m.created, c)
	return nil
}

func (m *mockClientRepo) ListPhones(_ context.Context) ([]string, error) { return nil, nil }

type mockOrderRepo struct {
	byID        map[string]*Order
	lastVersion int64
	updateErr   error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.byID == nil {
		m.byID = make(map[string]*Order)
	}
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByStore(_ context.Context, storeID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.StoreID == storeID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) GetActive(_ context.Context, id, storeID string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok || o.StoreID != storeID || o.Status == StatusCancelled {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status, expectedVersion int64) error {
	m.lastVersion = expectedVersion
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.byID[id]
	if !ok || o.Version != expectedVersion {
		return ErrVersionConflict
	}
	o.Status = status
	o.Version++
	return nil
}

// passTx runs fn directly: transactional boundaries are the storage layer's
// concern and irrelevant to these tests.
type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockOutbox struct {
	enqueued []events.Event
}

func (m *mockOutbox) Enqueue(_ context.Context, ev events.Event) error {
	m.enqueued = append(m.enqueued, ev)
	return nil
}

// --- Helpers ---

type fixture struct {
	stores   *mockStoreRepo
	products *mockProductRepo
	clients  *mockClientRepo
	orders   *mockOrderRepo
	outbox   *mockOutbox
	svc      *Service
}

func newFixture(products ...product.Product) *fixture {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	f := &fixture{
		stores:   &mockStoreRepo{byID: map[string]*store.Store{"s1": {ID: "s1", Name: "Main"}}},
		products: &mockProductRepo{byID: byID},
		clients:  &mockClientRepo{},
		orders:   &mockOrderRepo{},
		outbox:   &mockOutbox{},
	}
	f.svc = NewService(f.stores, f.products, f.clients, f.orders, passTx{}, f.outbox)
	return f
}

func testProduct(id, storeID string, price string, stock int) product.Product {
	return product.Product{
		ID:      id,
		StoreID: storeID,
		Name:    "Product " + id,
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
		Version: 1,
	}
}

func testClient(phone string) NewClient {
	return NewClient{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: phone,
		Address: client.Address{
			Street: "1 Analytical Way", City: "London", State: "LDN", ZipCode: "E1",
		},
	}
}

func createReq(items ...NewOrderItem) CreateOrderRequest {
	return CreateOrderRequest{
		StoreID:       "s1",
		PaymentMethod: PaymentCash,
		Items:         items,
		Client:        testClient("+4400001"),
	}
}

// --- CreateOrder ---

func TestCreateOrder_StoreNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{StoreID: "nope"})

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindNotFound, oerr.Kind)
	assert.Equal(t, "Store nope Not Found", oerr.Message)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "missing", OrderedQuantity: 1},
	))

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindNotFound, oerr.Kind)
	assert.Equal(t, "Product with id missing Not Found", oerr.Message)
}

func TestCreateOrder_ProductFromAnotherStore(t *testing.T) {
	f := newFixture(testProduct("p1", "other-store", "10.00", 5))

	_, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindBadRequest, oerr.Kind)
	assert.Equal(t, "Product available within another store", oerr.Message)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 3))

	_, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 4},
	))

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindBadRequest, oerr.Kind)
	assert.Equal(t, "Ordered quantity is more than the available stock", oerr.Message)
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(
		testProduct("p1", "s1", "120.00", 100),
		testProduct("p2", "s1", "9.50", 10),
	)

	o, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 5},
		NewOrderItem{ProductID: "p2", OrderedQuantity: 2},
	))
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentCash, o.PaymentMethod)
	assert.Equal(t, int64(1), o.Version)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("619.00")),
		"total %s", o.TotalPrice)

	// Stock is reserved immediately.
	assert.Equal(t, 95, f.products.byID["p1"].Stock)
	assert.Equal(t, 8, f.products.byID["p2"].Stock)

	// Line items are snapshots.
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Product p1", o.Items[0].ProductName)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("120.00")))

	// One order:created event went to the outbox.
	require.Len(t, f.outbox.enqueued, 1)
	assert.Equal(t, events.SubjectOrderCreated, f.outbox.enqueued[0].Subject)
	assert.Equal(t, o.ID, f.outbox.enqueued[0].Key)
}

func TestCreateOrder_DuplicateItemChecksCumulativeDemand(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))

	_, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 3},
		NewOrderItem{ProductID: "p1", OrderedQuantity: 3},
	))

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "Ordered quantity is more than the available stock", oerr.Message)
}

func TestCreateOrder_NewClientIsCreated(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))

	o, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))
	require.NoError(t, err)

	require.Len(t, f.clients.created, 1)
	assert.Equal(t, "+4400001", o.Client.PhoneNumber)
	assert.Equal(t, "Ada", o.Client.FirstName)
}

func TestCreateOrder_ExistingClientReusedByPhone(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	existing := &client.Client{ID: "c-1", FirstName: "Grace", PhoneNumber: "+4400001"}
	f.clients.byPhone = map[string]*client.Client{"+4400001": existing}

	req := createReq(NewOrderItem{ProductID: "p1", OrderedQuantity: 1})
	req.Client.FirstName = "Someone Else"

	o, err := f.svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	// The stored client wins over the submitted details.
	assert.Equal(t, "c-1", o.Client.ID)
	assert.Equal(t, "Grace", o.Client.FirstName)
	assert.Empty(t, f.clients.created)
}

func TestCreateOrder_PhoneIndexSkipsLookupForUnknownNumbers(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	idx := client.NewPhoneIndex(1000, 0.01)
	f.svc.UsePhoneIndex(idx)

	_, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))
	require.NoError(t, err)

	// The number is indexed after creation so a second order finds it.
	assert.True(t, idx.MayExist("+4400001"))

	o2, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))
	require.NoError(t, err)
	require.Len(t, f.clients.created, 1)
	assert.Equal(t, f.clients.created[0].ID, o2.Client.ID)
}

// --- ListOrders / GetOrder ---

func TestListOrders_StoreNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListOrders(context.Background(), "nope")

	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "Store nope not found", oerr.Message)
}

func TestGetOrder_ScopedToStore(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	f.stores.byID["s2"] = &store.Store{ID: "s2", Name: "Other"}

	o, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))
	require.NoError(t, err)

	got, err := f.svc.GetOrder(context.Background(), o.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// Another store sees the same error as for a nonexistent order.
	_, err = f.svc.GetOrder(context.Background(), o.ID, "s2")
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "Order "+o.ID+" not found in current store", oerr.Message)

	_, err = f.svc.GetOrder(context.Background(), "ghost", "s1")
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "Order ghost not found in current store", oerr.Message)
}

// --- UpdateOrder ---

func placeOrder(t *testing.T, f *fixture) *Order {
	t.Helper()
	o, err := f.svc.CreateOrder(context.Background(), createReq(
		NewOrderItem{ProductID: "p1", OrderedQuantity: 1},
	))
	require.NoError(t, err)
	return o
}

func TestUpdateOrder_PendingToConfirmed(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)

	got, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, int64(1), f.orders.lastVersion)
	// No cancellation event for a confirm.
	assert.Len(t, f.outbox.enqueued, 1)
}

func TestUpdateOrder_PendingToCancelledEmitsEvent(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)

	got, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	require.Len(t, f.outbox.enqueued, 2)
	assert.Equal(t, events.SubjectOrderCancelled, f.outbox.enqueued[1].Subject)
}

func TestUpdateOrder_CancellationKeepsStock(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)
	require.Equal(t, 4, f.products.byID["p1"].Stock)

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, 4, f.products.byID["p1"].Stock)
}

func TestUpdateOrder_ConfirmedIsTerminal(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusConfirmed)
	require.NoError(t, err)

	for _, to := range []Status{StatusPending, StatusCancelled} {
		_, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", to)
		var oerr *Error
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindBadRequest, oerr.Kind)
		assert.Equal(t, "Can't update order status from CONFIRMED to "+string(to), oerr.Message)
	}
}

func TestUpdateOrder_SameStatusIsNoOp(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)

	got, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusPending)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version, "no-op must not bump the version")
}

func TestUpdateOrder_CancelledOrderIsInvisible(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusConfirmed)
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindNotFound, oerr.Kind)
	assert.Equal(t, "Order Not Found in Current Store", oerr.Message)
}

func TestUpdateOrder_VersionConflictPropagates(t *testing.T) {
	f := newFixture(testProduct("p1", "s1", "10.00", 5))
	o := placeOrder(t, f)
	f.orders.updateErr = ErrVersionConflict

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, "s1", StatusConfirmed)
	require.ErrorIs(t, err, ErrVersionConflict)
}
