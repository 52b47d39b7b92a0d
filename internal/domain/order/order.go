package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storely/storefront/internal/domain/client"
)

// PaymentMethod enumerates the accepted payment methods.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
)

// ParsePaymentMethod maps a request string onto a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard:
		return PaymentMethod(s), true
	}
	return "", false
}

// LineItem is one (product, quantity) pair within an order. Name and unit
// price are snapshotted at validation time: later catalog changes never
// alter a persisted order.
type LineItem struct {
	ProductID       string
	ProductName     string
	UnitPrice       decimal.Decimal
	OrderedQuantity int
}

// Order is the central aggregate. It owns its line-item snapshot and
// references client and store by identifier. Version is a monotonically
// increasing counter used for optimistic concurrency control.
type Order struct {
	ID            string
	StoreID       string
	Client        client.Client
	Status        Status
	PaymentMethod PaymentMethod
	TotalPrice    decimal.Decimal
	Items         []LineItem
	OrderDate     time.Time
	Version       int64
}

// Repository defines persistence operations for orders.
//
// GetActive filters to status != CANCELLED and the given store: a cancelled
// order, a missing order, and another store's order are indistinguishable
// to the caller. UpdateStatus must fail with ErrVersionConflict when the
// stored version differs from expectedVersion.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByStore(ctx context.Context, storeID string) ([]Order, error)
	GetActive(ctx context.Context, id, storeID string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, expectedVersion int64) error
}
