package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item belonging to exactly one store. Stock is
// decremented by order creation and never goes negative.
type Product struct {
	ID      string
	StoreID string
	Name    string
	Price   decimal.Decimal
	Stock   int
	Image   string
	Version int64
}

// Repository defines persistence operations for the product catalog.
//
// DecrementStock must be an atomic conditional decrement: it reports false
// without changing anything when the remaining stock is smaller than qty,
// so concurrent order creation can never drive stock below zero.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, storeID string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	SoftDelete(ctx context.Context, id string) error
}
