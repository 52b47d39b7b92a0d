package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested store does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("store not found")

// Store is an external reference aggregate: it is created once by the store
// owner and is immutable as far as the order lifecycle is concerned.
type Store struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Repository defines persistence operations for stores.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Store, error)
	List(ctx context.Context) ([]Store, error)
	Create(ctx context.Context, s *Store) error
}
