package client

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no client matches the lookup.
var ErrNotFound = errors.New("client not found")

// Client is a buyer identified by phone number (unique natural key).
// Clients are created lazily on first order and never deleted here.
type Client struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     Address
}

// Address is the client's delivery address.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// Repository defines persistence operations for clients.
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*Client, error)
	Create(ctx context.Context, c *Client) error
	ListPhones(ctx context.Context) ([]string, error)
}
