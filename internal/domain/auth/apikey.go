package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no API key matches the lookup hash.
var ErrNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and scope data for a validated API key.
// StoreID is the store the key's owner operates; it supplies the store
// scope for order retrieval and status updates.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	StoreID string
	Scopes  []string
}

// Repository provides lookup and provisioning of API keys by HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
	Upsert(ctx context.Context, info *APIKeyInfo) error
}

// HashKey computes the hex HMAC-SHA256 of an API key under the given
// pepper. Keys are stored and compared only in this form.
func HashKey(key string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
