package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is the repository-level miss for order lookups.
var ErrNotFound = errors.New("order not found")

// ErrVersionConflict is returned when a version-checked write observes a
// different version than the one read at load time. The whole operation
// fails; callers may retry.
var ErrVersionConflict = errors.New("order version conflict")

// Kind classifies a business-rule failure the way the HTTP layer needs to
// present it.
type Kind uint8

const (
	// KindNotFound covers entities that do not exist or are not visible to
	// the caller under current rules (store mismatch, cancelled order).
	KindNotFound Kind = iota + 1
	// KindBadRequest covers well-formed requests violating an invariant.
	KindBadRequest
)

// Error is a business-rule failure with a literal, consumer-visible
// message. Message text is part of the contract and must match exactly.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFoundf builds a KindNotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf builds a KindBadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}
