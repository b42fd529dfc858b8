package guestcart

import (
	"context"
	"errors"

	"github.com/jaee/storefront/internal/domain"
)

// Store holds the anonymous cart for a session. The cart facade defines the
// contract; implementations (memory, MongoDB) live alongside.
//
// Add merges by product id: an existing line has its quantity incremented.
// SetQuantity with qty <= 0 removes the line; setting an absent line is a
// no-op. Remove is idempotent. None of the operations fail for structurally
// valid input beyond what the backing storage surfaces.
type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.GuestCart, error)
	Add(ctx context.Context, sessionID string, productID int64, qty int) error
	SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) error
	Remove(ctx context.Context, sessionID string, productID int64) error
	Clear(ctx context.Context, sessionID string) error
	Count(ctx context.Context, sessionID string) (int, error)
}

var (
	ErrCartNotFound = errors.New("guest cart not found")
	ErrInvalidQty   = errors.New("quantity must be at least 1")
)
