package cache

import (
	"context"
	"errors"

	"github.com/jaee/storefront/internal/domain"
)

// CartCache holds the last cart the shop API returned for a user. It is a
// read-through cache: every remote mutation is followed by a synchronous
// Delete so the next read reflects server truth.
type CartCache interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Set(ctx context.Context, userID int64, cart *domain.Cart) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
