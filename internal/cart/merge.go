package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/guestcart"
)

var (
	// ErrMergeFailed marks a failed login-time merge. Callers treat it as a
	// non-fatal warning: sign-in continues and the guest cart stays intact
	// for a later attempt.
	ErrMergeFailed = errors.New("cart merge failed")

	ErrMergeRequiresAuth = errors.New("cart merge requires an authenticated session")
)

// MergeOnLogin moves the guest cart into the server-owned cart. It is invoked
// exactly once, from the single post-login call site, and never from a retry
// loop: the server adds quantities, so a repeated merge would double them.
//
// An empty guest cart skips the network entirely. On success the remote cart
// cache is invalidated and the guest cart is cleared unconditionally, even if
// the server silently dropped lines for stock reasons. On failure the guest
// cart is left untouched.
func (f *Facade) MergeOnLogin(ctx context.Context, sess domain.Session) (*domain.Cart, error) {
	if !sess.Authenticated() {
		return nil, ErrMergeRequiresAuth
	}

	stored, err := f.guest.Get(ctx, sess.GuestID)
	if err != nil {
		if errors.Is(err, guestcart.ErrCartNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}
	if len(stored.Lines) == 0 {
		return nil, nil
	}

	merged, err := f.api.Merge(ctx, sess.Token, stored.Lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}

	f.invalidate(sess.UserID)

	if errClear := f.guest.Clear(ctx, sess.GuestID); errClear != nil {
		// The merge itself succeeded; a lingering guest cart is a stale
		// leftover, not a failed login.
		log.Printf("failed to clear guest cart %s after merge: %v", sess.GuestID, errClear)
	}

	return merged, nil
}
