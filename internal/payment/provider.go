// Package payment holds the boundary to the external payment provider and
// the trusted verification call that gates order finalization.
package payment

import (
	"context"
	"errors"

	"github.com/jaee/storefront/internal/domain"
)

var (
	// ErrDismissed is returned when the customer closes the payment sheet
	// without paying. No server call has been made at that point.
	ErrDismissed = errors.New("payment dismissed by customer")

	// ErrUnavailable is returned when the provider SDK cannot be loaded.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// SheetOptions parameterizes one payment sheet launch.
type SheetOptions struct {
	KeyID       string
	OrderID     string
	Amount      int64 // minor currency units
	Currency    string
	Name        string
	Description string
	Prefill     domain.Prefill
}

// Completion carries the provider callback tokens after a finished payment.
type Completion struct {
	PaymentID string
	Signature string
}

// Provider opens the external payment sheet and blocks until the customer
// either completes the payment or dismisses the sheet. It collapses the
// SDK's completion/dismissal callbacks into a single call: a Completion on
// success, ErrDismissed on cancellation, ErrUnavailable when the SDK could
// not be loaded.
type Provider interface {
	OpenSheet(ctx context.Context, opts SheetOptions) (*Completion, error)
}

// UnavailableProvider is the default wiring when no live provider SDK is
// configured. Live checkouts fail fast with ErrUnavailable; test-mode
// checkouts never reach the provider at all.
type UnavailableProvider struct{}

func (UnavailableProvider) OpenSheet(context.Context, SheetOptions) (*Completion, error) {
	return nil, ErrUnavailable
}
