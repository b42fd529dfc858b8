package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jaee/storefront/internal/domain"
)

// Simulator synthesizes provider callback tokens for test-mode checkouts,
// where no external provider is ever invoked. The backend skips signature
// verification for these orders, so the tokens only need to be unique.
type Simulator struct {
	// Delay preserves the perceived payment flow; zero in tests.
	Delay time.Duration
}

// Simulate waits the configured delay and returns a verification request
// with time-derived placeholder identifiers, unique across rapid attempts.
func (s Simulator) Simulate(ctx context.Context, providerOrderID string) (domain.VerificationRequest, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return domain.VerificationRequest{}, ctx.Err()
		}
	}

	now := time.Now().UnixNano()
	return domain.VerificationRequest{
		ProviderOrderID:   providerOrderID,
		ProviderPaymentID: fmt.Sprintf("test_pay_%d", now),
		ProviderSignature: fmt.Sprintf("test_signature_%d", now),
	}, nil
}
