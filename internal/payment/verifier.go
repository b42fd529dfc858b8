package payment

import (
	"context"
	"fmt"

	"github.com/jaee/storefront/internal/domain"
)

// verifyAPI is the slice of the shop API client the verifier needs.
type verifyAPI interface {
	VerifyPayment(ctx context.Context, token string, req domain.VerificationRequest) (*domain.VerificationResult, error)
}

// Verifier performs the single trusted call that confirms a payment and
// finalizes the order. It makes no local trust decision: the backend's
// success boolean and message are surfaced untouched. Callers invoke it at
// most once per completed payment event.
type Verifier struct {
	api verifyAPI
}

func NewVerifier(api verifyAPI) *Verifier {
	return &Verifier{api: api}
}

func (v *Verifier) Verify(ctx context.Context, token string, req domain.VerificationRequest) (*domain.VerificationResult, error) {
	result, err := v.api.VerifyPayment(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("payment verification call failed: %w", err)
	}
	return result, nil
}
