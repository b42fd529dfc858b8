package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaee/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_ProducesUniqueTokens(t *testing.T) {
	sim := Simulator{}
	ctx := context.Background()

	first, err := sim.Simulate(ctx, "order_1")
	require.NoError(t, err)
	second, err := sim.Simulate(ctx, "order_1")
	require.NoError(t, err)

	assert.Equal(t, "order_1", first.ProviderOrderID)
	assert.NotEmpty(t, first.ProviderPaymentID)
	assert.NotEmpty(t, first.ProviderSignature)
	assert.Contains(t, first.ProviderPaymentID, "test_pay_")
	assert.Contains(t, first.ProviderSignature, "test_signature_")

	// Rapid successive attempts must not collide.
	assert.NotEqual(t, first.ProviderPaymentID, second.ProviderPaymentID)
	assert.NotEqual(t, first.ProviderSignature, second.ProviderSignature)
}

func TestSimulate_RespectsDelay(t *testing.T) {
	sim := Simulator{Delay: 30 * time.Millisecond}

	start := time.Now()
	_, err := sim.Simulate(context.Background(), "order_1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSimulate_CancelledContext(t *testing.T) {
	sim := Simulator{Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Simulate(ctx, "order_1")
	assert.ErrorIs(t, err, context.Canceled)
}

type stubVerifyAPI struct {
	result *domain.VerificationResult
	err    error
	calls  int
	gotReq domain.VerificationRequest
}

func (s *stubVerifyAPI) VerifyPayment(_ context.Context, _ string, req domain.VerificationRequest) (*domain.VerificationResult, error) {
	s.calls++
	s.gotReq = req
	return s.result, s.err
}

func TestVerifier_SurfacesBackendVerdict(t *testing.T) {
	api := &stubVerifyAPI{result: &domain.VerificationResult{Success: true, OrderID: 42, Message: "ok"}}
	v := NewVerifier(api)

	result, err := v.Verify(context.Background(), "tok", domain.VerificationRequest{ProviderOrderID: "order_1"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.OrderID)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "order_1", api.gotReq.ProviderOrderID)
}

func TestVerifier_RejectionIsNotRewritten(t *testing.T) {
	api := &stubVerifyAPI{result: &domain.VerificationResult{Success: false, Message: "signature mismatch"}}
	v := NewVerifier(api)

	result, err := v.Verify(context.Background(), "tok", domain.VerificationRequest{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "signature mismatch", result.Message)
}

func TestVerifier_TransportErrorWrapped(t *testing.T) {
	wire := errors.New("connection refused")
	api := &stubVerifyAPI{err: wire}
	v := NewVerifier(api)

	_, err := v.Verify(context.Background(), "tok", domain.VerificationRequest{})
	assert.ErrorIs(t, err, wire)
}

func TestUnavailableProvider(t *testing.T) {
	_, err := UnavailableProvider{}.OpenSheet(context.Background(), SheetOptions{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
