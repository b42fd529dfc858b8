package checkout

import (
	"context"
	"sync"

	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/payment"
)

// mockCarts implements Carts for testing
type mockCarts struct {
	Cart        *domain.Cart
	Err         error
	Invalidated int
}

func (m *mockCarts) Get(_ context.Context, _ domain.Session) (*domain.Cart, error) {
	return m.Cart, m.Err
}

func (m *mockCarts) Invalidate(_ context.Context, _ domain.Session) {
	m.Invalidated++
}

// mockOrders implements OrderCreator for testing
type mockOrders struct {
	Order *domain.CheckoutOrder
	Err   error
	Calls int
}

func (m *mockOrders) CreateOrder(_ context.Context, _ string) (*domain.CheckoutOrder, error) {
	m.Calls++
	return m.Order, m.Err
}

// mockProvider implements payment.Provider for testing
type mockProvider struct {
	Completion *payment.Completion
	Err        error
	Calls      int
	GotOpts    payment.SheetOptions
}

func (m *mockProvider) OpenSheet(_ context.Context, opts payment.SheetOptions) (*payment.Completion, error) {
	m.Calls++
	m.GotOpts = opts
	return m.Completion, m.Err
}

// mockVerifier implements Verifier for testing
type mockVerifier struct {
	mu      sync.Mutex
	Result  *domain.VerificationResult
	Err     error
	Calls   int
	GotReqs []domain.VerificationRequest
}

func (m *mockVerifier) Verify(_ context.Context, _ string, req domain.VerificationRequest) (*domain.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.GotReqs = append(m.GotReqs, req)
	return m.Result, m.Err
}
