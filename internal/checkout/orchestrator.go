// Package checkout drives a payment attempt from start to a terminal
// outcome, exactly once per user-initiated attempt.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/payment"
)

// Carts is the slice of the cart facade the orchestrator needs: the
// pre-flight read and the post-payment invalidation.
type Carts interface {
	Get(ctx context.Context, sess domain.Session) (*domain.Cart, error)
	Invalidate(ctx context.Context, sess domain.Session)
}

// OrderCreator asks the backend for a fresh provider order. A failed or
// abandoned order is never reused.
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string) (*domain.CheckoutOrder, error)
}

// Verifier performs the trusted confirmation call. Implemented by
// payment.Verifier.
type Verifier interface {
	Verify(ctx context.Context, token string, req domain.VerificationRequest) (*domain.VerificationResult, error)
}

// Listener observes state transitions. Callbacks run synchronously inside
// the transition and must be fast.
type Listener func(from, to domain.CheckoutStatus)

// Result is the terminal outcome of a successful attempt.
type Result struct {
	OrderID int64
	Message string
}

type Orchestrator struct {
	carts     Carts
	orders    OrderCreator
	provider  payment.Provider
	verifier  Verifier
	simulator payment.Simulator
	shopName  string

	mu        sync.Mutex
	state     domain.CheckoutStatus
	inFlight  bool
	listeners []Listener
}

func NewOrchestrator(carts Carts, orders OrderCreator, provider payment.Provider, verifier Verifier, simulator payment.Simulator, shopName string) *Orchestrator {
	return &Orchestrator{
		carts:     carts,
		orders:    orders,
		provider:  provider,
		verifier:  verifier,
		simulator: simulator,
		shopName:  shopName,
		state:     domain.CheckoutStatusIdle,
	}
}

// Subscribe registers a transition listener. Register before Start.
func (o *Orchestrator) Subscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

func (o *Orchestrator) State() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start runs one checkout attempt. Only an authenticated session with a
// non-empty cart ever reaches order creation; a second Start while one is
// pending is rejected, not queued. Succeeded is reachable only through a
// verification that answered success.
func (o *Orchestrator) Start(ctx context.Context, sess domain.Session) (*Result, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	cart, err := o.carts.Get(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	if err := o.transition(domain.CheckoutStatusOrderCreating); err != nil {
		return nil, err
	}

	order, err := o.orders.CreateOrder(ctx, sess.Token)
	if err != nil {
		o.fail()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	req, err := o.collectPayment(ctx, order)
	if err != nil {
		o.fail()
		return nil, err
	}

	if err := o.transition(domain.CheckoutStatusVerifying); err != nil {
		return nil, err
	}

	result, err := o.verifier.Verify(ctx, sess.Token, req)
	if err != nil {
		o.fail()
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	if !result.Success {
		o.fail()
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, result.Message)
	}

	if err := o.transition(domain.CheckoutStatusSucceeded); err != nil {
		return nil, err
	}

	// The server has finalized the order and emptied the cart; drop the
	// stale cached copy.
	o.carts.Invalidate(ctx, sess)

	return &Result{OrderID: result.OrderID, Message: result.Message}, nil
}

// collectPayment produces the verification request, either by simulating the
// payment (test mode, provider never invoked) or by opening the provider
// sheet and waiting for completion or dismissal.
func (o *Orchestrator) collectPayment(ctx context.Context, order *domain.CheckoutOrder) (domain.VerificationRequest, error) {
	if order.TestMode {
		if err := o.transition(domain.CheckoutStatusTestSimulating); err != nil {
			return domain.VerificationRequest{}, err
		}

		req, err := o.simulator.Simulate(ctx, order.ProviderOrderID)
		if err != nil {
			return domain.VerificationRequest{}, fmt.Errorf("payment simulation aborted: %w", err)
		}
		return req, nil
	}

	if err := o.transition(domain.CheckoutStatusPaymentAwaiting); err != nil {
		return domain.VerificationRequest{}, err
	}

	completion, err := o.provider.OpenSheet(ctx, payment.SheetOptions{
		KeyID:       order.KeyID,
		OrderID:     order.ProviderOrderID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        o.shopName,
		Description: "Order Payment",
		Prefill:     order.Prefill,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDismissed) {
			// Distinct from a generic failure; no server call is made.
			return domain.VerificationRequest{}, ErrPaymentCancelled
		}
		return domain.VerificationRequest{}, fmt.Errorf("payment step failed: %w", err)
	}

	return domain.VerificationRequest{
		ProviderOrderID:   order.ProviderOrderID,
		ProviderPaymentID: completion.PaymentID,
		ProviderSignature: completion.Signature,
	}, nil
}

// acquire claims the single checkout slot and resets a terminal state back
// to Idle for the fresh attempt.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inFlight {
		return ErrCheckoutInProgress
	}
	o.inFlight = true

	if o.state.IsTerminal() {
		o.setState(domain.CheckoutStatusIdle)
	}
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
}

func (o *Orchestrator) transition(to domain.CheckoutStatus) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !domain.CanTransitionTo(o.state, to) {
		return fmt.Errorf("%w: %s -> %s", errIllegalTransition, o.state, to)
	}
	o.setState(to)
	return nil
}

func (o *Orchestrator) fail() {
	if err := o.transition(domain.CheckoutStatusFailed); err != nil {
		log.Printf("checkout: %v", err)
	}
}

// caller must hold o.mu
func (o *Orchestrator) setState(to domain.CheckoutStatus) {
	from := o.state
	o.state = to
	for _, l := range o.listeners {
		l(from, to)
	}
}
