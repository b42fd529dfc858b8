package checkout

import (
	"context"
	"sync"

	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/payment"
)

// Registry hands out one Orchestrator per authenticated user. The
// single-attempt guard and the observable state are scoped to the user's
// checkout session: one user's pending payment never blocks, and is never
// visible to, anyone else.
type Registry struct {
	carts     Carts
	orders    OrderCreator
	provider  payment.Provider
	verifier  Verifier
	simulator payment.Simulator
	shopName  string

	mu        sync.Mutex
	byUser    map[int64]*Orchestrator
	listeners []Listener
}

func NewRegistry(carts Carts, orders OrderCreator, provider payment.Provider, verifier Verifier, simulator payment.Simulator, shopName string) *Registry {
	return &Registry{
		carts:     carts,
		orders:    orders,
		provider:  provider,
		verifier:  verifier,
		simulator: simulator,
		shopName:  shopName,
		byUser:    make(map[int64]*Orchestrator),
	}
}

// Subscribe registers a transition listener attached to every user's
// orchestrator. Register before serving traffic.
func (r *Registry) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
	for _, o := range r.byUser {
		o.Subscribe(l)
	}
}

// Start runs one checkout attempt on the caller's own orchestrator.
func (r *Registry) Start(ctx context.Context, sess domain.Session) (*Result, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return r.forUser(sess.UserID).Start(ctx, sess)
}

// State reports the caller's own checkout state. A user with no attempt on
// record, and any unauthenticated caller, is idle.
func (r *Registry) State(sess domain.Session) domain.CheckoutStatus {
	if !sess.Authenticated() {
		return domain.CheckoutStatusIdle
	}

	r.mu.Lock()
	o, ok := r.byUser[sess.UserID]
	r.mu.Unlock()
	if !ok {
		return domain.CheckoutStatusIdle
	}
	return o.State()
}

func (r *Registry) forUser(userID int64) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byUser[userID]
	if !ok {
		o = NewOrchestrator(r.carts, r.orders, r.provider, r.verifier, r.simulator, r.shopName)
		for _, l := range r.listeners {
			o.Subscribe(l)
		}
		r.byUser[userID] = o
	}
	return o
}
