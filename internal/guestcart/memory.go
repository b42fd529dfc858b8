package guestcart

import (
	"context"
	"sync"
	"time"

	"github.com/jaee/storefront/internal/domain"
)

// MemoryStore keeps guest carts in process memory. Used in tests and in
// single-instance deployments where cart loss on restart is acceptable.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.GuestCart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*domain.GuestCart),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.GuestCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}

	// Copy so callers cannot mutate stored state.
	out := *cart
	out.Lines = make([]domain.GuestCartLine, len(cart.Lines))
	copy(out.Lines, cart.Lines)
	return &out, nil
}

func (s *MemoryStore) Add(_ context.Context, sessionID string, productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreate(sessionID)
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Qty += qty
			cart.UpdatedAt = time.Now()
			return nil
		}
	}

	cart.Lines = append(cart.Lines, domain.GuestCartLine{ProductID: productID, Qty: qty})
	cart.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, sessionID, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return nil
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Qty = qty
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, sessionID string, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return nil
	}

	lines := cart.Lines[:0]
	for _, l := range cart.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	cart.Lines = lines
	cart.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

func (s *MemoryStore) Count(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return 0, nil
	}
	return cart.Count(), nil
}

// caller must hold s.mu
func (s *MemoryStore) getOrCreate(sessionID string) *domain.GuestCart {
	cart, ok := s.carts[sessionID]
	if !ok {
		now := time.Now()
		cart = &domain.GuestCart{
			SessionID: sessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.carts[sessionID] = cart
	}
	return cart
}
