package cart

import (
	"context"
	"sync"

	"github.com/jaee/storefront/internal/cache"
	"github.com/jaee/storefront/internal/domain"
)

// mockShopAPI implements ShopAPI for testing
type mockShopAPI struct {
	mu sync.Mutex

	CartResult   *domain.Cart
	CartErr      error
	CartCalls    int
	MutateResult *domain.Cart
	MutateErr    error
	MergeResult  *domain.Cart
	MergeErr     error
	MergeCalls   int
	MergedLines  []domain.GuestCartLine
	Products     map[int64]*domain.Product
	ProductErr   map[int64]error

	AddedProductID int64
	AddedQty       int
	UpdatedLineID  int64
	UpdatedQty     int
	RemovedLineID  int64
}

func (m *mockShopAPI) Cart(_ context.Context, _ string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartCalls++
	return m.CartResult, m.CartErr
}

func (m *mockShopAPI) AddItem(_ context.Context, _ string, productID int64, qty int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddedProductID = productID
	m.AddedQty = qty
	return m.MutateResult, m.MutateErr
}

func (m *mockShopAPI) UpdateItem(_ context.Context, _ string, lineID int64, qty int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatedLineID = lineID
	m.UpdatedQty = qty
	return m.MutateResult, m.MutateErr
}

func (m *mockShopAPI) RemoveItem(_ context.Context, _ string, lineID int64) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemovedLineID = lineID
	return m.MutateResult, m.MutateErr
}

func (m *mockShopAPI) Merge(_ context.Context, _ string, lines []domain.GuestCartLine) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MergeCalls++
	m.MergedLines = lines
	return m.MergeResult, m.MergeErr
}

func (m *mockShopAPI) Product(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ProductErr[id]; ok {
		return nil, err
	}
	if p, ok := m.Products[id]; ok {
		return p, nil
	}
	return nil, errProductNotFound
}

// memoryCache implements cache.CartCache for testing
type memoryCache struct {
	mu      sync.Mutex
	carts   map[int64]*domain.Cart
	GetErr  error
	SetErr  error
	DelErr  error
	Deletes int
	Sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{carts: make(map[int64]*domain.Cart)}
}

func (c *memoryCache) Get(_ context.Context, userID int64) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	cart, ok := c.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *memoryCache) Set(_ context.Context, userID int64, cart *domain.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	if c.SetErr != nil {
		return c.SetErr
	}
	c.carts[userID] = cart
	return nil
}

func (c *memoryCache) Delete(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deletes++
	if c.DelErr != nil {
		return c.DelErr
	}
	delete(c.carts, userID)
	return nil
}
