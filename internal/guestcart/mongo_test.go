package guestcart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (Store, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	store := NewMongoStore(db)

	ms := store.(*mongoStore)
	err = ms.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func TestMongoStore_GetNotFound(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing-session")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMongoStore_AddAndIncrement(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "sess-1", 7, 2))
	require.NoError(t, store.Add(ctx, "sess-1", 7, 1))
	require.NoError(t, store.Add(ctx, "sess-1", 8, 4))

	cart, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, int64(7), cart.Lines[0].ProductID)
	assert.Equal(t, 3, cart.Lines[0].Qty)
	assert.Equal(t, int64(8), cart.Lines[1].ProductID)
	assert.Equal(t, 4, cart.Lines[1].Qty)

	count, err := store.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMongoStore_ConcurrentAddsOfSameProduct(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	const adders = 10
	var wg sync.WaitGroup
	errs := make(chan error, adders)
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Add(ctx, "sess-1", 7, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// All adds fold into one line; no duplicate line and no lost add.
	cart, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(7), cart.Lines[0].ProductID)
	assert.Equal(t, adders, cart.Lines[0].Qty)
}

func TestMongoStore_SetQuantityAndRemove(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "sess-1", 7, 2))
	require.NoError(t, store.SetQuantity(ctx, "sess-1", 7, 6))

	cart, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 6, cart.Lines[0].Qty)

	// qty <= 0 removes the line
	require.NoError(t, store.SetQuantity(ctx, "sess-1", 7, 0))
	cart, err = store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// removing again is a no-op
	require.NoError(t, store.Remove(ctx, "sess-1", 7))
}

func TestMongoStore_Clear(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "sess-1", 7, 2))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	count, err := store.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
