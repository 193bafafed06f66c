package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/pkg/redis"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeRedis) CartStateKey(terminalID string) string {
	return "pos:cart:" + terminalID
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	backend := newFakeRedis()
	store, err := NewRedisStore(backend, time.Hour)
	require.NoError(t, err)

	state := cart.NewTransactionState()
	_, err = state.Cart.AddLine("Tarpaulin", decimal.NewFromInt(250), 2)
	require.NoError(t, err)
	state.Discount.Unlocked = true
	state.Discount.Amount = decimal.NewFromInt(50)

	require.NoError(t, store.Save(context.Background(), "T1", state))
	assert.Equal(t, time.Hour, backend.ttls["pos:cart:T1"])

	loaded, err := store.Load(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Cart.Subtotal().Equal(decimal.NewFromInt(500)))
	assert.True(t, loaded.Discount.Unlocked)
	assert.True(t, loaded.Discount.Amount.Equal(decimal.NewFromInt(50)))
}

func TestRedisStoreMissReturnsNil(t *testing.T) {
	t.Parallel()

	store, err := NewRedisStore(newFakeRedis(), time.Hour)
	require.NoError(t, err)

	state, err := store.Load(context.Background(), "T9")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRedisStoreClear(t *testing.T) {
	t.Parallel()

	backend := newFakeRedis()
	store, err := NewRedisStore(backend, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "T1", cart.NewTransactionState()))
	require.NoError(t, store.Clear(context.Background(), "T1"))

	state, err := store.Load(context.Background(), "T1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryStoreCopiesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	state := cart.NewTransactionState()
	_, err := state.Cart.AddLine("Mug", decimal.NewFromInt(120), 1)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "T1", state))

	// Mutating the saved pointer must not leak into the stored copy.
	state.Cart.Clear()

	loaded, err := store.Load(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Cart.Lines, 1)
}
