package orders

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
)

type stubFetcher struct {
	calls  atomic.Int64
	orders []orderstore.Order
	err    error
}

func (s *stubFetcher) FetchOrders(_ context.Context) ([]orderstore.Order, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func newTestResolver(t *testing.T, fetcher *stubFetcher, ttl time.Duration) *Resolver {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	resolver, err := NewResolver(fetcher, NewScanCodeParser(config.ReceiptConfig{}), ttl, logg)
	require.NoError(t, err)
	return resolver
}

func sampleOrders() []orderstore.Order {
	return []orderstore.Order{
		{ID: 123, OrderNumber: "25-200-000123", CustomerName: "Dela Cruz", ServiceType: "Tarpaulin", TotalAmount: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(200)},
		{ID: 124, OrderNumber: "25-200-000124", CustomerName: "Reyes", ServiceType: "Mug Print", TotalAmount: decimal.NewFromInt(350)},
	}
}

func TestResolveByCodeUsesCache(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	order, err := resolver.ResolveByCode(context.Background(), "25-200-000123")
	require.NoError(t, err)
	assert.Equal(t, int64(123), order.ID)

	// Second hit within the TTL must not refetch.
	_, err = resolver.ResolveByCode(context.Background(), "124")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestResolveByCodeRefetchesOnMiss(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	// Warm the cache, then make a new order appear remotely.
	_, err := resolver.ResolveByCode(context.Background(), "123")
	require.NoError(t, err)
	fetcher.orders = append(fetcher.orders, orderstore.Order{ID: 500, OrderNumber: "25-200-000500"})

	order, err := resolver.ResolveByCode(context.Background(), "500")
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.ID)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestResolveByCodeNotFound(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	_, err := resolver.ResolveByCode(context.Background(), "999")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestResolveByCodeRejectsNonCode(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	_, err := resolver.ResolveByCode(context.Background(), "abc")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, fetcher.calls.Load())
}

func TestSearchMatchesSubstrings(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	byCustomer, err := resolver.Search(context.Background(), "dela")
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, int64(123), byCustomer[0].ID)

	byService, err := resolver.Search(context.Background(), "MUG")
	require.NoError(t, err)
	require.Len(t, byService, 1)
	assert.Equal(t, int64(124), byService[0].ID)

	byNumber, err := resolver.Search(context.Background(), "25-200")
	require.NoError(t, err)
	assert.Len(t, byNumber, 2)

	none, err := resolver.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSnapshotExpires(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, 10*time.Millisecond)

	current := time.Now()
	resolver.now = func() time.Time { return current }

	_, err := resolver.Search(context.Background(), "dela")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetcher.calls.Load())

	current = current.Add(time.Second)
	_, err = resolver.Search(context.Background(), "dela")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestInvalidateForcesRefetch(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{orders: sampleOrders()}
	resolver := newTestResolver(t, fetcher, time.Minute)

	_, err := resolver.Search(context.Background(), "dela")
	require.NoError(t, err)
	resolver.Invalidate()
	_, err = resolver.Search(context.Background(), "dela")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}
