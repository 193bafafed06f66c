package stats

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/redis"
)

type fakeCounters struct {
	values map[string]int64
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]int64{}}
}

func (f *fakeCounters) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return strconv.FormatInt(value, 10), nil
}

func (f *fakeCounters) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	f.values[key] += delta
	return f.values[key], nil
}

func (f *fakeCounters) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCounters) CounterKey(cashierID, name string) string {
	return "pos:counter:" + cashierID + ":" + name
}

func TestSnapshotDefaultsToZero(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newFakeCounters())
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Zero(t, snapshot.CustomersServed)
	assert.Zero(t, snapshot.ItemsSold)
}

func TestRecordSaleBumpsBothCounters(t *testing.T) {
	t.Parallel()

	counters := newFakeCounters()
	svc, err := NewService(counters)
	require.NoError(t, err)

	require.NoError(t, svc.RecordSale(context.Background(), "c-1", 3))
	require.NoError(t, svc.RecordSale(context.Background(), "c-1", 2))

	snapshot, err := svc.Snapshot(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.CustomersServed)
	assert.Equal(t, int64(5), snapshot.ItemsSold)
}

func TestRecordSaleWithNoItemsStillCountsCustomer(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newFakeCounters())
	require.NoError(t, err)

	require.NoError(t, svc.RecordSale(context.Background(), "c-1", 0))
	snapshot, err := svc.Snapshot(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.CustomersServed)
	assert.Zero(t, snapshot.ItemsSold)
}

func TestIncrementRejectsUnknownCounter(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newFakeCounters())
	require.NoError(t, err)

	err = svc.Increment(context.Background(), "c-1", "drawer_opens", 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestResetClearsCounters(t *testing.T) {
	t.Parallel()

	counters := newFakeCounters()
	svc, err := NewService(counters)
	require.NoError(t, err)

	require.NoError(t, svc.RecordSale(context.Background(), "c-1", 4))
	require.NoError(t, svc.Reset(context.Background(), "c-1"))

	snapshot, err := svc.Snapshot(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Zero(t, snapshot.CustomersServed)
	assert.Zero(t, snapshot.ItemsSold)
}

func TestCountersAreScopedPerCashier(t *testing.T) {
	t.Parallel()

	counters := newFakeCounters()
	svc, err := NewService(counters)
	require.NoError(t, err)

	require.NoError(t, svc.RecordSale(context.Background(), "c-1", 1))
	snapshot, err := svc.Snapshot(context.Background(), "c-2")
	require.NoError(t, err)
	assert.Zero(t, snapshot.CustomersServed)
}
