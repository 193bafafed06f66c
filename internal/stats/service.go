package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/redis"
)

// Counter names tracked per cashier session.
const (
	CounterCustomersServed = "customers_served"
	CounterItemsSold       = "items_sold"
)

type counterStore interface {
	Get(ctx context.Context, key string) (string, error)
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	Del(ctx context.Context, keys ...string) error
	CounterKey(cashierID, name string) string
}

// Snapshot is the current value of every session counter.
type Snapshot struct {
	CustomersServed int64 `json:"customers_served"`
	ItemsSold       int64 `json:"items_sold"`
}

// Service tracks per-cashier session statistics in Redis. Counters survive
// terminal restarts and are reset explicitly at shift close.
type Service interface {
	Snapshot(ctx context.Context, cashierID string) (Snapshot, error)
	Increment(ctx context.Context, cashierID, counter string, delta int64) error
	RecordSale(ctx context.Context, cashierID string, items int) error
	Reset(ctx context.Context, cashierID string) error
}

type service struct {
	store counterStore
}

// NewService builds the statistics service.
func NewService(store counterStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	return &service{store: store}, nil
}

func (s *service) Snapshot(ctx context.Context, cashierID string) (Snapshot, error) {
	if cashierID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "cashier id is required")
	}

	customers, err := s.read(ctx, cashierID, CounterCustomersServed)
	if err != nil {
		return Snapshot{}, err
	}
	items, err := s.read(ctx, cashierID, CounterItemsSold)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{CustomersServed: customers, ItemsSold: items}, nil
}

func (s *service) Increment(ctx context.Context, cashierID, counter string, delta int64) error {
	if cashierID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cashier id is required")
	}
	if counter != CounterCustomersServed && counter != CounterItemsSold {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown counter")
	}
	if delta == 0 {
		return nil
	}
	if _, err := s.store.IncrBy(ctx, s.store.CounterKey(cashierID, counter), delta); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment session counter")
	}
	return nil
}

// RecordSale bumps the counters for one completed transaction.
func (s *service) RecordSale(ctx context.Context, cashierID string, items int) error {
	if err := s.Increment(ctx, cashierID, CounterCustomersServed, 1); err != nil {
		return err
	}
	if items <= 0 {
		return nil
	}
	return s.Increment(ctx, cashierID, CounterItemsSold, int64(items))
}

func (s *service) Reset(ctx context.Context, cashierID string) error {
	if cashierID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cashier id is required")
	}
	keys := []string{
		s.store.CounterKey(cashierID, CounterCustomersServed),
		s.store.CounterKey(cashierID, CounterItemsSold),
	}
	if err := s.store.Del(ctx, keys...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset session counters")
	}
	return nil
}

func (s *service) read(ctx context.Context, cashierID, counter string) (int64, error) {
	raw, err := s.store.Get(ctx, s.store.CounterKey(cashierID, counter))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session counter")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse session counter")
	}
	return value, nil
}
