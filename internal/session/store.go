package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/redis"
)

// Store persists per-terminal transaction state between requests. Load returns
// nil (no error) when the terminal has no active transaction.
type Store interface {
	Load(ctx context.Context, terminalID string) (*cart.TransactionState, error)
	Save(ctx context.Context, terminalID string, state *cart.TransactionState) error
	Clear(ctx context.Context, terminalID string) error
}

type redisCommands interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartStateKey(terminalID string) string
}

// RedisStore keeps transaction state as JSON under the terminal's cart key.
// The TTL bounds how long an abandoned transaction survives.
type RedisStore struct {
	client redisCommands
	ttl    time.Duration
}

// NewRedisStore builds the Redis-backed store.
func NewRedisStore(client redisCommands, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, terminalID string) (*cart.TransactionState, error) {
	raw, err := s.client.Get(ctx, s.client.CartStateKey(terminalID))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction state")
	}

	var state cart.TransactionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode transaction state")
	}
	return &state, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, terminalID string, state *cart.TransactionState) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil transaction state")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transaction state")
	}
	if err := s.client.Set(ctx, s.client.CartStateKey(terminalID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transaction state")
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, terminalID string) error {
	if err := s.client.Del(ctx, s.client.CartStateKey(terminalID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear transaction state")
	}
	return nil
}

// MemoryStore is an in-process Store used in tests and single-terminal dev
// setups without Redis. States are copied on the way in and out.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string][]byte{}}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, terminalID string) (*cart.TransactionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.states[terminalID]
	if !ok {
		return nil, nil
	}
	var state cart.TransactionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode transaction state")
	}
	return &state, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, terminalID string, state *cart.TransactionState) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil transaction state")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transaction state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[terminalID] = payload
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, terminalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, terminalID)
	return nil
}
