package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
)

type orderFetcher interface {
	FetchOrders(ctx context.Context) ([]orderstore.Order, error)
}

// Resolver answers scan-code and free-text lookups against a TTL-cached
// snapshot of the remote order list. A cache miss on a scan code forces one
// refetch before giving up; concurrent refreshes collapse into a single remote
// call.
type Resolver struct {
	fetcher orderFetcher
	parser  *ScanCodeParser
	logg    *logger.Logger
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  []orderstore.Order
	byID      map[int64]int
	fetchedAt time.Time
}

// NewResolver builds the resolver.
func NewResolver(fetcher orderFetcher, parser *ScanCodeParser, ttl time.Duration, logg *logger.Logger) (*Resolver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if parser == nil {
		return nil, fmt.Errorf("scan code parser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Resolver{
		fetcher: fetcher,
		parser:  parser,
		logg:    logg,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// ResolveByCode resolves a scan code (or bare numeric id) to an order. The
// cached list is consulted first; a miss triggers a fresh fetch so a
// just-created order still resolves.
func (r *Resolver) ResolveByCode(ctx context.Context, code string) (*orderstore.Order, error) {
	id, ok := r.parser.Parse(code)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "not a recognizable order code")
	}

	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if order := r.lookup(id); order != nil {
		return order, nil
	}

	// Not in the snapshot; the order may postdate it.
	if err := r.refresh(ctx); err != nil {
		return nil, err
	}
	if order := r.lookup(id); order != nil {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// Search returns orders whose number, customer name or service type contains
// the query, case-insensitively. The scan is linear over the cached snapshot;
// the list is terminal-scale, not warehouse-scale.
func (r *Resolver) Search(ctx context.Context, query string) ([]orderstore.Order, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]orderstore.Order, 0)
	for _, order := range r.snapshot {
		if strings.Contains(strings.ToLower(order.OrderNumber), query) ||
			strings.Contains(strings.ToLower(order.CustomerName), query) ||
			strings.Contains(strings.ToLower(order.ServiceType), query) {
			matches = append(matches, order)
		}
	}
	return matches, nil
}

// Invalidate drops the snapshot so the next lookup refetches.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = nil
	r.byID = nil
	r.fetchedAt = time.Time{}
}

func (r *Resolver) ensureFresh(ctx context.Context) error {
	r.mu.RLock()
	fresh := r.byID != nil && r.now().Sub(r.fetchedAt) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return nil
	}
	return r.refresh(ctx)
}

func (r *Resolver) refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("orders", func() (any, error) {
		orders, err := r.fetcher.FetchOrders(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[int64]int, len(orders))
		for i, order := range orders {
			byID[order.ID] = i
		}

		r.mu.Lock()
		r.snapshot = orders
		r.byID = byID
		r.fetchedAt = r.now()
		r.mu.Unlock()

		r.logg.Info(r.logg.WithField(ctx, "order_count", len(orders)), "order snapshot refreshed")
		return nil, nil
	})
	return err
}

func (r *Resolver) lookup(id int64) *orderstore.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byID[id]
	if !ok {
		return nil
	}
	order := r.snapshot[idx]
	return &order
}
