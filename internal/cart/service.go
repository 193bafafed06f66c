package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
)

type stateStore interface {
	Load(ctx context.Context, terminalID string) (*TransactionState, error)
	Save(ctx context.Context, terminalID string, state *TransactionState) error
	Clear(ctx context.Context, terminalID string) error
}

// Service exposes the session-bound cart operations. Every mutation loads the
// terminal's transaction state, applies the pure cart operation, and persists
// the result.
type Service interface {
	Get(ctx context.Context, terminalID string) (*TransactionState, error)
	AddLine(ctx context.Context, terminalID string, input AddLineInput) (*TransactionState, error)
	AddOrderSettlement(ctx context.Context, terminalID string, order orderstore.Order, kind enums.SettlementKind) (*TransactionState, error)
	UpdateQuantity(ctx context.Context, terminalID string, lineID uuid.UUID, quantity int) (*TransactionState, error)
	RemoveLine(ctx context.Context, terminalID string, lineID uuid.UUID) (*TransactionState, error)
	Clear(ctx context.Context, terminalID string) error
}

type service struct {
	store stateStore
}

// NewService builds the cart service on top of a transaction-state store.
func NewService(store stateStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	return &service{store: store}, nil
}

// AddLineInput is the payload for an ad-hoc sale line.
type AddLineInput struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (s *service) Get(ctx context.Context, terminalID string) (*TransactionState, error) {
	return s.load(ctx, terminalID)
}

func (s *service) AddLine(ctx context.Context, terminalID string, input AddLineInput) (*TransactionState, error) {
	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if _, err := state.Cart.AddLine(input.Name, input.UnitPrice, input.Quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, terminalID, state)
}

func (s *service) AddOrderSettlement(ctx context.Context, terminalID string, order orderstore.Order, kind enums.SettlementKind) (*TransactionState, error) {
	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if _, err := state.Cart.AddOrderSettlement(order, kind); err != nil {
		return nil, err
	}
	return s.save(ctx, terminalID, state)
}

func (s *service) UpdateQuantity(ctx context.Context, terminalID string, lineID uuid.UUID, quantity int) (*TransactionState, error) {
	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := state.Cart.UpdateQuantity(lineID, quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, terminalID, state)
}

func (s *service) RemoveLine(ctx context.Context, terminalID string, lineID uuid.UUID) (*TransactionState, error) {
	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := state.Cart.RemoveLine(lineID); err != nil {
		return nil, err
	}
	return s.save(ctx, terminalID, state)
}

// Clear drops the whole transaction state, discount session included.
func (s *service) Clear(ctx context.Context, terminalID string) error {
	if terminalID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	return s.store.Clear(ctx, terminalID)
}

func (s *service) load(ctx context.Context, terminalID string) (*TransactionState, error) {
	if terminalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	state, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = NewTransactionState()
	}
	return state, nil
}

func (s *service) save(ctx context.Context, terminalID string, state *TransactionState) (*TransactionState, error) {
	if err := s.store.Save(ctx, terminalID, state); err != nil {
		return nil, err
	}
	return state, nil
}
