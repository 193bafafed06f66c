package discount

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/security"
)

type stateStore interface {
	Load(ctx context.Context, terminalID string) (*cart.TransactionState, error)
	Save(ctx context.Context, terminalID string, state *cart.TransactionState) error
}

type employeeDirectory interface {
	ListActiveWithAccessCodes(ctx context.Context) ([]models.Employee, error)
}

// Service drives the discount session state machine: locked until an employee
// access code verifies, then an amount may be set, then relocked on demand or
// when the transaction commits or cancels.
type Service interface {
	Verify(ctx context.Context, terminalID, code string) (*cart.TransactionState, error)
	SetAmount(ctx context.Context, terminalID string, amount decimal.Decimal) (*cart.TransactionState, error)
	Lock(ctx context.Context, terminalID string) (*cart.TransactionState, error)
}

type service struct {
	store     stateStore
	employees employeeDirectory
	logg      *logger.Logger
}

// NewService builds the discount service.
func NewService(store stateStore, employees employeeDirectory, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if employees == nil {
		return nil, fmt.Errorf("employee directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, employees: employees, logg: logg}, nil
}

// Verify checks the access code against every active employee credential and
// unlocks the session on a match. Repeated failures are not throttled; the
// terminal is already behind a cashier login.
func (s *service) Verify(ctx context.Context, terminalID, code string) (*cart.TransactionState, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access code required")
	}

	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListActiveWithAccessCodes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing employee credentials")
	}

	matched := false
	for _, employee := range employees {
		if employee.AccessCodeHash == nil {
			continue
		}
		ok, err := security.VerifyAccessCode(code, *employee.AccessCodeHash)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "employee_id", employee.ID.String()), "skipping malformed access code hash")
			continue
		}
		if ok {
			matched = true
			break
		}
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access code")
	}

	state.Discount.Unlocked = true
	if err := s.store.Save(ctx, terminalID, state); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithTerminalID(ctx, terminalID), "discount session unlocked")
	return state, nil
}

// SetAmount records the discount amount. The session must be unlocked. The
// amount may exceed the cart subtotal; the settlement total clamps at zero.
func (s *service) SetAmount(ctx context.Context, terminalID string, amount decimal.Decimal) (*cart.TransactionState, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amount cannot be negative")
	}

	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if !state.Discount.Unlocked {
		return nil, pkgerrors.New(pkgerrors.CodeDomain, "discount session is locked")
	}

	state.Discount.Amount = amount
	if err := s.store.Save(ctx, terminalID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Lock relocks the session and resets the amount to zero.
func (s *service) Lock(ctx context.Context, terminalID string) (*cart.TransactionState, error) {
	state, err := s.load(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	state.Discount.Lock()
	if err := s.store.Save(ctx, terminalID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) load(ctx context.Context, terminalID string) (*cart.TransactionState, error) {
	if terminalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	state, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = cart.NewTransactionState()
	}
	return state, nil
}
