package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/settings"
	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/metrics"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
	"github.com/rmarasigan/printshop-pos-backend/pkg/receipt"
)

type stateStore interface {
	Load(ctx context.Context, terminalID string) (*cart.TransactionState, error)
	Clear(ctx context.Context, terminalID string) error
}

type orderGateway interface {
	GetOrder(ctx context.Context, id int64) (*orderstore.Order, error)
	UpdateOrder(ctx context.Context, id int64, patch orderstore.OrderPatch, expectedVersion int64) error
}

type saleRecorder interface {
	RecordSale(ctx context.Context, cashierID string, items int) error
}

type settingsReader interface {
	Get(ctx context.Context, terminalID string) (settings.TerminalSettings, error)
}

type auditLog interface {
	Record(ctx context.Context, row models.SettlementLog) error
}

type snapshotInvalidator interface {
	Invalidate()
}

// PaymentInput is the tender handed over at the counter.
type PaymentInput struct {
	Method         enums.PaymentMethod
	AmountTendered decimal.Decimal
}

// Result summarizes a committed settlement.
type Result struct {
	Mode            enums.SettlementMode `json:"mode"`
	Method          enums.PaymentMethod  `json:"method"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Discount        decimal.Decimal      `json:"discount"`
	Total           decimal.Decimal      `json:"total"`
	AmountTendered  decimal.Decimal      `json:"amount_tendered"`
	Change          decimal.Decimal      `json:"change"`
	CommittedOrders []string             `json:"committed_orders"`
	Printed         bool                 `json:"printed"`
}

// Service is the payment reconciliation engine. Checkout settles the cart
// (ad-hoc sale or cart settlement); CustomDownpayment pays an arbitrary amount
// toward a single order outside the cart.
type Service interface {
	Checkout(ctx context.Context, terminalID, cashierID string, input PaymentInput) (*Result, error)
	CustomDownpayment(ctx context.Context, terminalID, cashierID string, orderID int64, input PaymentInput) (*Result, error)
}

type service struct {
	store    stateStore
	gateway  orderGateway
	audit    auditLog
	stats    saleRecorder
	settings settingsReader
	printer  receipt.Printer
	snapshot snapshotInvalidator
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the reconciliation engine. The metrics and snapshot
// arguments may be nil.
func NewService(
	store stateStore,
	gateway orderGateway,
	audit auditLog,
	stats saleRecorder,
	settingsSvc settingsReader,
	printer receipt.Printer,
	snapshot snapshotInvalidator,
	m *metrics.SettlementMetrics,
	logg *logger.Logger,
) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit log required")
	}
	if stats == nil {
		return nil, fmt.Errorf("sale recorder required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if printer == nil {
		return nil, fmt.Errorf("receipt printer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    store,
		gateway:  gateway,
		audit:    audit,
		stats:    stats,
		settings: settingsSvc,
		printer:  printer,
		snapshot: snapshot,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Checkout settles the current transaction: validates the tender against the
// discounted total, then reconciles every order-settlement line against the
// remote store one by one. Committed steps are never rolled back; on a
// mid-flight failure the cart stays intact and the error reports what was
// already written.
func (s *service) Checkout(ctx context.Context, terminalID, cashierID string, input PaymentInput) (*Result, error) {
	started := s.now()

	state, err := s.loadState(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if state.Cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart empty")
	}

	mode := enums.SettlementModeAdHoc
	if len(state.Cart.SettlementLines()) > 0 {
		mode = enums.SettlementModeCartSettlement
	}

	if err := validatePayment(input); err != nil {
		return nil, err
	}

	subtotal := state.Cart.Subtotal()
	discount := state.Discount.Amount
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if input.AmountTendered.LessThan(total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient payment")
	}

	committed, err := s.reconcileCart(ctx, terminalID, cashierID, mode, state.Cart.SettlementLines())
	if err != nil {
		s.metrics.IncFailure(mode.String())
		return nil, err
	}

	result := &Result{
		Mode:            mode,
		Method:          input.Method,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		AmountTendered:  input.AmountTendered,
		Change:          clampChange(input.AmountTendered.Sub(total)),
		CommittedOrders: committed,
	}

	s.finishSale(ctx, terminalID, cashierID, state, result, receiptLines(state.Cart.Lines))

	s.metrics.IncSuccess(mode.String())
	s.metrics.AddOrdersSettled(len(committed))
	s.metrics.ObserveDuration(mode.String(), s.now().Sub(started))
	return result, nil
}

// CustomDownpayment applies an arbitrary partial payment to one order. The
// amount must not exceed the outstanding balance; the total equals the tender,
// so no change is due.
func (s *service) CustomDownpayment(ctx context.Context, terminalID, cashierID string, orderID int64, input PaymentInput) (*Result, error) {
	started := s.now()
	mode := enums.SettlementModeCustomDownpayment

	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	if err := validatePayment(input); err != nil {
		return nil, err
	}

	latest, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		s.metrics.IncFailure(mode.String())
		return nil, err
	}
	if !latest.Balance().IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeDomain, "order has no outstanding balance")
	}
	if input.AmountTendered.GreaterThan(latest.Balance()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "downpayment exceeds outstanding balance")
	}

	attemptID := uuid.New()
	if err := s.settleOrder(ctx, attemptID, terminalID, cashierID, mode, *latest, enums.SettlementKindDownpayment, input.AmountTendered); err != nil {
		s.metrics.IncFailure(mode.String())
		return nil, err
	}

	result := &Result{
		Mode:            mode,
		Method:          input.Method,
		Subtotal:        input.AmountTendered,
		Discount:        decimal.Zero,
		Total:           input.AmountTendered,
		AmountTendered:  input.AmountTendered,
		Change:          decimal.Zero,
		CommittedOrders: []string{latest.OrderNumber},
	}

	lines := []receipt.Line{{
		Name:      latest.OrderNumber + " Downpayment",
		UnitPrice: input.AmountTendered,
		Quantity:  1,
		LineTotal: input.AmountTendered,
	}}
	s.finishSale(ctx, terminalID, cashierID, nil, result, lines)

	s.metrics.IncSuccess(mode.String())
	s.metrics.AddOrdersSettled(1)
	s.metrics.ObserveDuration(mode.String(), s.now().Sub(started))
	return result, nil
}

// reconcileCart walks the settlement lines sequentially. Each step refetches
// the order and writes back conditionally on the refetched version.
func (s *service) reconcileCart(ctx context.Context, terminalID, cashierID string, mode enums.SettlementMode, lines []cart.Line) ([]string, error) {
	attemptID := uuid.New()
	committed := make([]string, 0, len(lines))

	for _, line := range lines {
		latest, err := s.gateway.GetOrder(ctx, *line.OrderID)
		if err != nil {
			return committed, s.partialFailure(ctx, committed, line.OrderNumber, err)
		}

		portion := line.UnitPrice
		if line.SettlementKind == enums.SettlementKindFull {
			portion = latest.Balance()
		}

		if err := s.settleOrder(ctx, attemptID, terminalID, cashierID, mode, *latest, line.SettlementKind, portion); err != nil {
			return committed, s.partialFailure(ctx, committed, line.OrderNumber, err)
		}
		committed = append(committed, latest.OrderNumber)
	}
	return committed, nil
}

// settleOrder computes the new paid amount and status, writes the patch
// conditionally, and records the audit row.
func (s *service) settleOrder(ctx context.Context, attemptID uuid.UUID, terminalID, cashierID string, mode enums.SettlementMode, order orderstore.Order, kind enums.SettlementKind, portion decimal.Decimal) error {
	newPaid := order.AmountPaid.Add(portion)
	if kind == enums.SettlementKindFull {
		newPaid = order.TotalAmount
	}
	newBalance := order.TotalAmount.Sub(newPaid)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	if newBalance.IsZero() {
		newPaid = order.TotalAmount
	}
	status := enums.OrderStatusPendingPayment
	if newBalance.IsZero() {
		status = enums.OrderStatusPaid
	}

	patch := orderstore.OrderPatch{AmountPaid: newPaid, Balance: newBalance, Status: status}
	writeErr := s.gateway.UpdateOrder(ctx, order.ID, patch, order.Version)

	row := models.SettlementLog{
		AttemptID:   attemptID,
		TerminalID:  terminalID,
		CashierID:   cashierID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Kind:        kind,
		Mode:        mode,
		PaidBefore:  order.AmountPaid,
		PaidAfter:   newPaid,
		Balance:     newBalance,
		Status:      status,
		Committed:   writeErr == nil,
	}
	if writeErr != nil {
		note := writeErr.Error()
		row.FailureNote = &note
	}
	if auditErr := s.audit.Record(ctx, row); auditErr != nil {
		// The audit trail is best-effort; the remote write is authoritative.
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "recording settlement audit row", auditErr)
	}

	return writeErr
}

// partialFailure wraps a mid-flight error with the orders already committed.
// Committed writes stay committed; the caller keeps the cart for a retry of
// the remainder.
func (s *service) partialFailure(ctx context.Context, committed []string, failedOrder string, err error) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"committed_orders": committed,
		"failed_order":     failedOrder,
	})
	s.logg.Error(ctx, "settlement stopped mid-flight", err)

	code := pkgerrors.CodeDependency
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	return pkgerrors.Wrap(code, err, "settlement incomplete").WithDetails(map[string]any{
		"committed_orders": committed,
		"failed_order":     failedOrder,
	})
}

// finishSale performs the post-commit side effects: counters, cart clear and
// receipt. None of them can fail the settlement any more; failures are
// aggregated and logged.
func (s *service) finishSale(ctx context.Context, terminalID, cashierID string, state *cart.TransactionState, result *Result, lines []receipt.Line) {
	var errs error

	items := 0
	if state != nil {
		items = state.Cart.TotalQuantity()
		if err := s.store.Clear(ctx, terminalID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("clearing transaction state: %w", err))
		}
	}
	if err := s.stats.RecordSale(ctx, cashierID, items); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("recording session stats: %w", err))
	}

	if s.snapshot != nil && len(result.CommittedOrders) > 0 {
		s.snapshot.Invalidate()
	}

	prefs, err := s.settings.Get(ctx, terminalID)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("loading terminal settings: %w", err))
	} else if prefs.AutoPrint {
		descriptor := receipt.Descriptor{
			TerminalID:     terminalID,
			CashierID:      cashierID,
			Mode:           result.Mode,
			Method:         result.Method,
			Lines:          lines,
			Subtotal:       result.Subtotal,
			Discount:       result.Discount,
			Total:          result.Total,
			AmountTendered: result.AmountTendered,
			Change:         result.Change,
			FooterText:     prefs.ReceiptFooter,
			PrinterName:    prefs.PrinterName,
			IssuedAt:       s.now(),
		}
		if err := s.printer.Print(ctx, descriptor); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("printing receipt: %w", err))
		} else {
			result.Printed = true
		}
	}

	if errs != nil {
		s.logg.Warn(s.logg.WithTerminalID(ctx, terminalID), fmt.Sprintf("post-settlement side effects degraded: %v", errs))
	}
}

func (s *service) loadState(ctx context.Context, terminalID string) (*cart.TransactionState, error) {
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

func validatePayment(input PaymentInput) error {
	if !input.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if !input.AmountTendered.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount tendered must be positive")
	}
	return nil
}

func clampChange(change decimal.Decimal) decimal.Decimal {
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

func receiptLines(lines []cart.Line) []receipt.Line {
	out := make([]receipt.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, receipt.Line{
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.Total(),
		})
	}
	return out
}
