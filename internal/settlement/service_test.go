package settlement

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/settings"
	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
	"github.com/rmarasigan/printshop-pos-backend/pkg/receipt"
)

type stubStore struct {
	state   *cart.TransactionState
	cleared bool
}

func (s *stubStore) Load(_ context.Context, _ string) (*cart.TransactionState, error) {
	return s.state, nil
}

func (s *stubStore) Clear(_ context.Context, _ string) error {
	s.cleared = true
	s.state = nil
	return nil
}

type recordedUpdate struct {
	orderID int64
	patch   orderstore.OrderPatch
	version int64
}

type stubGateway struct {
	orders     map[int64]orderstore.Order
	updateErrs map[int64]error
	fetches    int
	updates    []recordedUpdate
}

func (g *stubGateway) GetOrder(_ context.Context, id int64) (*orderstore.Order, error) {
	g.fetches++
	order, ok := g.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &order, nil
}

func (g *stubGateway) UpdateOrder(_ context.Context, id int64, patch orderstore.OrderPatch, version int64) error {
	if err := g.updateErrs[id]; err != nil {
		return err
	}
	g.updates = append(g.updates, recordedUpdate{orderID: id, patch: patch, version: version})
	return nil
}

type stubAudit struct {
	rows []models.SettlementLog
}

func (a *stubAudit) Record(_ context.Context, row models.SettlementLog) error {
	a.rows = append(a.rows, row)
	return nil
}

type stubStats struct {
	customers int
	items     int
}

func (s *stubStats) RecordSale(_ context.Context, _ string, items int) error {
	s.customers++
	s.items += items
	return nil
}

type stubSettings struct {
	prefs settings.TerminalSettings
}

func (s *stubSettings) Get(_ context.Context, _ string) (settings.TerminalSettings, error) {
	return s.prefs, nil
}

type stubPrinter struct {
	printed []receipt.Descriptor
}

func (p *stubPrinter) Print(_ context.Context, descriptor receipt.Descriptor) error {
	p.printed = append(p.printed, descriptor)
	return nil
}

type fixture struct {
	store   *stubStore
	gateway *stubGateway
	audit   *stubAudit
	stats   *stubStats
	printer *stubPrinter
	svc     Service
}

func newFixture(t *testing.T, state *cart.TransactionState, orders ...orderstore.Order) *fixture {
	t.Helper()

	gateway := &stubGateway{orders: map[int64]orderstore.Order{}, updateErrs: map[int64]error{}}
	for _, order := range orders {
		gateway.orders[order.ID] = order
	}

	f := &fixture{
		store:   &stubStore{state: state},
		gateway: gateway,
		audit:   &stubAudit{},
		stats:   &stubStats{},
		printer: &stubPrinter{},
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		f.store,
		f.gateway,
		f.audit,
		f.stats,
		&stubSettings{prefs: settings.TerminalSettings{AutoPrint: true, ReceiptFooter: "Salamat po!"}},
		f.printer,
		nil,
		nil,
		logg,
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func cashPayment(amount int64) PaymentInput {
	return PaymentInput{Method: enums.PaymentMethodCash, AmountTendered: decimal.NewFromInt(amount)}
}

func TestCheckoutEmptyCartMakesNoRemoteCalls(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cart.NewTransactionState())
	_, err := f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(100))

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, f.gateway.fetches)
	assert.Empty(t, f.gateway.updates)
	assert.False(t, f.store.cleared)
}

func TestCheckoutAdHocSale(t *testing.T) {
	t.Parallel()

	state := cart.NewTransactionState()
	_, err := state.Cart.AddLine("Tarpaulin 3x6", decimal.NewFromInt(250), 2)
	require.NoError(t, err)
	_, err = state.Cart.AddLine("Lamination", decimal.NewFromInt(50), 1)
	require.NoError(t, err)

	f := newFixture(t, state)
	result, err := f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(600))
	require.NoError(t, err)

	assert.Equal(t, enums.SettlementModeAdHoc, result.Mode)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(550)))
	assert.True(t, result.Change.Equal(decimal.NewFromInt(50)))
	assert.Empty(t, result.CommittedOrders)
	assert.Empty(t, f.gateway.updates)

	assert.True(t, f.store.cleared)
	assert.Equal(t, 1, f.stats.customers)
	assert.Equal(t, 3, f.stats.items)
	require.Len(t, f.printer.printed, 1)
	assert.Equal(t, "Salamat po!", f.printer.printed[0].FooterText)
	assert.True(t, result.Printed)
}

func TestCheckoutInsufficientPayment(t *testing.T) {
	t.Parallel()

	state := cart.NewTransactionState()
	_, err := state.Cart.AddLine("Mug", decimal.NewFromInt(120), 1)
	require.NoError(t, err)

	f := newFixture(t, state)
	_, err = f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(100))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "VALIDATION_ERROR: insufficient payment", typed.Error())
	assert.False(t, f.store.cleared)
}

func TestCheckoutDiscountClampsTotalToZero(t *testing.T) {
	t.Parallel()

	state := cart.NewTransactionState()
	_, err := state.Cart.AddLine("Sticker", decimal.NewFromInt(30), 1)
	require.NoError(t, err)
	state.Discount.Unlocked = true
	state.Discount.Amount = decimal.NewFromInt(100)

	f := newFixture(t, state)
	result, err := f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(1))
	require.NoError(t, err)

	assert.True(t, result.Total.IsZero())
	assert.True(t, result.Change.Equal(decimal.NewFromInt(1)))
}

func TestCheckoutFullSettlementMarksOrderPaid(t *testing.T) {
	t.Parallel()

	// Scenario: total 1000, previously paid 200, full settlement of the 800.
	order := orderstore.Order{
		ID:          123,
		OrderNumber: "25-200-000123",
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.NewFromInt(200),
		Version:     7,
	}

	state := cart.NewTransactionState()
	_, err := state.Cart.AddOrderSettlement(order, enums.SettlementKindFull)
	require.NoError(t, err)

	f := newFixture(t, state, order)
	result, err := f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(800))
	require.NoError(t, err)

	assert.Equal(t, enums.SettlementModeCartSettlement, result.Mode)
	assert.Equal(t, []string{"25-200-000123"}, result.CommittedOrders)

	require.Len(t, f.gateway.updates, 1)
	update := f.gateway.updates[0]
	assert.Equal(t, int64(7), update.version)
	assert.True(t, update.patch.AmountPaid.Equal(decimal.NewFromInt(1000)))
	assert.True(t, update.patch.Balance.IsZero())
	assert.Equal(t, enums.OrderStatusPaid, update.patch.Status)

	require.Len(t, f.audit.rows, 1)
	assert.True(t, f.audit.rows[0].Committed)
	assert.True(t, f.audit.rows[0].PaidBefore.Equal(decimal.NewFromInt(200)))
	assert.True(t, f.audit.rows[0].PaidAfter.Equal(decimal.NewFromInt(1000)))
}

func TestCheckoutDownpaymentLineKeepsOrderPending(t *testing.T) {
	t.Parallel()

	dp := decimal.NewFromInt(300)
	order := orderstore.Order{
		ID:          9,
		OrderNumber: "25-200-000009",
		TotalAmount: decimal.NewFromInt(1000),
		DownPayment: &dp,
		Version:     2,
	}

	state := cart.NewTransactionState()
	_, err := state.Cart.AddOrderSettlement(order, enums.SettlementKindDownpayment)
	require.NoError(t, err)

	f := newFixture(t, state, order)
	_, err = f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(300))
	require.NoError(t, err)

	require.Len(t, f.gateway.updates, 1)
	patch := f.gateway.updates[0].patch
	assert.True(t, patch.AmountPaid.Equal(decimal.NewFromInt(300)))
	assert.True(t, patch.Balance.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, enums.OrderStatusPendingPayment, patch.Status)
}

func TestCheckoutPartialFailureKeepsCommittedSteps(t *testing.T) {
	t.Parallel()

	first := orderstore.Order{ID: 1, OrderNumber: "25-200-000001", TotalAmount: decimal.NewFromInt(100), Version: 1}
	second := orderstore.Order{ID: 2, OrderNumber: "25-200-000002", TotalAmount: decimal.NewFromInt(200), Version: 1}

	state := cart.NewTransactionState()
	_, err := state.Cart.AddOrderSettlement(first, enums.SettlementKindFull)
	require.NoError(t, err)
	_, err = state.Cart.AddOrderSettlement(second, enums.SettlementKindFull)
	require.NoError(t, err)

	f := newFixture(t, state, first, second)
	f.gateway.updateErrs[2] = pkgerrors.New(pkgerrors.CodeDependency, "store unreachable")

	_, err = f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(300))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"25-200-000001"}, details["committed_orders"])
	assert.Equal(t, "25-200-000002", details["failed_order"])

	// First write stays committed; nothing is rolled back and the cart survives.
	require.Len(t, f.gateway.updates, 1)
	assert.Equal(t, int64(1), f.gateway.updates[0].orderID)
	assert.False(t, f.store.cleared)
	assert.Zero(t, f.stats.customers)
	assert.Empty(t, f.printer.printed)

	// Both steps leave an audit row; the second one records the failure.
	require.Len(t, f.audit.rows, 2)
	assert.True(t, f.audit.rows[0].Committed)
	assert.False(t, f.audit.rows[1].Committed)
	require.NotNil(t, f.audit.rows[1].FailureNote)
}

func TestCheckoutVersionConflictSurfacesAsConflict(t *testing.T) {
	t.Parallel()

	order := orderstore.Order{ID: 5, OrderNumber: "25-200-000005", TotalAmount: decimal.NewFromInt(100), Version: 3}
	state := cart.NewTransactionState()
	_, err := state.Cart.AddOrderSettlement(order, enums.SettlementKindFull)
	require.NoError(t, err)

	f := newFixture(t, state, order)
	f.gateway.updateErrs[5] = pkgerrors.Wrap(pkgerrors.CodeConflict, orderstore.ErrVersionConflict, "order changed since refetch")

	_, err = f.svc.Checkout(context.Background(), "T1", "c-1", cashPayment(100))
	require.ErrorIs(t, err, orderstore.ErrVersionConflict)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.False(t, f.store.cleared)
}

func TestCustomDownpaymentHappyPath(t *testing.T) {
	t.Parallel()

	order := orderstore.Order{
		ID:          42,
		OrderNumber: "25-200-000042",
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.NewFromInt(100),
		Version:     4,
	}

	f := newFixture(t, nil, order)
	result, err := f.svc.CustomDownpayment(context.Background(), "T1", "c-1", 42, cashPayment(400))
	require.NoError(t, err)

	assert.Equal(t, enums.SettlementModeCustomDownpayment, result.Mode)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(400)))
	assert.True(t, result.Change.IsZero())

	require.Len(t, f.gateway.updates, 1)
	patch := f.gateway.updates[0].patch
	assert.True(t, patch.AmountPaid.Equal(decimal.NewFromInt(500)))
	assert.True(t, patch.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, enums.OrderStatusPendingPayment, patch.Status)

	// Counts the customer, no cart items involved.
	assert.Equal(t, 1, f.stats.customers)
	assert.Zero(t, f.stats.items)
	require.Len(t, f.printer.printed, 1)
}

func TestCustomDownpaymentExceedingBalance(t *testing.T) {
	t.Parallel()

	// Scenario: balance 500, attempted downpayment 600.
	order := orderstore.Order{
		ID:          42,
		OrderNumber: "25-200-000042",
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.NewFromInt(500),
		Version:     4,
	}

	f := newFixture(t, nil, order)
	_, err := f.svc.CustomDownpayment(context.Background(), "T1", "c-1", 42, cashPayment(600))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, f.gateway.updates)
}

func TestCustomDownpaymentSettlingExactBalanceMarksPaid(t *testing.T) {
	t.Parallel()

	order := orderstore.Order{
		ID:          42,
		OrderNumber: "25-200-000042",
		TotalAmount: decimal.NewFromInt(1000),
		AmountPaid:  decimal.NewFromInt(600),
		Version:     4,
	}

	f := newFixture(t, nil, order)
	_, err := f.svc.CustomDownpayment(context.Background(), "T1", "c-1", 42, cashPayment(400))
	require.NoError(t, err)

	require.Len(t, f.gateway.updates, 1)
	patch := f.gateway.updates[0].patch
	assert.True(t, patch.Balance.IsZero())
	assert.True(t, patch.AmountPaid.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, enums.OrderStatusPaid, patch.Status)
}

func TestCustomDownpaymentRequiresPositiveTender(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.svc.CustomDownpayment(context.Background(), "T1", "c-1", 42, cashPayment(0))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, f.gateway.fetches)
}
