package receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// Line is a single receipt row.
type Line struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Descriptor is handed to the printing collaborator after a committed
// transaction. Rendering and formatting happen on the other side.
type Descriptor struct {
	TerminalID     string               `json:"terminal_id"`
	CashierID      string               `json:"cashier_id"`
	Mode           enums.SettlementMode `json:"mode"`
	Method         enums.PaymentMethod  `json:"method"`
	Lines          []Line               `json:"lines"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Discount       decimal.Decimal      `json:"discount"`
	Total          decimal.Decimal      `json:"total"`
	AmountTendered decimal.Decimal      `json:"amount_tendered"`
	Change         decimal.Decimal      `json:"change"`
	FooterText     string               `json:"footer_text,omitempty"`
	PrinterName    string               `json:"printer_name,omitempty"`
	IssuedAt       time.Time            `json:"issued_at"`
}

// Printer receives a receipt descriptor for rendering/printing.
type Printer interface {
	Print(ctx context.Context, descriptor Descriptor) error
}

// SpoolPrinter logs descriptors instead of driving hardware. It stands in when
// no print bridge is configured for the terminal.
type SpoolPrinter struct {
	logg *logger.Logger
}

// NewSpoolPrinter builds the log-only printer.
func NewSpoolPrinter(logg *logger.Logger) *SpoolPrinter {
	return &SpoolPrinter{logg: logg}
}

// Print implements Printer.
func (p *SpoolPrinter) Print(ctx context.Context, descriptor Descriptor) error {
	if p == nil || p.logg == nil {
		return nil
	}
	ctx = p.logg.WithFields(ctx, map[string]any{
		"terminal_id": descriptor.TerminalID,
		"mode":        descriptor.Mode.String(),
		"method":      descriptor.Method.String(),
		"total":       descriptor.Total.String(),
		"change":      descriptor.Change.String(),
		"line_count":  len(descriptor.Lines),
	})
	p.logg.Info(ctx, "receipt.spooled")
	return nil
}
