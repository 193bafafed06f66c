package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
)

// Setting keys stored per terminal.
const (
	KeyPrinterName   = "printer_name"
	KeyAutoPrint     = "auto_print"
	KeyTaxRate       = "tax_rate"
	KeyReceiptFooter = "receipt_footer"
)

type settingStore interface {
	List(ctx context.Context, terminalID string) ([]models.TerminalSetting, error)
	UpsertAll(ctx context.Context, rows []models.TerminalSetting) error
}

// TerminalSettings is the typed view of a terminal's stored configuration.
type TerminalSettings struct {
	PrinterName   string          `json:"printer_name"`
	AutoPrint     bool            `json:"auto_print"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	ReceiptFooter string          `json:"receipt_footer"`
}

// Service reads and writes terminal settings. Stored values that fail type
// coercion fall back to defaults rather than erroring out the terminal.
type Service interface {
	Get(ctx context.Context, terminalID string) (TerminalSettings, error)
	Save(ctx context.Context, terminalID string, prefs TerminalSettings) (TerminalSettings, error)
}

type service struct {
	store    settingStore
	defaults TerminalSettings
}

// NewService builds the settings service with the given defaults.
func NewService(store settingStore, defaults TerminalSettings) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("setting store required")
	}
	return &service{store: store, defaults: defaults}, nil
}

func (s *service) Get(ctx context.Context, terminalID string) (TerminalSettings, error) {
	if terminalID == "" {
		return TerminalSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}

	rows, err := s.store.List(ctx, terminalID)
	if err != nil {
		return TerminalSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading terminal settings")
	}

	prefs := s.defaults
	for _, row := range rows {
		switch row.Key {
		case KeyPrinterName:
			prefs.PrinterName = row.Value
		case KeyAutoPrint:
			if parsed, err := strconv.ParseBool(row.Value); err == nil {
				prefs.AutoPrint = parsed
			}
		case KeyTaxRate:
			if parsed, err := decimal.NewFromString(row.Value); err == nil && !parsed.IsNegative() {
				prefs.TaxRate = parsed
			}
		case KeyReceiptFooter:
			prefs.ReceiptFooter = row.Value
		}
	}
	return prefs, nil
}

func (s *service) Save(ctx context.Context, terminalID string, prefs TerminalSettings) (TerminalSettings, error) {
	if terminalID == "" {
		return TerminalSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	if prefs.TaxRate.IsNegative() {
		return TerminalSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
	}

	rows := []models.TerminalSetting{
		{TerminalID: terminalID, Key: KeyPrinterName, Value: strings.TrimSpace(prefs.PrinterName)},
		{TerminalID: terminalID, Key: KeyAutoPrint, Value: strconv.FormatBool(prefs.AutoPrint)},
		{TerminalID: terminalID, Key: KeyTaxRate, Value: prefs.TaxRate.String()},
		{TerminalID: terminalID, Key: KeyReceiptFooter, Value: prefs.ReceiptFooter},
	}
	if err := s.store.UpsertAll(ctx, rows); err != nil {
		return TerminalSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving terminal settings")
	}
	return s.Get(ctx, terminalID)
}
