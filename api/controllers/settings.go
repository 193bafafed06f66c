package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/api/validators"
	"github.com/rmarasigan/printshop-pos-backend/internal/settings"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// SettingsGet returns the terminal's stored settings merged over defaults.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := svc.Get(r.Context(), middleware.TerminalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

type saveSettingsRequest struct {
	PrinterName   string          `json:"printer_name"`
	AutoPrint     bool            `json:"auto_print"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	ReceiptFooter string          `json:"receipt_footer"`
}

// SettingsSave overwrites the terminal's settings.
func SettingsSave(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.Save(r.Context(), middleware.TerminalIDFromContext(r.Context()), settings.TerminalSettings{
			PrinterName:   req.PrinterName,
			AutoPrint:     req.AutoPrint,
			TaxRate:       req.TaxRate,
			ReceiptFooter: req.ReceiptFooter,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}
