package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/api/validators"
	"github.com/rmarasigan/printshop-pos-backend/internal/settlement"
	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

type checkoutRequest struct {
	Method         string          `json:"method" validate:"required"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
}

// Checkout settles the current cart transaction (ad-hoc sale or cart
// settlement).
func Checkout(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Checkout(
			r.Context(),
			middleware.TerminalIDFromContext(r.Context()),
			middleware.CashierIDFromContext(r.Context()),
			settlement.PaymentInput{Method: method, AmountTendered: req.AmountTendered},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type downpaymentRequest struct {
	OrderID        int64           `json:"order_id" validate:"required,min=1"`
	Method         string          `json:"method" validate:"required"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
}

// CheckoutDownpayment applies an arbitrary partial payment to a single order,
// bounded by the order's outstanding balance.
func CheckoutDownpayment(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req downpaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.CustomDownpayment(
			r.Context(),
			middleware.TerminalIDFromContext(r.Context()),
			middleware.CashierIDFromContext(r.Context()),
			req.OrderID,
			settlement.PaymentInput{Method: method, AmountTendered: req.AmountTendered},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
