package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/api/validators"
	"github.com/rmarasigan/printshop-pos-backend/internal/discount"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

type verifyAccessCodeRequest struct {
	AccessCode string `json:"access_code" validate:"required"`
}

// DiscountVerify checks an employee access code and unlocks the discount
// session on success.
func DiscountVerify(svc discount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyAccessCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Verify(r.Context(), middleware.TerminalIDFromContext(r.Context()), req.AccessCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}

type setDiscountAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DiscountSetAmount records the discount amount for the unlocked session.
func DiscountSetAmount(svc discount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setDiscountAmountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetAmount(r.Context(), middleware.TerminalIDFromContext(r.Context()), req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}

// DiscountLock relocks the session and zeroes the amount.
func DiscountLock(svc discount.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.Lock(r.Context(), middleware.TerminalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}
