package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/api/validators"
	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/orders"
	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// transactionView is the wire shape of the per-terminal transaction state.
type transactionView struct {
	Lines         []cart.Line     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"total_quantity"`
	Discount      discountView    `json:"discount"`
}

type discountView struct {
	Unlocked bool            `json:"unlocked"`
	Amount   decimal.Decimal `json:"amount"`
}

func newTransactionView(state *cart.TransactionState) transactionView {
	lines := state.Cart.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return transactionView{
		Lines:         lines,
		Subtotal:      state.Cart.Subtotal(),
		TotalQuantity: state.Cart.TotalQuantity(),
		Discount: discountView{
			Unlocked: state.Discount.Unlocked,
			Amount:   state.Discount.Amount,
		},
	}
}

// CartGet returns the terminal's current transaction state.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.Get(r.Context(), middleware.TerminalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}

type addLineRequest struct {
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

// CartAddLine appends an ad-hoc sale line to the cart.
func CartAddLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddLine(r.Context(), middleware.TerminalIDFromContext(r.Context()), cart.AddLineInput{
			Name:      validators.SanitizeString(req.Name, 200),
			UnitPrice: req.UnitPrice,
			Quantity:  req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTransactionView(state))
	}
}

type addOrderSettlementRequest struct {
	Code string `json:"code" validate:"required"`
	Kind string `json:"kind" validate:"required"`
}

// CartAddOrderSettlement resolves a scan code and adds a settlement line for
// the resolved order.
func CartAddOrderSettlement(svc cart.Service, resolver *orders.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addOrderSettlementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseSettlementKind(req.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid settlement kind"))
			return
		}

		order, err := resolver.ResolveByCode(r.Context(), req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddOrderSettlement(r.Context(), middleware.TerminalIDFromContext(r.Context()), *order, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTransactionView(state))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateLine sets the quantity of one line. Non-positive quantities leave
// the line untouched.
func CartUpdateLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuid.Parse(chi.URLParam(r, "lineId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id"))
			return
		}

		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.UpdateQuantity(r.Context(), middleware.TerminalIDFromContext(r.Context()), lineID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}

// CartRemoveLine deletes one line.
func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuid.Parse(chi.URLParam(r, "lineId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id"))
			return
		}

		state, err := svc.RemoveLine(r.Context(), middleware.TerminalIDFromContext(r.Context()), lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(state))
	}
}

// CartClear drops the whole transaction, discount session included.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.TerminalIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionView(cart.NewTransactionState()))
	}
}
