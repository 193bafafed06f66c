package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/api/validators"
	"github.com/rmarasigan/printshop-pos-backend/internal/orders"
	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
)

// orderView is the wire shape of a resolved remote order.
type orderView struct {
	ID             int64             `json:"id"`
	OrderNumber    string            `json:"order_number"`
	CustomerName   string            `json:"customer_name"`
	ServiceType    string            `json:"service_type"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	AmountPaid     decimal.Decimal   `json:"amount_paid"`
	Balance        decimal.Decimal   `json:"balance"`
	DownPayment    *decimal.Decimal  `json:"down_payment,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	IsRush         bool              `json:"is_rush"`
	AssignedArtist *string           `json:"assigned_artist,omitempty"`
}

func newOrderView(order orderstore.Order) orderView {
	return orderView{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		CustomerName:   order.CustomerName,
		ServiceType:    order.ServiceType,
		TotalAmount:    order.TotalAmount,
		AmountPaid:     order.AmountPaid,
		Balance:        order.Balance(),
		DownPayment:    order.DownPayment,
		Status:         order.Status,
		IsRush:         order.IsRush,
		AssignedArtist: order.AssignedArtist,
	}
}

// OrdersResolve resolves a scan code (or bare numeric id) to a single order.
func OrdersResolve(resolver *orders.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code query parameter is required"))
			return
		}

		order, err := resolver.ResolveByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(*order))
	}
}

// OrdersSearch runs a case-insensitive substring search over the cached order
// snapshot.
func OrdersSearch(resolver *orders.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := validators.SanitizeString(r.URL.Query().Get("q"), 120)
		matches, err := resolver.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}

		views := make([]orderView, 0, len(matches))
		for _, order := range matches {
			views = append(views, newOrderView(order))
		}
		responses.WriteSuccess(w, views)
	}
}
