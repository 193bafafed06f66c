package orderstore

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
)

// Order is the projection of a remote order record used by the terminal. The
// store owns the record; this type only carries the fields we read and write.
type Order struct {
	ID             int64
	OrderNumber    string
	CustomerName   string
	ServiceType    string
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	DownPayment    *decimal.Decimal
	Status         enums.OrderStatus
	IsRush         bool
	AssignedArtist *string
	Version        int64
}

// Balance returns max(0, TotalAmount - AmountPaid).
func (o Order) Balance() decimal.Decimal {
	balance := o.TotalAmount.Sub(o.AmountPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// Settled reports whether nothing is owed on the order.
func (o Order) Settled() bool {
	return !o.Balance().IsPositive()
}

// OrderPatch carries the fields the reconciliation engine writes back.
type OrderPatch struct {
	AmountPaid decimal.Decimal   `json:"amount_paid"`
	Balance    decimal.Decimal   `json:"balance"`
	Status     enums.OrderStatus `json:"status"`
}

// flexDecimal decodes remote numeric fields that may arrive as JSON numbers,
// quoted strings, null, or garbage. Anything unparseable becomes zero — the
// store is not trusted to send clean data.
type flexDecimal struct {
	decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		f.Decimal = decimal.Zero
		return nil
	}
	raw := strings.Trim(string(trimmed), `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.Decimal = decimal.Zero
		return nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		f.Decimal = decimal.Zero
		return nil
	}
	f.Decimal = parsed
	return nil
}

type orderPayload struct {
	ID             int64        `json:"id"`
	OrderNumber    string       `json:"order_number"`
	CustomerName   string       `json:"customer_name"`
	ServiceType    string       `json:"service_type"`
	TotalAmount    flexDecimal  `json:"total_amount"`
	AmountPaid     flexDecimal  `json:"amount_paid"`
	DownPayment    *flexDecimal `json:"down_payment"`
	Status         string       `json:"status"`
	IsRush         bool         `json:"is_rush"`
	AssignedArtist *string      `json:"assigned_artist"`
	Version        int64        `json:"version"`
}

func (p orderPayload) toOrder() Order {
	order := Order{
		ID:             p.ID,
		OrderNumber:    p.OrderNumber,
		CustomerName:   p.CustomerName,
		ServiceType:    p.ServiceType,
		TotalAmount:    p.TotalAmount.Decimal,
		AmountPaid:     p.AmountPaid.Decimal,
		IsRush:         p.IsRush,
		AssignedArtist: p.AssignedArtist,
		Version:        p.Version,
	}
	if p.DownPayment != nil {
		dp := p.DownPayment.Decimal
		order.DownPayment = &dp
	}
	status, err := enums.ParseOrderStatus(p.Status)
	if err != nil {
		// Unknown statuses are treated as still owing.
		status = enums.OrderStatusPendingPayment
	}
	order.Status = status
	return order
}

func decodeOrder(data []byte) (Order, error) {
	var payload orderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Order{}, err
	}
	return payload.toOrder(), nil
}

func decodeOrderList(data []byte) ([]Order, error) {
	var payloads []orderPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(payloads))
	for _, payload := range payloads {
		orders = append(orders, payload.toOrder())
	}
	return orders, nil
}
