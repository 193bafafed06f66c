package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
)

// Line is a single cart entry. Ad-hoc sale lines carry only a name, price and
// quantity; order-settlement lines additionally reference the remote order they
// pay down.
type Line struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	Quantity       int                  `json:"quantity"`
	OrderID        *int64               `json:"order_id,omitempty"`
	OrderNumber    string               `json:"order_number,omitempty"`
	SettlementKind enums.SettlementKind `json:"settlement_kind,omitempty"`
}

// Total returns UnitPrice multiplied by Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// IsOrderSettlement reports whether the line pays against a remote order.
func (l Line) IsOrderSettlement() bool {
	return l.OrderID != nil
}

// Cart is the ordered collection of lines owned by one terminal transaction.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Discount is the access-code gated discount session. While locked, amounts
// cannot be set; unlocking requires a verified employee access code.
type Discount struct {
	Unlocked bool            `json:"unlocked"`
	Amount   decimal.Decimal `json:"amount"`
}

// Lock relocks the session and zeroes the amount.
func (d *Discount) Lock() {
	d.Unlocked = false
	d.Amount = decimal.Zero
}

// TransactionState is the full per-terminal transaction: the cart plus the
// discount session. It is persisted between requests and owned by exactly one
// terminal at a time.
type TransactionState struct {
	Cart     Cart     `json:"cart"`
	Discount Discount `json:"discount"`
}

// NewTransactionState returns an empty state with a locked discount session.
func NewTransactionState() *TransactionState {
	return &TransactionState{
		Cart:     Cart{Lines: []Line{}},
		Discount: Discount{Unlocked: false, Amount: decimal.Zero},
	}
}

// AddLine appends an ad-hoc sale line.
func (c *Cart) AddLine(name string, unitPrice decimal.Decimal, quantity int) (*Line, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line name is required")
	}
	if !unitPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line := Line{
		ID:        uuid.New(),
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
	c.Lines = append(c.Lines, line)
	return &c.Lines[len(c.Lines)-1], nil
}

// AddOrderSettlement appends a quantity-1 line paying against a remote order.
// Full settlement is priced at the outstanding balance; a downpayment line is
// priced at the order's recorded downpayment amount.
func (c *Cart) AddOrderSettlement(order orderstore.Order, kind enums.SettlementKind) (*Line, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement kind must be full or downpayment")
	}
	if !order.Balance().IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeDomain, "order has no outstanding balance")
	}
	if c.Contains(order.OrderNumber) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already in the cart")
	}

	price := order.Balance()
	if kind == enums.SettlementKindDownpayment {
		if order.DownPayment == nil || !order.DownPayment.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeDomain, "order has no downpayment amount on record")
		}
		price = *order.DownPayment
	}

	orderID := order.ID
	line := Line{
		ID:             uuid.New(),
		Name:           settlementLineName(order, kind),
		UnitPrice:      price,
		Quantity:       1,
		OrderID:        &orderID,
		OrderNumber:    order.OrderNumber,
		SettlementKind: kind,
	}
	c.Lines = append(c.Lines, line)
	return &c.Lines[len(c.Lines)-1], nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities of zero or
// below are ignored rather than treated as removal; deletion is explicit.
func (c *Cart) UpdateQuantity(lineID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// RemoveLine deletes a line by id.
func (c *Cart) RemoveLine(lineID uuid.UUID) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
}

// Subtotal sums every line total.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

// TotalQuantity sums every line quantity.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Contains reports whether an order (by number) already has a settlement line.
func (c Cart) Contains(orderNumber string) bool {
	if orderNumber == "" {
		return false
	}
	for _, line := range c.Lines {
		if line.IsOrderSettlement() && line.OrderNumber == orderNumber {
			return true
		}
	}
	return false
}

// SettlementLines returns the order-settlement lines in cart order.
func (c Cart) SettlementLines() []Line {
	lines := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.IsOrderSettlement() {
			lines = append(lines, line)
		}
	}
	return lines
}

func settlementLineName(order orderstore.Order, kind enums.SettlementKind) string {
	label := "Balance"
	if kind == enums.SettlementKindDownpayment {
		label = "Downpayment"
	}
	name := order.OrderNumber + " " + label
	if order.CustomerName != "" {
		name += " (" + order.CustomerName + ")"
	}
	return name
}
