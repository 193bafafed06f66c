package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
)

// SettlementLog is the audit row written for every per-order settlement step.
// A multi-order checkout that fails midway leaves a precise record of which
// orders were already committed.
type SettlementLog struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttemptID   uuid.UUID            `gorm:"column:attempt_id;type:uuid;not null;index"`
	TerminalID  string               `gorm:"column:terminal_id;not null"`
	CashierID   string               `gorm:"column:cashier_id;not null"`
	OrderID     int64                `gorm:"column:order_id;not null;index"`
	OrderNumber string               `gorm:"column:order_number;not null"`
	Kind        enums.SettlementKind `gorm:"column:kind;type:text;not null"`
	Mode        enums.SettlementMode `gorm:"column:mode;type:text;not null"`
	PaidBefore  decimal.Decimal      `gorm:"column:paid_before;type:decimal(12,2);not null"`
	PaidAfter   decimal.Decimal      `gorm:"column:paid_after;type:decimal(12,2);not null"`
	Balance     decimal.Decimal      `gorm:"column:balance;type:decimal(12,2);not null"`
	Status      enums.OrderStatus    `gorm:"column:status;type:text;not null"`
	Committed   bool                 `gorm:"column:committed;not null"`
	FailureNote *string              `gorm:"column:failure_note"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
