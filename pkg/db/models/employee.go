package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
)

// Employee is the local registry row used for discount access-code checks.
// Payroll and scheduling live elsewhere; the terminal only needs the credential.
type Employee struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	Role           enums.EmployeeRole `gorm:"column:role;type:text;not null;default:'cashier'"`
	AccessCodeHash *string            `gorm:"column:access_code_hash"`
	Active         bool               `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
