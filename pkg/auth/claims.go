package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rmarasigan/printshop-pos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a cashier JWT.
// Tokens are normally minted by the shop's auth provider; the helper exists for
// dev tooling and tests.
type AccessTokenPayload struct {
	CashierID  uuid.UUID
	TerminalID string
	Role       enums.EmployeeRole
}

// AccessTokenClaims represents the typed JWT presented by a cashier terminal.
type AccessTokenClaims struct {
	CashierID  uuid.UUID          `json:"cashier_id"`
	TerminalID string             `json:"terminal_id"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
