package enums

import "fmt"

// SettlementMode classifies a payment transaction.
type SettlementMode string

const (
	SettlementModeAdHoc             SettlementMode = "ad_hoc"
	SettlementModeCartSettlement    SettlementMode = "cart_settlement"
	SettlementModeCustomDownpayment SettlementMode = "custom_downpayment"
)

var validSettlementModes = []SettlementMode{
	SettlementModeAdHoc,
	SettlementModeCartSettlement,
	SettlementModeCustomDownpayment,
}

// String implements fmt.Stringer.
func (m SettlementMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SettlementMode.
func (m SettlementMode) IsValid() bool {
	for _, candidate := range validSettlementModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSettlementMode converts raw input into a SettlementMode.
func ParseSettlementMode(value string) (SettlementMode, error) {
	for _, candidate := range validSettlementModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement mode %q", value)
}
