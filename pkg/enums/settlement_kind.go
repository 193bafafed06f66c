package enums

import "fmt"

// SettlementKind marks whether a cart line settles an order in full or as a downpayment.
type SettlementKind string

const (
	SettlementKindFull        SettlementKind = "full"
	SettlementKindDownpayment SettlementKind = "downpayment"
)

var validSettlementKinds = []SettlementKind{
	SettlementKindFull,
	SettlementKindDownpayment,
}

// String implements fmt.Stringer.
func (k SettlementKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SettlementKind.
func (k SettlementKind) IsValid() bool {
	for _, candidate := range validSettlementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSettlementKind converts raw input into a SettlementKind.
func ParseSettlementKind(value string) (SettlementKind, error) {
	for _, candidate := range validSettlementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement kind %q", value)
}
