package enums

import "fmt"

// EmployeeRole describes the staff roles known to the terminal.
type EmployeeRole string

const (
	EmployeeRoleCashier EmployeeRole = "cashier"
	EmployeeRoleManager EmployeeRole = "manager"
	EmployeeRoleArtist  EmployeeRole = "artist"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleCashier,
	EmployeeRoleManager,
	EmployeeRoleArtist,
}

// String implements fmt.Stringer.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known EmployeeRole.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseEmployeeRole converts raw input into an EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
