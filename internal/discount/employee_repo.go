package discount

import (
	"context"

	"gorm.io/gorm"

	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
)

// EmployeeRepository reads the local employee registry for credential checks.
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository binds the repository to the provided GORM handle.
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListActiveWithAccessCodes returns active employees that have an access code
// on record. Access codes are not unique per employee, so verification walks
// the full set.
func (r *EmployeeRepository) ListActiveWithAccessCodes(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Where("active = ? AND access_code_hash IS NOT NULL", true).
		Order("name ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}
