package settlement

import (
	"context"

	"gorm.io/gorm"

	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
)

// LogRepository persists the per-order settlement audit trail.
type LogRepository struct {
	db *gorm.DB
}

// NewLogRepository binds the repository to the provided GORM handle.
func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Record appends one audit row.
func (r *LogRepository) Record(ctx context.Context, row models.SettlementLog) error {
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListByAttempt returns the audit rows of one settlement attempt in order.
func (r *LogRepository) ListByAttempt(ctx context.Context, attemptID string) ([]models.SettlementLog, error) {
	var rows []models.SettlementLog
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
