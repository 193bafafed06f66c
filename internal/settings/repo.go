package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmarasigan/printshop-pos-backend/pkg/db/models"
)

// SettingRepository persists terminal key/value settings.
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository binds the repository to the provided GORM handle.
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// List returns every stored setting for a terminal.
func (r *SettingRepository) List(ctx context.Context, terminalID string) ([]models.TerminalSetting, error) {
	var rows []models.TerminalSetting
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertAll writes the provided settings, replacing existing values per key.
func (r *SettingRepository) UpsertAll(ctx context.Context, rows []models.TerminalSetting) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "terminal_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rows).Error
}
