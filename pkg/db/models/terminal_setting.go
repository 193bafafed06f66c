package models

import "time"

// TerminalSetting stores the per-terminal device preferences: selected printer,
// auto-print flag, tax rate, receipt footer. Values are kept as text and coerced
// by the settings service, matching how the terminal UI persists them.
type TerminalSetting struct {
	TerminalID string    `gorm:"column:terminal_id;primaryKey"`
	Key        string    `gorm:"column:key;primaryKey"`
	Value      string    `gorm:"column:value;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
