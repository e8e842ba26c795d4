package models

import "time"

// Setting is a key/value configuration row for the submission system
// (system_enabled toggle, daily_limit, and similar). Settings are read
// through an injected accessor, never as ambient global state.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"size:500;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
}

func (Setting) TableName() string {
	return "user_attachment_settings"
}

// Well-known setting keys.
const (
	SettingSystemEnabled = "system_enabled"
	SettingDailyLimit    = "daily_limit"
)
