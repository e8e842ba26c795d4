package models

import "time"

// User is a Telegram user known to the bot. Rows are upserted on first
// contact; the Telegram numeric ID is the primary key.
type User struct {
	TelegramID int64     `gorm:"primaryKey;autoIncrement:false" json:"telegram_id"`
	Username   string    `gorm:"size:255;index" json:"username"`
	FirstName  string    `gorm:"size:255" json:"first_name"`
	Language   string    `gorm:"size:10;default:'en'" json:"language"`
	IsAdmin    bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SubmissionStats tracks per-user submission counters, the daily quota
// window, and the ban flag. One row per user, created lazily on first submit.
type SubmissionStats struct {
	UserID           int64      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TotalSubmissions int        `gorm:"not null;default:0" json:"total_submissions"`
	ApprovedCount    int        `gorm:"not null;default:0" json:"approved_count"`
	RejectedCount    int        `gorm:"not null;default:0" json:"rejected_count"`
	DailySubmissions int        `gorm:"not null;default:0" json:"daily_submissions"`
	DailyResetDate   *time.Time `gorm:"type:date" json:"daily_reset_date,omitempty"`
	TotalLikes       int        `gorm:"not null;default:0" json:"total_likes"`
	IsBanned         bool       `gorm:"not null;default:false" json:"is_banned"`
	BannedReason     string     `gorm:"size:500" json:"banned_reason,omitempty"`
	BannedAt         *time.Time `json:"banned_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (SubmissionStats) TableName() string {
	return "user_submission_stats"
}
