package models

import "time"

// StatsCacheRowID is the fixed primary key of the single snapshot row.
const StatsCacheRowID = 1

// StatsCache is the denormalized aggregate snapshot backing admin dashboard
// reads. It is intentionally stale between refreshes; callers needing exact
// counts query the source tables directly.
type StatsCache struct {
	ID int `gorm:"primaryKey;autoIncrement:false" json:"id"`

	TotalSubmissions int `gorm:"not null;default:0" json:"total_submissions"`
	PendingCount     int `gorm:"not null;default:0" json:"pending_count"`
	ApprovedCount    int `gorm:"not null;default:0" json:"approved_count"`
	RejectedCount    int `gorm:"not null;default:0" json:"rejected_count"`
	DeletedCount     int `gorm:"not null;default:0" json:"deleted_count"`
	IrrelevantCount  int `gorm:"not null;default:0" json:"irrelevant_count"`

	BRCount int `gorm:"column:br_count;not null;default:0" json:"br_count"`
	MPCount int `gorm:"column:mp_count;not null;default:0" json:"mp_count"`

	TotalUsers  int `gorm:"not null;default:0" json:"total_users"`
	BannedUsers int `gorm:"not null;default:0" json:"banned_users"`

	TotalLikes     int `gorm:"not null;default:0" json:"total_likes"`
	TotalReports   int `gorm:"not null;default:0" json:"total_reports"`
	PendingReports int `gorm:"not null;default:0" json:"pending_reports"`

	LastWeekSubmissions int `gorm:"not null;default:0" json:"last_week_submissions"`
	LastWeekApprovals   int `gorm:"not null;default:0" json:"last_week_approvals"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (StatsCache) TableName() string {
	return "ua_stats_cache"
}
