package models

import (
	"time"

	"gorm.io/datatypes"
)

// Engagement aggregates one user's interaction with one catalog attachment.
// Composite primary key; rows are upserted, never duplicated.
type Engagement struct {
	UserID       int64      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	AttachmentID int64      `gorm:"primaryKey;autoIncrement:false" json:"attachment_id"`
	FirstViewAt  *time.Time `json:"first_view_at,omitempty"`
	LastViewAt   *time.Time `json:"last_view_at,omitempty"`
	TotalViews   int        `gorm:"not null;default:0" json:"total_views"`
	TotalClicks  int        `gorm:"not null;default:0" json:"total_clicks"`
	Rating       *int       `json:"rating,omitempty"`
}

func (Engagement) TableName() string {
	return "user_attachment_engagement"
}

// EngagementAction labels a raw engagement event.
type EngagementAction string

const (
	ActionView  EngagementAction = "view"
	ActionClick EngagementAction = "click"
	ActionShare EngagementAction = "share"
	ActionCopy  EngagementAction = "copy"
	ActionRate  EngagementAction = "rate"
)

// EngagementEvent is the append-only event log behind the aggregated
// Engagement rows, kept for analytics recomputation.
type EngagementEvent struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	AttachmentID int64            `gorm:"not null;index:ix_events_attachment_date,priority:1" json:"attachment_id"`
	UserID       *int64           `gorm:"index" json:"user_id,omitempty"`
	Action       EngagementAction `gorm:"size:10;not null" json:"action"`
	Metadata     datatypes.JSON   `gorm:"type:jsonb" json:"metadata,omitempty"`
	OccurredAt   time.Time        `gorm:"not null;index:ix_events_attachment_date,priority:2" json:"occurred_at"`
}

func (EngagementEvent) TableName() string {
	return "attachment_metrics"
}
