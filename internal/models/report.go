package models

import "time"

// ReportStatus is the closed set of report review states.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Report is an abuse/quality report filed by a user against a submission.
// A partial unique index on (submission_id, reporter_id) WHERE
// status='pending' guarantees at most one open report per reporter per
// submission even under concurrent filing.
type Report struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	SubmissionID int64        `gorm:"not null;index" json:"submission_id"`
	ReporterID   int64        `gorm:"not null;index" json:"reporter_id"`
	Reason       string       `gorm:"size:500;not null" json:"reason"`
	Status       ReportStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	ResolvedBy     *int64     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote string     `gorm:"size:1000" json:"resolution_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Submission Submission `gorm:"foreignKey:SubmissionID" json:"-"`
}

func (Report) TableName() string {
	return "user_attachment_reports"
}
