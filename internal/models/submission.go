package models

import "time"

// SubmissionStatus is the closed set of moderation states. The same values
// are enforced by a CHECK constraint at the database layer as defense in
// depth; application code validates against this type first.
type SubmissionStatus string

const (
	StatusPending    SubmissionStatus = "pending"
	StatusApproved   SubmissionStatus = "approved"
	StatusRejected   SubmissionStatus = "rejected"
	StatusDeleted    SubmissionStatus = "deleted"
	StatusIrrelevant SubmissionStatus = "irrelevant"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDeleted, StatusIrrelevant:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed except the
// soft-delete override.
func (s SubmissionStatus) Terminal() bool {
	return s != StatusPending
}

// GameMode selects between battle royale and multiplayer loadouts.
type GameMode string

const (
	ModeBR GameMode = "br"
	ModeMP GameMode = "mp"
)

func (m GameMode) Valid() bool {
	return m == ModeBR || m == ModeMP
}

// Submission is a user-proposed weapon attachment build awaiting (or having
// received) a moderation decision. Rows are never physically deleted; the
// deleted status preserves the audit and report trail.
type Submission struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	UserID           int64            `gorm:"not null;index" json:"user_id"`
	WeaponID         *int64           `gorm:"index" json:"weapon_id,omitempty"`
	CustomWeaponName string           `gorm:"size:100" json:"custom_weapon_name,omitempty"`
	Mode             GameMode         `gorm:"size:4;not null" json:"mode"`
	Name             string           `gorm:"size:200;not null" json:"name"`
	Description      string           `gorm:"size:2000" json:"description,omitempty"`
	ImageFileID      string           `gorm:"size:255" json:"image_file_id,omitempty"`
	Status           SubmissionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SubmittedAt      time.Time        `gorm:"not null" json:"submitted_at"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *int64     `json:"approved_by,omitempty"`

	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      *int64     `json:"rejected_by,omitempty"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *int64     `json:"deleted_by,omitempty"`

	LikeCount   int `gorm:"not null;default:0" json:"like_count"`
	ReportCount int `gorm:"not null;default:0" json:"report_count"`
	ViewCount   int `gorm:"not null;default:0" json:"view_count"`

	User User `gorm:"foreignKey:UserID;references:TelegramID" json:"-"`
}

func (Submission) TableName() string {
	return "user_attachments"
}

// WeaponName returns the referenced catalog weapon name or the free-text
// fallback the user typed.
func (s *Submission) WeaponName(weapon *Weapon) string {
	if weapon != nil {
		return weapon.Name
	}
	return s.CustomWeaponName
}
