package models

import "time"

// Weapon is the minimal weapon catalog submissions may reference. Seeded by
// admins; submissions for unlisted weapons carry a free-text name instead.
type Weapon struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_weapons_name_mode" json:"name"`
	Mode      GameMode  `gorm:"size:4;not null;uniqueIndex:idx_weapons_name_mode" json:"mode"`
	Category  string    `gorm:"size:50" json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Weapon) TableName() string {
	return "weapons"
}

// CatalogAttachment is the canonical, publicly served attachment catalog.
// Approved submissions are promoted here; the catalog is read-optimized and
// admin-curated, separate from the moderation tables.
type CatalogAttachment struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	WeaponID           *int64    `gorm:"index" json:"weapon_id,omitempty"`
	WeaponName         string    `gorm:"size:100;not null;index" json:"weapon_name"`
	Mode               GameMode  `gorm:"size:4;not null;index" json:"mode"`
	Name               string    `gorm:"size:200;not null" json:"name"`
	Description        string    `gorm:"size:2000" json:"description,omitempty"`
	ImageFileID        string    `gorm:"size:255" json:"image_file_id,omitempty"`
	SourceSubmissionID *int64    `gorm:"uniqueIndex" json:"source_submission_id,omitempty"`
	PublishedAt        time.Time `gorm:"not null" json:"published_at"`
}

func (CatalogAttachment) TableName() string {
	return "attachments"
}
