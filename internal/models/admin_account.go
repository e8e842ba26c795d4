package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminAccount is a dashboard login for the admin HTTP API. Separate from
// the Telegram User table: dashboard access is email/password, bot-side
// admin actions key off the Telegram ID.
type AdminAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	TelegramID *int64    `gorm:"index" json:"telegram_id,omitempty"`
	Role       string    `gorm:"size:20;default:'admin'" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate ensures the UUID is set before creation
func (a *AdminAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (AdminAccount) TableName() string {
	return "admin_accounts"
}
