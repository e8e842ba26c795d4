package services

import (
	"context"
	"errors"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService keeps the Telegram user table current. Rows are upserted on
// every contact so profile changes (username, language) track the platform.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// EnsureUser upserts the user row for an incoming update.
func (s *UserService) EnsureUser(ctx context.Context, telegramID int64, username, firstName, language string) (*models.User, error) {
	user := models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		Language:   language,
	}
	if language == "" {
		user.Language = "en"
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &user, nil
}

// SetAdmin grants or revokes the DB-side admin flag.
func (s *UserService) SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
