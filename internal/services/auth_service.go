package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/config"
	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues JWTs for the admin dashboard API. There is no open
// registration: accounts are created by an existing admin or bootstrapped
// from the environment at startup.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var account models.AdminAccount
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&account).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(&account)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		Email:       account.Email,
		Role:        account.Role,
	}, nil
}

// CreateAccount registers a dashboard login. Used by the bootstrap path and
// by existing admins.
func (s *AuthService) CreateAccount(ctx context.Context, email, password, role string) (*models.AdminAccount, error) {
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: email required and password must be at least 8 characters", ErrValidation)
	}

	var existing models.AdminAccount
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.AdminAccount{
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return &account, nil
}

// LinkTelegramID attaches a Telegram identity to a dashboard account so its
// moderation actions are attributed to that user ID. Tokens issued after
// linking carry the telegram_id claim.
func (s *AuthService) LinkTelegramID(ctx context.Context, email string, telegramID int64) error {
	result := s.db.WithContext(ctx).Model(&models.AdminAccount{}).
		Where("email = ?", email).
		Update("telegram_id", telegramID)
	if result.Error != nil {
		return wrapStorage(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AuthService) generateToken(account *models.AdminAccount) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID.String(),
		"email": account.Email,
		"role":  account.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	if account.TelegramID != nil {
		claims["telegram_id"] = *account.TelegramID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
