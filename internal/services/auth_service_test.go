package services

import (
	"context"
	"testing"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/config"
	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	// SQLite cannot evaluate the gen_random_uuid() column default;
	// the BeforeCreate hook fills the ID instead.
	require.NoError(t, db.Exec(`CREATE TABLE admin_accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		telegram_id INTEGER,
		role TEXT DEFAULT 'admin',
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	cfg := &config.Config{
		JWTSecret:       "test-secret-key",
		JWTAccessExpiry: time.Hour,
	}
	return NewAuthService(db, cfg), db
}

func TestCreateAccountAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, "mod@example.com", "supersecret", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.NotEqual(t, "supersecret", account.Password, "password must be stored hashed")

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "mod@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "mod@example.com", resp.Email)
	assert.Equal(t, "admin", resp.Role)

	token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret-key"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "mod@example.com", claims["email"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "mod@example.com", "supersecret", "admin")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "mod@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "stranger@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateAccountIdempotentOnEmail(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()

	first, err := svc.CreateAccount(ctx, "mod@example.com", "supersecret", "admin")
	require.NoError(t, err)

	second, err := svc.CreateAccount(ctx, "mod@example.com", "differentpass", "admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	db.Table("admin_accounts").Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "", "supersecret", "admin")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAccount(ctx, "mod@example.com", "short", "admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTokenCarriesLinkedTelegramID(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "mod@example.com", "supersecret", "admin")
	require.NoError(t, err)

	linked := int64(4242)
	require.NoError(t, svc.LinkTelegramID(ctx, "mod@example.com", linked))

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "mod@example.com", Password: "supersecret"})
	require.NoError(t, err)

	token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret-key"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(linked), claims["telegram_id"])
}

func TestLinkTelegramIDUnknownAccount(t *testing.T) {
	svc, _ := newAuthService(t)

	err := svc.LinkTelegramID(context.Background(), "nobody@example.com", 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}
