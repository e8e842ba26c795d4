package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
)

// RoleChecker answers whether an actor holds the admin capability. Injected
// so the workflow never reaches into ambient configuration.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID int64) bool
}

// DashboardActor identifies moderation calls made through the admin HTTP API
// by an account with no linked Telegram ID. The auth middleware has already
// verified the admin role claim for those requests, so the checker accepts
// it without a lookup.
const DashboardActor int64 = -1

// DBRoleChecker checks a static config list first, then the user's DB flag.
// Mirrors the dual config/DB admin check on the HTTP side.
type DBRoleChecker struct {
	db        *gorm.DB
	staticIDs map[int64]bool
}

func NewDBRoleChecker(db *gorm.DB, adminUserIDs string) *DBRoleChecker {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(adminUserIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids[id] = true
		}
	}
	return &DBRoleChecker{db: db, staticIDs: ids}
}

func (r *DBRoleChecker) IsAdmin(ctx context.Context, userID int64) bool {
	if userID == DashboardActor {
		return true
	}
	if r.staticIDs[userID] {
		return true
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", userID).Error; err == nil && user.IsAdmin {
		return true
	}
	// Dashboard accounts act through their linked Telegram ID.
	var count int64
	r.db.WithContext(ctx).Model(&models.AdminAccount{}).
		Where("telegram_id = ?", userID).Count(&count)
	return count > 0
}
