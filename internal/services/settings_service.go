package services

import (
	"context"
	"strconv"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/cache"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsCacheTTL = 30 * time.Second

// SettingsService is the configuration-store capability injected into the
// workflow services. Callers never read settings as ambient global state.
type SettingsService struct {
	db                *gorm.DB
	defaultDailyLimit int
}

func NewSettingsService(db *gorm.DB, defaultDailyLimit int) *SettingsService {
	return &SettingsService{db: db, defaultDailyLimit: defaultDailyLimit}
}

// Get returns the stored value and whether the key exists. Existence is
// tracked separately from the value so a key stored empty is still found.
func (s *SettingsService) Get(ctx context.Context, key string) (string, bool, error) {
	var cached struct {
		Value string `json:"value"`
		Found bool   `json:"found"`
	}
	err := cache.CacheAside(ctx, "ua:setting:"+key, &cached, settingsCacheTTL, func() error {
		var setting models.Setting
		if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		cached.Value = setting.Value
		cached.Found = true
		return nil
	})
	if err != nil {
		return "", false, wrapStorage(err)
	}
	return cached.Value, cached.Found, nil
}

// Set upserts a setting and invalidates its cache entry.
func (s *SettingsService) Set(ctx context.Context, key, value string, adminID int64) error {
	setting := models.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: &adminID,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "updated_by"}),
	}).Create(&setting).Error
	if err != nil {
		return wrapStorage(err)
	}
	cache.Delete(ctx, "ua:setting:"+key)
	return nil
}

func (s *SettingsService) All(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return settings, nil
}

// SystemEnabled reports whether the submission system accepts new entries.
// Missing key means enabled: the feature is exposed unless an admin turns
// it off explicitly.
func (s *SettingsService) SystemEnabled(ctx context.Context) (bool, error) {
	val, ok, err := s.Get(ctx, models.SettingSystemEnabled)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return val == "1" || val == "true", nil
}

// DailyLimit returns the per-user daily submission cap.
func (s *SettingsService) DailyLimit(ctx context.Context) (int, error) {
	val, ok, err := s.Get(ctx, models.SettingDailyLimit)
	if err != nil {
		return 0, err
	}
	if ok {
		if n, convErr := strconv.Atoi(val); convErr == nil && n > 0 {
			return n, nil
		}
	}
	return s.defaultDailyLimit, nil
}
