package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/cache"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
)

const (
	catalogCacheTTL  = time.Minute
	catalogPageLimit = 50
)

// CatalogService serves the published attachment catalog. Reads go through
// a short-TTL per-mode cache; promotion and withdrawal invalidate it.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Browse returns the newest published builds for one game mode.
func (s *CatalogService) Browse(ctx context.Context, mode models.GameMode, limit int) ([]models.CatalogAttachment, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: mode must be br or mp", ErrValidation)
	}
	if limit <= 0 || limit > catalogPageLimit {
		limit = 10
	}

	var entries []models.CatalogAttachment
	err := cache.CacheAside(ctx, catalogCacheKey(mode), &entries, catalogCacheTTL, func() error {
		return s.db.WithContext(ctx).
			Where("mode = ?", mode).
			Order("published_at DESC").Limit(catalogPageLimit).
			Find(&entries).Error
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.CatalogAttachment, error) {
	var entry models.CatalogAttachment
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &entry, nil
}

func catalogCacheKey(mode models.GameMode) string {
	return "ua:catalog:" + string(mode)
}

// invalidateCatalog drops the cached browse page for a mode. Called by the
// submission workflow when entries are published or withdrawn.
func invalidateCatalog(ctx context.Context, mode models.GameMode) {
	cache.Delete(ctx, catalogCacheKey(mode))
}
