package services

import (
	"testing"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/database"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testAdminID is configured as a static admin in every test service.
const testAdminID int64 = 999

// newTestDB creates an in-memory SQLite database with the moderation schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SubmissionStats{},
		&models.Weapon{},
		&models.Submission{},
		&models.CatalogAttachment{},
		&models.Engagement{},
		&models.EngagementEvent{},
		&models.Report{},
		&models.StatsCache{},
		&models.Setting{},
	))
	require.NoError(t, database.ApplyConstraints(db))
	return db
}

func newSubmissionService(db *gorm.DB) *SubmissionService {
	settings := NewSettingsService(db, 5)
	stats := NewStatsService(db, 1000, time.Hour)
	roles := NewDBRoleChecker(db, "999")
	return NewSubmissionService(db, settings, NewContentFilter(), roles, stats)
}

func newReportService(db *gorm.DB) *ReportService {
	return NewReportService(db, NewDBRoleChecker(db, "999"), NewStatsService(db, 1000, time.Hour))
}

func newEngagementService(db *gorm.DB) *EngagementService {
	return NewEngagementService(db, NewStatsService(db, 1000, time.Hour))
}

// seedSubmission inserts a submission row directly, bypassing quota checks.
func seedSubmission(t *testing.T, db *gorm.DB, userID int64, status models.SubmissionStatus) *models.Submission {
	t.Helper()
	submission := &models.Submission{
		UserID:           userID,
		CustomWeaponName: "AK-47",
		Mode:             models.ModeMP,
		Name:             "Rapid fire build",
		Description:      "High mobility loadout",
		Status:           status,
		SubmittedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(submission).Error)
	return submission
}

// seedCatalogEntry inserts a published catalog row linked to a submission.
func seedCatalogEntry(t *testing.T, db *gorm.DB, sourceSubmissionID int64) *models.CatalogAttachment {
	t.Helper()
	entry := &models.CatalogAttachment{
		WeaponName:         "AK-47",
		Mode:               models.ModeMP,
		Name:               "Rapid fire build",
		SourceSubmissionID: &sourceSubmissionID,
		PublishedAt:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}
