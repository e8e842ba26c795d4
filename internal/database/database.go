package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/config"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for all models and applies the constraints
// AutoMigrate cannot express.
func Migrate() error {
	if err := DB.AutoMigrate(
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
		&models.AdminAccount{},
		&models.SystemLog{},
	); err != nil {
		return err
	}
	return ApplyConstraints(DB)
}

// ApplyConstraints adds the uniqueness/validity guarantees the transition
// logic relies on. The partial unique index is load-bearing: it is what
// makes concurrent duplicate report filing lose the race. The CHECK
// constraints are defense in depth behind the enum types and are
// Postgres-only syntax.
func ApplyConstraints(db *gorm.DB) error {
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_reports_pending_per_reporter
		 ON user_attachment_reports (submission_id, reporter_id)
		 WHERE status = 'pending'`,
	).Error; err != nil {
		return fmt.Errorf("failed to create pending-report index: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	checks := []string{
		`ALTER TABLE user_attachments DROP CONSTRAINT IF EXISTS chk_ua_status;
		 ALTER TABLE user_attachments ADD CONSTRAINT chk_ua_status
		 CHECK (status IN ('pending','approved','rejected','deleted','irrelevant'))`,
		`ALTER TABLE user_attachments DROP CONSTRAINT IF EXISTS chk_ua_mode;
		 ALTER TABLE user_attachments ADD CONSTRAINT chk_ua_mode
		 CHECK (mode IN ('br','mp'))`,
		`ALTER TABLE user_attachment_reports DROP CONSTRAINT IF EXISTS chk_report_status;
		 ALTER TABLE user_attachment_reports ADD CONSTRAINT chk_report_status
		 CHECK (status IN ('pending','reviewed','resolved','dismissed'))`,
		`ALTER TABLE user_attachment_engagement DROP CONSTRAINT IF EXISTS chk_engagement_rating;
		 ALTER TABLE user_attachment_engagement ADD CONSTRAINT chk_engagement_rating
		 CHECK (rating IS NULL OR rating IN (-1, 1))`,
	}
	for _, stmt := range checks {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply check constraint: %w", err)
		}
	}
	return nil
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
