package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionService enforces the moderation state machine:
//
//	pending -> approved | rejected | irrelevant   (admin decision)
//	any non-deleted -> deleted                    (destructive override)
//	rejected | deleted -> pending                 (admin restore)
//
// Transitions are applied as single conditional UPDATEs so two concurrent
// admin actions cannot double-apply: first writer wins, the loser gets
// ErrInvalidTransition.
type SubmissionService struct {
	db       *gorm.DB
	settings *SettingsService
	filter   *ContentFilter
	roles    RoleChecker
	stats    *StatsService
}

func NewSubmissionService(db *gorm.DB, settings *SettingsService, filter *ContentFilter, roles RoleChecker, stats *StatsService) *SubmissionService {
	return &SubmissionService{db: db, settings: settings, filter: filter, roles: roles, stats: stats}
}

// Submit creates a new pending submission after validation, the ban gate
// and the daily quota check. Counters are bumped in the same transaction.
func (s *SubmissionService) Submit(ctx context.Context, userID int64, req *dto.SubmitRequest) (*models.Submission, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	enabled, err := s.settings.SystemEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrSystemDisabled
	}

	limit, err := s.settings.DailyLimit(ctx)
	if err != nil {
		return nil, err
	}

	var submission models.Submission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := loadOrCreateStats(tx, userID)
		if err != nil {
			return err
		}
		if stats.IsBanned {
			return fmt.Errorf("%w: user is banned from submitting", ErrPermissionDenied)
		}

		today := dateOnly(time.Now().UTC())
		if stats.DailyResetDate == nil || !stats.DailyResetDate.Equal(today) {
			stats.DailySubmissions = 0
			stats.DailyResetDate = &today
		}
		if stats.DailySubmissions >= limit {
			return ErrQuotaExceeded
		}

		submission = models.Submission{
			UserID:           userID,
			WeaponID:         req.WeaponID,
			CustomWeaponName: strings.TrimSpace(req.CustomWeaponName),
			Mode:             req.Mode,
			Name:             strings.TrimSpace(req.Name),
			Description:      strings.TrimSpace(req.Description),
			ImageFileID:      req.ImageFileID,
			Status:           models.StatusPending,
			SubmittedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&submission).Error; err != nil {
			return wrapStorage(err)
		}

		stats.DailySubmissions++
		stats.TotalSubmissions++
		if err := tx.Save(stats).Error; err != nil {
			return wrapStorage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("submission created", "submission_id", submission.ID, "user_id", userID, "mode", submission.Mode)
	return &submission, nil
}

// Approve transitions pending -> approved, stamps the actor, bumps the
// owner's approved counter and promotes the build into the public catalog.
func (s *SubmissionService) Approve(ctx context.Context, id, actor int64) (*models.Submission, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var submission *models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.transition(tx, id, []models.SubmissionStatus{models.StatusPending}, map[string]interface{}{
			"status":      models.StatusApproved,
			"approved_at": now,
			"approved_by": actor,
		})
		if err != nil {
			return err
		}

		if err := tx.Model(&models.SubmissionStats{}).
			Where("user_id = ?", submission.UserID).
			Update("approved_count", gorm.Expr("approved_count + 1")).Error; err != nil {
			return wrapStorage(err)
		}

		return s.promote(tx, submission, now)
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	invalidateCatalog(ctx, submission.Mode)
	slog.Info("submission approved", "submission_id", id, "actor", actor)
	return submission, nil
}

// Reject transitions pending -> rejected with a recorded reason.
func (s *SubmissionService) Reject(ctx context.Context, id, actor int64, reason string) (*models.Submission, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	var submission *models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.transition(tx, id, []models.SubmissionStatus{models.StatusPending}, map[string]interface{}{
			"status":           models.StatusRejected,
			"rejected_at":      time.Now().UTC(),
			"rejected_by":      actor,
			"rejection_reason": reason,
		})
		if err != nil {
			return err
		}
		return wrapStorage(tx.Model(&models.SubmissionStats{}).
			Where("user_id = ?", submission.UserID).
			Update("rejected_count", gorm.Expr("rejected_count + 1")).Error)
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("submission rejected", "submission_id", id, "actor", actor)
	return submission, nil
}

// MarkIrrelevant is the administrative override for off-topic content.
// Terminal like rejected, tagged separately for metrics.
func (s *SubmissionService) MarkIrrelevant(ctx context.Context, id, actor int64) (*models.Submission, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	submission, err := s.transition(s.db.WithContext(ctx), id, []models.SubmissionStatus{models.StatusPending}, map[string]interface{}{
		"status":      models.StatusIrrelevant,
		"rejected_at": time.Now().UTC(),
		"rejected_by": actor,
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("submission marked irrelevant", "submission_id", id, "actor", actor)
	return submission, nil
}

// SoftDelete marks a submission deleted from any other state. The row stays
// for the audit and report trail. Owners may delete their own submissions;
// any other actor needs the admin capability.
func (s *SubmissionService) SoftDelete(ctx context.Context, id, actor int64) (*models.Submission, error) {
	var current models.Submission
	if err := s.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	if current.UserID != actor {
		if err := s.requireAdmin(ctx, actor); err != nil {
			return nil, err
		}
	}

	submission, err := s.transition(s.db.WithContext(ctx), id, []models.SubmissionStatus{
		models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusIrrelevant,
	}, map[string]interface{}{
		"status":     models.StatusDeleted,
		"deleted_at": time.Now().UTC(),
		"deleted_by": actor,
	})
	if err != nil {
		return nil, err
	}

	// A deleted approved build leaves the public catalog.
	if err := s.db.WithContext(ctx).
		Where("source_submission_id = ?", id).
		Delete(&models.CatalogAttachment{}).Error; err != nil {
		slog.Error("catalog withdrawal failed", "submission_id", id, "error", err)
	}

	s.stats.NoteMutation()
	invalidateCatalog(ctx, submission.Mode)
	slog.Info("submission soft-deleted", "submission_id", id, "actor", actor)
	return submission, nil
}

// Restore returns a rejected, irrelevant or deleted submission to the review
// queue, clearing the previous decision stamps.
func (s *SubmissionService) Restore(ctx context.Context, id, actor int64) (*models.Submission, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	submission, err := s.transition(s.db.WithContext(ctx), id, []models.SubmissionStatus{
		models.StatusRejected, models.StatusIrrelevant, models.StatusDeleted,
	}, map[string]interface{}{
		"status":           models.StatusPending,
		"approved_at":      nil,
		"approved_by":      nil,
		"rejected_at":      nil,
		"rejected_by":      nil,
		"rejection_reason": "",
		"deleted_at":       nil,
		"deleted_by":       nil,
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("submission restored", "submission_id", id, "actor", actor)
	return submission, nil
}

func (s *SubmissionService) Get(ctx context.Context, id int64) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &submission, nil
}

// ListByStatus pages through submissions in one moderation state, newest
// first.
func (s *SubmissionService) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, int64, error) {
	if !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	var submissions []models.Submission
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("status = ?", status)
	query.Count(&total)

	if err := query.Order("submitted_at DESC").Limit(limit).Offset(offset).Find(&submissions).Error; err != nil {
		return nil, 0, wrapStorage(err)
	}
	return submissions, total, nil
}

// ListByOwner returns a user's own submissions across all states.
func (s *SubmissionService) ListByOwner(ctx context.Context, userID int64, limit, offset int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").Limit(limit).Offset(offset).
		Find(&submissions).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return submissions, nil
}

// BanUser flags a user's stats row so future submits fail the ban gate.
func (s *SubmissionService) BanUser(ctx context.Context, userID, actor int64, reason string) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := loadOrCreateStats(tx, userID)
		if err != nil {
			return err
		}
		stats.IsBanned = true
		stats.BannedReason = reason
		stats.BannedAt = &now
		return wrapStorage(tx.Save(stats).Error)
	})
}

func (s *SubmissionService) UnbanUser(ctx context.Context, userID, actor int64) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.SubmissionStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"is_banned":     false,
			"banned_reason": "",
			"banned_at":     nil,
		})
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns the per-user counter row, if any.
func (s *SubmissionService) Stats(ctx context.Context, userID int64) (*models.SubmissionStats, error) {
	var stats models.SubmissionStats
	if err := s.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &stats, nil
}

// transition applies a conditional single-statement update and reloads the
// row. RowsAffected == 0 means either the row is gone (ErrNotFound) or it
// was not in an allowed prior state (ErrInvalidTransition).
func (s *SubmissionService) transition(tx *gorm.DB, id int64, from []models.SubmissionStatus, updates map[string]interface{}) (*models.Submission, error) {
	res := tx.Model(&models.Submission{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		var existing models.Submission
		if err := tx.Select("id", "status").First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, wrapStorage(err)
		}
		return nil, fmt.Errorf("%w: cannot leave %s", ErrInvalidTransition, existing.Status)
	}

	var submission models.Submission
	if err := tx.First(&submission, "id = ?", id).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return &submission, nil
}

// promote copies an approved submission into the canonical catalog. The
// unique index on source_submission_id makes promotion idempotent.
func (s *SubmissionService) promote(tx *gorm.DB, submission *models.Submission, publishedAt time.Time) error {
	weaponName := submission.CustomWeaponName
	if submission.WeaponID != nil {
		var weapon models.Weapon
		if err := tx.First(&weapon, "id = ?", *submission.WeaponID).Error; err == nil {
			weaponName = weapon.Name
		}
	}

	entry := models.CatalogAttachment{
		WeaponID:           submission.WeaponID,
		WeaponName:         weaponName,
		Mode:               submission.Mode,
		Name:               submission.Name,
		Description:        submission.Description,
		ImageFileID:        submission.ImageFileID,
		SourceSubmissionID: &submission.ID,
		PublishedAt:        publishedAt,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_submission_id"}},
		DoNothing: true,
	}).Create(&entry).Error
	return wrapStorage(err)
}

func (s *SubmissionService) requireAdmin(ctx context.Context, actor int64) error {
	if !s.roles.IsAdmin(ctx, actor) {
		return fmt.Errorf("%w: actor %d lacks admin capability", ErrPermissionDenied, actor)
	}
	return nil
}

func (s *SubmissionService) validate(req *dto.SubmitRequest) error {
	if !req.Mode.Valid() {
		return fmt.Errorf("%w: mode must be br or mp", ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.WeaponID == nil && strings.TrimSpace(req.CustomWeaponName) == "" {
		return fmt.Errorf("%w: a weapon reference or name is required", ErrValidation)
	}
	for _, text := range []string{req.Name, req.Description, req.CustomWeaponName} {
		if ok, reason := s.filter.Check(text); !ok {
			return fmt.Errorf("%w: %s", ErrValidation, s.filter.RejectionMessage(reason))
		}
	}
	return nil
}

func loadOrCreateStats(tx *gorm.DB, userID int64) (*models.SubmissionStats, error) {
	var stats models.SubmissionStats
	err := tx.First(&stats, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.SubmissionStats{UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, wrapStorage(err)
		}
		return &stats, nil
	}
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &stats, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
