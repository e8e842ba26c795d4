package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
)

// ReportService collects and deduplicates user reports against submissions.
// The invariant it maintains: a submission's report_count equals the number
// of non-dismissed reports filed against it.
type ReportService struct {
	db    *gorm.DB
	roles RoleChecker
	stats *StatsService
}

func NewReportService(db *gorm.DB, roles RoleChecker, stats *StatsService) *ReportService {
	return &ReportService{db: db, roles: roles, stats: stats}
}

// File records a report. A reporter may hold at most one pending report per
// submission; the check-then-insert is backed by a partial unique index so
// concurrent duplicates lose the race and surface as ErrDuplicatePending.
func (s *ReportService) File(ctx context.Context, submissionID, reporter int64, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: report reason is required", ErrValidation)
	}

	var report models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Select("id").First(&submission, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}

		var existing int64
		tx.Model(&models.Report{}).
			Where("submission_id = ? AND reporter_id = ? AND status = ?", submissionID, reporter, models.ReportPending).
			Count(&existing)
		if existing > 0 {
			return ErrDuplicatePending
		}

		report = models.Report{
			SubmissionID: submissionID,
			ReporterID:   reporter,
			Reason:       reason,
			Status:       models.ReportPending,
		}
		if err := tx.Create(&report).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicatePending
			}
			return wrapStorage(err)
		}

		return wrapStorage(tx.Model(&models.Submission{}).
			Where("id = ?", submissionID).
			Update("report_count", gorm.Expr("report_count + 1")).Error)
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("report filed", "report_id", report.ID, "submission_id", submissionID, "reporter", reporter)
	return &report, nil
}

// Resolve transitions pending -> reviewed|resolved|dismissed and stamps the
// actor. Dismissal takes the report out of the submission's report_count.
func (s *ReportService) Resolve(ctx context.Context, reportID, actor int64, outcome models.ReportStatus, note string) (*models.Report, error) {
	if !s.roles.IsAdmin(ctx, actor) {
		return nil, fmt.Errorf("%w: actor %d lacks admin capability", ErrPermissionDenied, actor)
	}
	if !outcome.Valid() || outcome == models.ReportPending {
		return nil, fmt.Errorf("%w: outcome must be reviewed, resolved or dismissed", ErrValidation)
	}

	var report models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, models.ReportPending).
			Updates(map[string]interface{}{
				"status":          outcome,
				"resolved_by":     actor,
				"resolved_at":     time.Now().UTC(),
				"resolution_note": note,
			})
		if res.Error != nil {
			return wrapStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			var existing models.Report
			if err := tx.Select("id", "status").First(&existing, "id = ?", reportID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return wrapStorage(err)
			}
			return fmt.Errorf("%w: report already %s", ErrInvalidTransition, existing.Status)
		}

		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			return wrapStorage(err)
		}

		if outcome == models.ReportDismissed {
			return wrapStorage(tx.Model(&models.Submission{}).
				Where("id = ? AND report_count > 0", report.SubmissionID).
				Update("report_count", gorm.Expr("report_count - 1")).Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.stats.NoteMutation()
	slog.Info("report resolved", "report_id", reportID, "actor", actor, "outcome", outcome)
	return &report, nil
}

// List pages reports, optionally filtered by status, newest first.
func (s *ReportService) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown report status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, wrapStorage(err)
	}
	return reports, total, nil
}

// RecountReports recomputes the non-dismissed report count from source rows
// and writes it back. Used to verify or repair the counter invariant.
func (s *ReportService) RecountReports(ctx context.Context, submissionID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Report{}).
			Where("submission_id = ? AND status <> ?", submissionID, models.ReportDismissed).
			Count(&count).Error; err != nil {
			return wrapStorage(err)
		}
		res := tx.Model(&models.Submission{}).
			Where("id = ?", submissionID).
			Update("report_count", count)
		if res.Error != nil {
			return wrapStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return count, err
}
