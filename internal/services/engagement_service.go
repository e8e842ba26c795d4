package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementService records per-user interaction with published catalog
// attachments. The aggregate table holds at most one row per
// (user, attachment) pair; every write path is an upsert.
type EngagementService struct {
	db    *gorm.DB
	stats *StatsService
}

func NewEngagementService(db *gorm.DB, stats *StatsService) *EngagementService {
	return &EngagementService{db: db, stats: stats}
}

// TrackView upserts the engagement row, appends a raw event and bumps the
// source submission's view counter.
func (s *EngagementService) TrackView(ctx context.Context, userID, attachmentID int64) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachment, err := s.lookup(tx, attachmentID)
		if err != nil {
			return err
		}

		row := models.Engagement{
			UserID:       userID,
			AttachmentID: attachmentID,
			FirstViewAt:  &now,
			LastViewAt:   &now,
			TotalViews:   1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "attachment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_views":   gorm.Expr("user_attachment_engagement.total_views + 1"),
				"first_view_at": gorm.Expr("COALESCE(user_attachment_engagement.first_view_at, ?)", now),
				"last_view_at":  now,
			}),
		}).Create(&row).Error; err != nil {
			return wrapStorage(err)
		}

		if err := s.appendEvent(tx, attachmentID, userID, models.ActionView, now); err != nil {
			return err
		}

		if attachment.SourceSubmissionID != nil {
			return wrapStorage(tx.Model(&models.Submission{}).
				Where("id = ?", *attachment.SourceSubmissionID).
				Update("view_count", gorm.Expr("view_count + 1")).Error)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.stats.NoteMutation()
	return nil
}

// TrackClick mirrors TrackView for click-throughs, without touching the
// submission view counter.
func (s *EngagementService) TrackClick(ctx context.Context, userID, attachmentID int64) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lookup(tx, attachmentID); err != nil {
			return err
		}

		row := models.Engagement{
			UserID:       userID,
			AttachmentID: attachmentID,
			TotalClicks:  1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "attachment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_clicks": gorm.Expr("user_attachment_engagement.total_clicks + 1"),
			}),
		}).Create(&row).Error; err != nil {
			return wrapStorage(err)
		}

		return s.appendEvent(tx, attachmentID, userID, models.ActionClick, now)
	})
}

// Rate sets or replaces the user's rating (-1 or +1) for an attachment and
// adjusts the source submission's like counter by the delta. Re-rating never
// creates a second row.
func (s *EngagementService) Rate(ctx context.Context, userID, attachmentID int64, rating int) error {
	if rating != -1 && rating != 1 {
		return fmt.Errorf("%w: rating must be -1 or +1", ErrValidation)
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachment, err := s.lookup(tx, attachmentID)
		if err != nil {
			return err
		}

		var existing models.Engagement
		findErr := tx.Where("user_id = ? AND attachment_id = ?", userID, attachmentID).First(&existing).Error

		oldLike := 0
		if findErr == nil && existing.Rating != nil && *existing.Rating == 1 {
			oldLike = 1
		}
		newLike := 0
		if rating == 1 {
			newLike = 1
		}

		row := models.Engagement{
			UserID:       userID,
			AttachmentID: attachmentID,
			Rating:       &rating,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "attachment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"rating": rating}),
		}).Create(&row).Error; err != nil {
			return wrapStorage(err)
		}

		if err := s.appendEvent(tx, attachmentID, userID, models.ActionRate, now); err != nil {
			return err
		}

		delta := newLike - oldLike
		if delta == 0 || attachment.SourceSubmissionID == nil {
			return nil
		}

		var submission models.Submission
		if err := tx.Select("id", "user_id").
			First(&submission, "id = ?", *attachment.SourceSubmissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return wrapStorage(err)
		}
		if err := tx.Model(&models.Submission{}).
			Where("id = ?", submission.ID).
			Update("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
			return wrapStorage(err)
		}
		return wrapStorage(tx.Model(&models.SubmissionStats{}).
			Where("user_id = ?", submission.UserID).
			Update("total_likes", gorm.Expr("total_likes + ?", delta)).Error)
	})
	if err != nil {
		return err
	}
	s.stats.NoteMutation()
	return nil
}

// Get returns the aggregate row for one (user, attachment) pair.
func (s *EngagementService) Get(ctx context.Context, userID, attachmentID int64) (*models.Engagement, error) {
	var row models.Engagement
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND attachment_id = ?", userID, attachmentID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &row, nil
}

func (s *EngagementService) lookup(tx *gorm.DB, attachmentID int64) (*models.CatalogAttachment, error) {
	var attachment models.CatalogAttachment
	if err := tx.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage(err)
	}
	return &attachment, nil
}

func (s *EngagementService) appendEvent(tx *gorm.DB, attachmentID, userID int64, action models.EngagementAction, at time.Time) error {
	event := models.EngagementEvent{
		AttachmentID: attachmentID,
		UserID:       &userID,
		Action:       action,
		OccurredAt:   at,
	}
	return wrapStorage(tx.Create(&event).Error)
}
