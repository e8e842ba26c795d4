package services

import (
	"context"
	"testing"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackViewUpserts(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)

	require.NoError(t, svc.TrackView(ctx, 77, entry.ID))
	require.NoError(t, svc.TrackView(ctx, 77, entry.ID))

	row, err := svc.Get(ctx, 77, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalViews)
	assert.NotNil(t, row.FirstViewAt)
	assert.NotNil(t, row.LastViewAt)

	// One aggregate row, two raw events.
	var rows, events int64
	db.Model(&models.Engagement{}).Where("user_id = ? AND attachment_id = ?", 77, entry.ID).Count(&rows)
	db.Model(&models.EngagementEvent{}).Where("attachment_id = ? AND action = ?", entry.ID, models.ActionView).Count(&events)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, int64(2), events)

	// View counter propagates to the source submission.
	var submission models.Submission
	require.NoError(t, db.First(&submission, "id = ?", seeded.ID).Error)
	assert.Equal(t, 2, submission.ViewCount)
}

func TestTrackViewUnknownAttachment(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)

	err := svc.TrackView(context.Background(), 77, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrackClick(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)

	require.NoError(t, svc.TrackClick(ctx, 77, entry.ID))
	require.NoError(t, svc.TrackClick(ctx, 77, entry.ID))

	row, err := svc.Get(ctx, 77, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalClicks)
	assert.Equal(t, 0, row.TotalViews)

	// Clicks never touch the submission view counter.
	var submission models.Submission
	require.NoError(t, db.First(&submission, "id = ?", seeded.ID).Error)
	assert.Equal(t, 0, submission.ViewCount)
}

func TestViewAfterClickSetsFirstViewAt(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)

	// The click creates the row without any view stamp.
	require.NoError(t, svc.TrackClick(ctx, 77, entry.ID))
	row, err := svc.Get(ctx, 77, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, row.FirstViewAt)

	require.NoError(t, svc.TrackView(ctx, 77, entry.ID))
	require.NoError(t, svc.TrackView(ctx, 77, entry.ID))

	row, err = svc.Get(ctx, 77, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalViews)
	require.NotNil(t, row.FirstViewAt)
	require.NotNil(t, row.LastViewAt)
	assert.False(t, row.FirstViewAt.After(*row.LastViewAt))
}

func TestRateAdjustsLikeCounters(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)
	require.NoError(t, db.Create(&models.SubmissionStats{UserID: 42}).Error)

	likeCount := func() int {
		var submission models.Submission
		require.NoError(t, db.First(&submission, "id = ?", seeded.ID).Error)
		return submission.LikeCount
	}
	ownerLikes := func() int {
		var stats models.SubmissionStats
		require.NoError(t, db.First(&stats, "user_id = ?", int64(42)).Error)
		return stats.TotalLikes
	}

	require.NoError(t, svc.Rate(ctx, 77, entry.ID, 1))
	assert.Equal(t, 1, likeCount())
	assert.Equal(t, 1, ownerLikes())

	// Re-liking is idempotent.
	require.NoError(t, svc.Rate(ctx, 77, entry.ID, 1))
	assert.Equal(t, 1, likeCount())
	assert.Equal(t, 1, ownerLikes())

	// Flipping to a dislike withdraws the like.
	require.NoError(t, svc.Rate(ctx, 77, entry.ID, -1))
	assert.Equal(t, 0, likeCount())
	assert.Equal(t, 0, ownerLikes())

	// A second rater adds independently.
	require.NoError(t, svc.Rate(ctx, 78, entry.ID, 1))
	assert.Equal(t, 1, likeCount())

	// Still one row per rater.
	var rows int64
	db.Model(&models.Engagement{}).Where("attachment_id = ?", entry.ID).Count(&rows)
	assert.Equal(t, int64(2), rows)
}

func TestRateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)

	assert.ErrorIs(t, svc.Rate(ctx, 77, entry.ID, 0), ErrValidation)
	assert.ErrorIs(t, svc.Rate(ctx, 77, entry.ID, 5), ErrValidation)
	assert.ErrorIs(t, svc.Rate(ctx, 77, 99999, 1), ErrNotFound)
}

func TestEngagementGetNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newEngagementService(db)

	_, err := svc.Get(context.Background(), 77, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
