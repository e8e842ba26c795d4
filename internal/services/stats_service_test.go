package services

import (
	"context"
	"testing"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshComputesSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, 1000, time.Hour)
	ctx := context.Background()

	now := time.Now().UTC()
	old := now.AddDate(0, 0, -10)

	submissions := []models.Submission{
		{UserID: 1, CustomWeaponName: "AK", Mode: models.ModeMP, Name: "a", Status: models.StatusPending, SubmittedAt: now, LikeCount: 3},
		{UserID: 1, CustomWeaponName: "AK", Mode: models.ModeBR, Name: "b", Status: models.StatusApproved, SubmittedAt: now, ApprovedAt: &now, LikeCount: 2},
		{UserID: 2, CustomWeaponName: "M4", Mode: models.ModeMP, Name: "c", Status: models.StatusRejected, SubmittedAt: old},
		{UserID: 2, CustomWeaponName: "M4", Mode: models.ModeMP, Name: "d", Status: models.StatusDeleted, SubmittedAt: old},
		{UserID: 3, CustomWeaponName: "M4", Mode: models.ModeBR, Name: "e", Status: models.StatusIrrelevant, SubmittedAt: now},
	}
	require.NoError(t, db.Create(&submissions).Error)

	require.NoError(t, db.Create(&[]models.SubmissionStats{
		{UserID: 1},
		{UserID: 2, IsBanned: true},
		{UserID: 3},
	}).Error)

	require.NoError(t, db.Create(&[]models.Report{
		{SubmissionID: submissions[0].ID, ReporterID: 9, Reason: "x", Status: models.ReportPending},
		{SubmissionID: submissions[1].ID, ReporterID: 9, Reason: "y", Status: models.ReportDismissed},
	}).Error)

	require.NoError(t, svc.Refresh(ctx))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.TotalSubmissions)
	assert.Equal(t, 1, snap.PendingCount)
	assert.Equal(t, 1, snap.ApprovedCount)
	assert.Equal(t, 1, snap.RejectedCount)
	assert.Equal(t, 1, snap.DeletedCount)
	assert.Equal(t, 1, snap.IrrelevantCount)
	assert.Equal(t, 2, snap.BRCount)
	assert.Equal(t, 3, snap.MPCount)
	assert.Equal(t, 3, snap.TotalUsers)
	assert.Equal(t, 1, snap.BannedUsers)
	assert.Equal(t, 5, snap.TotalLikes)
	assert.Equal(t, 2, snap.TotalReports)
	assert.Equal(t, 1, snap.PendingReports)
	assert.Equal(t, 3, snap.LastWeekSubmissions)
	assert.Equal(t, 1, snap.LastWeekApprovals)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestRefreshOverwritesPreviousSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, 1000, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	seedSubmission(t, db, 42, models.StatusPending)
	require.NoError(t, svc.Refresh(ctx))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalSubmissions)

	// Still a single snapshot row.
	var n int64
	db.Model(&models.StatsCache{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestSnapshotBootstrapsEmptyTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, 1000, time.Hour)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalSubmissions)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestNoteMutationKicksAtThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, 3, time.Hour)

	svc.NoteMutation()
	svc.NoteMutation()
	select {
	case <-svc.kick:
		t.Fatal("maintainer kicked before the threshold")
	default:
	}

	svc.NoteMutation()
	select {
	case <-svc.kick:
	default:
		t.Fatal("maintainer not kicked at the threshold")
	}
}

func TestRefreshResetsMutationCounter(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, 10, time.Hour)

	svc.NoteMutation()
	svc.NoteMutation()
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, int64(0), svc.mutations.Load())
}
