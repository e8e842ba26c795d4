package services

import (
	"context"
	"testing"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionReportCount(t *testing.T, svc *ReportService, id int64) int {
	t.Helper()
	var submission models.Submission
	require.NoError(t, svc.db.First(&submission, "id = ?", id).Error)
	return submission.ReportCount
}

func TestFileReport(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)

	report, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, seeded.ID, report.SubmissionID)
	assert.Equal(t, int64(77), report.ReporterID)

	assert.Equal(t, 1, submissionReportCount(t, svc, seeded.ID))
}

func TestFileReportDuplicatePending(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)

	_, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)

	_, err = svc.File(ctx, seeded.ID, 77, "still misleading")
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.Equal(t, 1, submissionReportCount(t, svc, seeded.ID))

	// A different reporter is not deduplicated.
	_, err = svc.File(ctx, seeded.ID, 78, "agreed, misleading")
	require.NoError(t, err)
	assert.Equal(t, 2, submissionReportCount(t, svc, seeded.ID))
}

func TestFileReportUnknownSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)

	_, err := svc.File(context.Background(), 99999, 77, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileReportEmptyReason(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	_, err := svc.File(context.Background(), seeded.ID, 77, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveReport(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	filed, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, filed.ID, testAdminID, models.ReportResolved, "confirmed and handled")
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, testAdminID, *resolved.ResolvedBy)
	assert.Equal(t, "confirmed and handled", resolved.ResolutionNote)

	// Non-dismissed resolutions keep the report in the counter.
	assert.Equal(t, 1, submissionReportCount(t, svc, seeded.ID))
}

func TestDismissDecrementsReportCount(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	filed, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, filed.ID, testAdminID, models.ReportDismissed, "not actionable")
	require.NoError(t, err)
	assert.Equal(t, 0, submissionReportCount(t, svc, seeded.ID))

	// After dismissal the reporter may file again.
	_, err = svc.File(ctx, seeded.ID, 77, "new evidence")
	require.NoError(t, err)
	assert.Equal(t, 1, submissionReportCount(t, svc, seeded.ID))
}

func TestResolveReportTwice(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	filed, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, filed.ID, testAdminID, models.ReportReviewed, "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, filed.ID, testAdminID, models.ReportDismissed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, submissionReportCount(t, svc, seeded.ID))
}

func TestResolveValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	filed, err := svc.File(ctx, seeded.ID, 77, "misleading build")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, filed.ID, testAdminID, models.ReportPending, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Resolve(ctx, filed.ID, testAdminID, "bogus", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Resolve(ctx, filed.ID, 42, models.ReportDismissed, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Resolve(ctx, 99999, testAdminID, models.ReportDismissed, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReports(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	first, err := svc.File(ctx, seeded.ID, 77, "one")
	require.NoError(t, err)
	_, err = svc.File(ctx, seeded.ID, 78, "two")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, first.ID, testAdminID, models.ReportDismissed, "")
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, models.ReportPending, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, pending, 1)

	all, total, err := svc.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	_, _, err = svc.List(ctx, "bogus", 10, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecountReports(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	_, err := svc.File(ctx, seeded.ID, 77, "one")
	require.NoError(t, err)
	_, err = svc.File(ctx, seeded.ID, 78, "two")
	require.NoError(t, err)

	// Corrupt the counter, then repair it.
	require.NoError(t, db.Model(&models.Submission{}).
		Where("id = ?", seeded.ID).Update("report_count", 9).Error)

	count, err := svc.RecountReports(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 2, submissionReportCount(t, svc, seeded.ID))

	_, err = svc.RecountReports(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
