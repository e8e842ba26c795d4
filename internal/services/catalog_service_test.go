package services

import (
	"context"
	"testing"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseReturnsNewestFirstPerMode(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	base := time.Now().UTC()
	entries := []models.CatalogAttachment{
		{WeaponName: "AK-47", Mode: models.ModeMP, Name: "older", PublishedAt: base.Add(-2 * time.Hour)},
		{WeaponName: "M13", Mode: models.ModeMP, Name: "newer", PublishedAt: base},
		{WeaponName: "Kilo", Mode: models.ModeBR, Name: "br build", PublishedAt: base},
	}
	require.NoError(t, db.Create(&entries).Error)

	mp, err := svc.Browse(ctx, models.ModeMP, 10)
	require.NoError(t, err)
	require.Len(t, mp, 2)
	assert.Equal(t, "newer", mp[0].Name)
	assert.Equal(t, "older", mp[1].Name)

	br, err := svc.Browse(ctx, models.ModeBR, 10)
	require.NoError(t, err)
	require.Len(t, br, 1)

	limited, err := svc.Browse(ctx, models.ModeMP, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = svc.Browse(ctx, "zombies", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusApproved)
	entry := seedCatalogEntry(t, db, seeded.ID)

	got, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Name, got.Name)

	_, err = svc.Get(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprovedSubmissionAppearsInBrowse(t *testing.T) {
	db := newTestDB(t)
	submissions := newSubmissionService(db)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	seeded := seedSubmission(t, db, 42, models.StatusPending)
	_, err := submissions.Approve(ctx, seeded.ID, testAdminID)
	require.NoError(t, err)

	entries, err := catalog.Browse(ctx, seeded.Mode, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, seeded.Name, entries[0].Name)

	// Soft-deleting the source withdraws it from the catalog.
	_, err = submissions.SoftDelete(ctx, seeded.ID, testAdminID)
	require.NoError(t, err)

	entries, err = catalog.Browse(ctx, seeded.Mode, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
