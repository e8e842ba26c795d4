package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/codmarsenal/attachments-bot/internal/cache"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statsCacheKey = "ua:stats:snapshot"

// StatsService maintains the denormalized dashboard snapshot. The cache is
// allowed to be stale between refreshes: mutations only bump a counter, and
// a maintainer goroutine refreshes after enough mutations or on a timer.
// Callers needing exact counts query the source tables directly.
type StatsService struct {
	db        *gorm.DB
	threshold int64
	interval  time.Duration

	mutations atomic.Int64
	kick      chan struct{}
	done      chan struct{}
}

func NewStatsService(db *gorm.DB, threshold int, interval time.Duration) *StatsService {
	if threshold <= 0 {
		threshold = 25
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsService{
		db:        db,
		threshold: int64(threshold),
		interval:  interval,
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// NoteMutation is called by the workflow services after any write that
// affects the aggregates. Crossing the threshold nudges the maintainer;
// the write path itself never waits on a refresh.
func (s *StatsService) NoteMutation() {
	if s.mutations.Add(1) >= s.threshold {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// Start launches the maintainer goroutine. Stop shuts it down.
func (s *StatsService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-s.kick:
			case <-s.done:
				return
			}
			if err := s.Refresh(context.Background()); err != nil {
				slog.Error("stats cache refresh failed", "error", err)
			}
		}
	}()
}

func (s *StatsService) Stop() {
	close(s.done)
}

// Refresh recomputes every counter from the source tables and overwrites
// the single snapshot row. Safe to run concurrently with writers; no
// locking against them is needed or taken.
func (s *StatsService) Refresh(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)

	snap := models.StatsCache{ID: models.StatsCacheRowID}

	type statusCount struct {
		Status models.SubmissionStatus
		N      int
	}
	var byStatus []statusCount
	if err := db.Model(&models.Submission{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&byStatus).Error; err != nil {
		return wrapStorage(err)
	}
	for _, row := range byStatus {
		snap.TotalSubmissions += row.N
		switch row.Status {
		case models.StatusPending:
			snap.PendingCount = row.N
		case models.StatusApproved:
			snap.ApprovedCount = row.N
		case models.StatusRejected:
			snap.RejectedCount = row.N
		case models.StatusDeleted:
			snap.DeletedCount = row.N
		case models.StatusIrrelevant:
			snap.IrrelevantCount = row.N
		}
	}

	counts := []struct {
		dest  *int
		query *gorm.DB
	}{
		{&snap.BRCount, db.Model(&models.Submission{}).Where("mode = ?", models.ModeBR)},
		{&snap.MPCount, db.Model(&models.Submission{}).Where("mode = ?", models.ModeMP)},
		{&snap.TotalUsers, db.Model(&models.SubmissionStats{})},
		{&snap.BannedUsers, db.Model(&models.SubmissionStats{}).Where("is_banned = ?", true)},
		{&snap.TotalReports, db.Model(&models.Report{})},
		{&snap.PendingReports, db.Model(&models.Report{}).Where("status = ?", models.ReportPending)},
		{&snap.LastWeekSubmissions, db.Model(&models.Submission{}).Where("submitted_at > ?", weekAgo)},
		{&snap.LastWeekApprovals, db.Model(&models.Submission{}).Where("approved_at > ?", weekAgo)},
	}
	for _, c := range counts {
		var n int64
		if err := c.query.Count(&n).Error; err != nil {
			return wrapStorage(err)
		}
		*c.dest = int(n)
	}

	var likes struct{ Total int }
	if err := db.Model(&models.Submission{}).
		Select("COALESCE(SUM(like_count), 0) AS total").Scan(&likes).Error; err != nil {
		return wrapStorage(err)
	}
	snap.TotalLikes = likes.Total
	snap.UpdatedAt = time.Now().UTC()

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&snap).Error; err != nil {
		return wrapStorage(err)
	}

	s.mutations.Store(0)
	cache.Delete(ctx, statsCacheKey)
	slog.Debug("stats cache refreshed", "total_submissions", snap.TotalSubmissions)
	return nil
}

// Snapshot returns the cached aggregate row, computing it once when the
// table is still empty. Staleness is bounded by the refresh cadence.
func (s *StatsService) Snapshot(ctx context.Context) (*models.StatsCache, error) {
	var snap models.StatsCache
	err := cache.CacheAside(ctx, statsCacheKey, &snap, 30*time.Second, func() error {
		err := s.db.WithContext(ctx).First(&snap, "id = ?", models.StatsCacheRowID).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.Refresh(ctx); err != nil {
				return err
			}
			return s.db.WithContext(ctx).First(&snap, "id = ?", models.StatsCacheRowID).Error
		}
		return err
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &snap, nil
}
