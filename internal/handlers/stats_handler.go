package handlers

import (
	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Snapshot serves the cached aggregate row. Intentionally stale between
// refreshes; the dashboard shows updated_at alongside the numbers.
func (h *StatsHandler) Snapshot(c *fiber.Ctx) error {
	snap, err := h.stats.Snapshot(c.UserContext())
	if err != nil {
		return serviceError(c, err, "Failed to fetch stats")
	}
	return c.JSON(snap)
}

// Refresh forces a synchronous recompute.
func (h *StatsHandler) Refresh(c *fiber.Ctx) error {
	if err := h.stats.Refresh(c.UserContext()); err != nil {
		return serviceError(c, err, "Failed to refresh stats")
	}
	snap, err := h.stats.Snapshot(c.UserContext())
	if err != nil {
		return serviceError(c, err, "Failed to fetch stats")
	}
	return c.JSON(snap)
}
