package handlers

import (
	"strconv"

	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Query("status", ""))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.reports.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return serviceError(c, err, "Failed to fetch reports")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ReportHandler) Resolve(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ResolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reports.Resolve(c.UserContext(), id, actorID(c), models.ReportStatus(req.Outcome), req.Note)
	if err != nil {
		return serviceError(c, err, "Failed to resolve report")
	}
	return c.JSON(report)
}

// Recount re-derives a submission's report counter from source rows.
func (h *ReportHandler) Recount(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	count, err := h.reports.RecountReports(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err, "Failed to recount reports")
	}
	return c.JSON(fiber.Map{"submission_id": id, "report_count": count})
}
