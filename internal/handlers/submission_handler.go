package handlers

import (
	"errors"
	"strconv"

	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/codmarsenal/attachments-bot/internal/models"
	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/gofiber/fiber/v2"
)

// SubmissionHandler exposes the moderation queue to the admin dashboard.
type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	status := models.SubmissionStatus(c.Query("status", string(models.StatusPending)))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	submissions, total, err := h.submissions.ListByStatus(c.UserContext(), status, limit, offset)
	if err != nil {
		return serviceError(c, err, "Failed to fetch submissions")
	}

	return c.JSON(fiber.Map{
		"submissions": submissions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.Get(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch submission")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) Approve(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.Approve(c.UserContext(), id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to approve submission")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	submission, err := h.submissions.Reject(c.UserContext(), id, actorID(c), req.Reason)
	if err != nil {
		return serviceError(c, err, "Failed to reject submission")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) MarkIrrelevant(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.MarkIrrelevant(c.UserContext(), id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to mark submission irrelevant")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.SoftDelete(c.UserContext(), id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to delete submission")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) Restore(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.Restore(c.UserContext(), id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to restore submission")
	}
	return c.JSON(submission)
}

func (h *SubmissionHandler) BanUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}
	var req dto.BanUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.submissions.BanUser(c.UserContext(), userID, actorID(c), req.Reason); err != nil {
		return serviceError(c, err, "Failed to ban user")
	}
	return c.JSON(fiber.Map{"message": "User banned"})
}

func (h *SubmissionHandler) UnbanUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}
	if err := h.submissions.UnbanUser(c.UserContext(), userID, actorID(c)); err != nil {
		return serviceError(c, err, "Failed to unban user")
	}
	return c.JSON(fiber.Map{"message": "User unbanned"})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ID",
		})
	}
	return id, nil
}

// serviceError maps the workflow error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrDuplicatePending):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrQuotaExceeded):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrSystemDisabled):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: true, Message: fallback})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: fallback})
	}
}
