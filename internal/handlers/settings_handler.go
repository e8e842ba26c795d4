package handlers

import (
	"github.com/codmarsenal/attachments-bot/internal/dto"
	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) List(c *fiber.Ctx) error {
	settings, err := h.settings.All(c.UserContext())
	if err != nil {
		return serviceError(c, err, "Failed to fetch settings")
	}
	return c.JSON(fiber.Map{"settings": settings})
}

func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	key := c.Params("key")
	var req dto.SetSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.settings.Set(c.UserContext(), key, req.Value, actorID(c)); err != nil {
		return serviceError(c, err, "Failed to update setting")
	}
	return c.JSON(fiber.Map{"message": "Setting updated", "key": key})
}
