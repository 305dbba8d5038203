package handler

import (
	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/activity"
)

type ActivityHandler struct {
	activityService activity.Service
}

func NewActivityHandler(activityService activity.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	entries, err := h.activityService.Recent(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var category *domain.ActivityCategory
	if raw := c.Query("category"); raw != "" {
		cat := domain.ActivityCategory(raw)
		category = &cat
	}

	result, err := h.activityService.List(c.Context(), category, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
