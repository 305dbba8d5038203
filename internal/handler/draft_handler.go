package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/draft"
)

type DraftHandler struct {
	draftService draft.Service
}

func NewDraftHandler(draftService draft.Service) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

func (h *DraftHandler) Save(c *fiber.Ctx) error {
	formID := c.Params("formId")
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return middleware.BadRequest("Draft body must be valid JSON")
	}

	saved, err := h.draftService.Save(c.Context(), middleware.GetCurrentUserID(c), formID, json.RawMessage(body))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(saved)
}

func (h *DraftHandler) Get(c *fiber.Ctx) error {
	found, err := h.draftService.Get(c.Context(), middleware.GetCurrentUserID(c), c.Params("formId"))
	if err != nil {
		return err
	}
	if found == nil {
		return middleware.NotFound("Draft not found")
	}
	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *DraftHandler) Delete(c *fiber.Ctx) error {
	if err := h.draftService.Delete(c.Context(), middleware.GetCurrentUserID(c), c.Params("formId")); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Draft deleted"})
}
