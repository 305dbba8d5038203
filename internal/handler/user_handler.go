package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.userService.Create(c.Context(), input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	found, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	var input domain.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.Update(c.Context(), id, input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.userService.SetActive(c.Context(), id, input.Active, middleware.GetCurrentActor(c)); err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User updated"})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	result, err := h.userService.List(c.Context(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *UserHandler) ListReviewers(c *fiber.Ctx) error {
	reviewers, err := h.userService.ListReviewers(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(reviewers)
}
