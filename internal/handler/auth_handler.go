package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return middleware.BadRequest("Username and password are required")
	}

	user, tokens, err := h.authService.Login(c.Context(), input)
	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
		return middleware.Unauthorized(err.Error())
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return middleware.BadRequest("Refresh token is required")
	}

	tokens, err := h.authService.RefreshToken(c.Context(), input.RefreshToken)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrAccountDisabled) {
		return middleware.Unauthorized(err.Error())
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return middleware.BadRequest("Refresh token is required")
	}

	if err := h.authService.Logout(c.Context(), input.RefreshToken); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}
