package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/notification"
)

type NotificationHandler struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	unreadOnly := c.QueryBool("unread_only", false)

	result, err := h.notificationService.ListByUser(c.Context(), userID, unreadOnly, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	if err := h.notificationService.MarkAsRead(c.Context(), id); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notificationService.MarkAllAsRead(c.Context(), middleware.GetCurrentUserID(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) CountUnread(c *fiber.Ctx) error {
	count, err := h.notificationService.CountUnread(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread": count})
}
