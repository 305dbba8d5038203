package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/lifecycle"
	"lab-preauth/internal/service/lock"
	"lab-preauth/internal/service/request"
)

type ReviewHandler struct {
	lifecycleService lifecycle.Service
	lockService      lock.Service
	requestService   request.Service
}

func NewReviewHandler(lifecycleService lifecycle.Service, lockService lock.Service, requestService request.Service) *ReviewHandler {
	return &ReviewHandler{
		lifecycleService: lifecycleService,
		lockService:      lockService,
		requestService:   requestService,
	}
}

// Start claims the review: acquire the advisory lock, then move the request
// to under_review. A lock held by someone else is reported, not broken.
func (h *ReviewHandler) Start(c *fiber.Ctx) error {
	requestID := c.Params("id")
	actor := middleware.GetCurrentActor(c)

	result, err := h.lockService.AcquireOrRefresh(c.Context(), requestID, actor)
	if err != nil {
		return err
	}
	if !result.Granted {
		return middleware.Locked(fmt.Sprintf("Request is being reviewed by %s", result.Lock.HolderName))
	}

	req, err := h.lifecycleService.Transition(c.Context(), requestID,
		domain.StatusUnderReview, actor, domain.TransitionMetadata{})
	if err != nil {
		// Leave no lock behind when the claim itself failed.
		_ = h.lockService.Release(c.Context(), requestID)
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	var input struct {
		ApprovalNumber string     `json:"approval_number"`
		ExpirationDate *time.Time `json:"expiration_date"`
		Notes          string     `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.decide(c, domain.StatusApproved, domain.TransitionMetadata{
		ApprovalNumber: input.ApprovalNumber,
		ExpirationDate: input.ExpirationDate,
		Notes:          input.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	var input struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.decide(c, domain.StatusRejected, domain.TransitionMetadata{
		Reason:  input.Reason,
		Details: input.Details,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *ReviewHandler) RequestInfo(c *fiber.Ctx) error {
	var input struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.decide(c, domain.StatusMoreInfoNeeded, domain.TransitionMetadata{
		Message: input.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *ReviewHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		Reason          string `json:"reason"`
		NewReviewerID   string `json:"new_reviewer_id"`
		NewReviewerName string `json:"new_reviewer_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	meta := domain.TransitionMetadata{
		TransferReason:  input.Reason,
		NewReviewerName: input.NewReviewerName,
	}
	if input.NewReviewerID != "" {
		id, err := uuid.Parse(input.NewReviewerID)
		if err != nil {
			return middleware.BadRequest("Invalid reviewer ID")
		}
		meta.NewReviewerID = &id
	}

	req, err := h.decide(c, domain.StatusSubmitted, meta)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

// decide performs a transition out of review and releases the advisory lock
// once the decision is persisted.
func (h *ReviewHandler) decide(c *fiber.Ctx, target domain.RequestStatus, meta domain.TransitionMetadata) (*domain.Request, error) {
	requestID := c.Params("id")
	actor := middleware.GetCurrentActor(c)

	req, err := h.lifecycleService.Transition(c.Context(), requestID, target, actor, meta)
	if err != nil {
		return nil, mapDomainError(err)
	}

	_ = h.lockService.Release(c.Context(), requestID)
	return req, nil
}

func (h *ReviewHandler) ReleaseLock(c *fiber.Ctx) error {
	requestID := c.Params("id")
	actor := middleware.GetCurrentActor(c)

	holder, err := h.lockService.Holder(c.Context(), requestID)
	if err != nil {
		return err
	}
	if holder != nil && holder.HolderID != actor.ID {
		return middleware.Forbidden("Lock is held by another reviewer")
	}

	if err := h.lockService.Release(c.Context(), requestID); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Lock released"})
}

func (h *ReviewHandler) LockStatus(c *fiber.Ctx) error {
	holder, err := h.lockService.Holder(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if holder == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"locked": false})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"locked": true, "lock": holder})
}
