package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/lifecycle"
	"lab-preauth/internal/service/request"
)

type RequestHandler struct {
	requestService   request.Service
	lifecycleService lifecycle.Service
}

func NewRequestHandler(requestService request.Service, lifecycleService lifecycle.Service) *RequestHandler {
	return &RequestHandler{
		requestService:   requestService,
		lifecycleService: lifecycleService,
	}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.requestService.Create(c.Context(), input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var filter domain.RequestFilter
	if s := c.Query("status"); s != "" {
		status := domain.RequestStatus(s)
		if !status.IsValid() {
			return middleware.BadRequest("Unknown status filter")
		}
		filter.Status = &status
	}
	if p := c.Query("priority"); p != "" {
		priority := domain.Priority(p)
		filter.Priority = &priority
	}
	if r := c.Query("reviewer_id"); r != "" {
		reviewerID, err := uuid.Parse(r)
		if err != nil {
			return middleware.BadRequest("Invalid reviewer ID")
		}
		filter.ReviewerID = &reviewerID
	}
	if mine := c.QueryBool("mine", false); mine {
		userID := middleware.GetCurrentUserID(c)
		filter.CreatedBy = &userID
	}

	result, err := h.requestService.List(c.Context(), filter, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RequestHandler) Get(c *fiber.Ctx) error {
	req, err := h.requestService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Update(c *fiber.Ctx) error {
	var input domain.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.requestService.UpdateClinical(c.Context(), c.Params("id"), input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Validate(c *fiber.Ctx) error {
	report, err := h.requestService.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// Precheck scores raw form input without creating anything, so the intake
// form can show criteria feedback as the user types.
func (h *RequestHandler) Precheck(c *fiber.Ctx) error {
	var input domain.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	report, err := h.requestService.Precheck(c.Context(), input)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	req, err := h.lifecycleService.Transition(c.Context(), c.Params("id"),
		domain.StatusSubmitted, middleware.GetCurrentActor(c), domain.TransitionMetadata{})
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.lifecycleService.Transition(c.Context(), c.Params("id"),
		domain.StatusCancelled, middleware.GetCurrentActor(c),
		domain.TransitionMetadata{Reason: input.Reason})
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) UploadDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("Missing file upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return middleware.BadRequest("Unable to read uploaded file")
	}
	defer file.Close()

	mediaType := fileHeader.Header.Get("Content-Type")
	req, err := h.requestService.AttachDocument(c.Context(), c.Params("id"),
		middleware.GetCurrentActor(c), fileHeader.Filename, mediaType, fileHeader.Size, file)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) DeleteDocument(c *fiber.Ctx) error {
	objectKey := c.Query("key")
	if objectKey == "" {
		return middleware.BadRequest("Document key is required")
	}

	req, err := h.requestService.RemoveDocument(c.Context(), c.Params("id"),
		middleware.GetCurrentActor(c), objectKey)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) DocumentURL(c *fiber.Ctx) error {
	objectKey := c.Query("key")
	if objectKey == "" {
		return middleware.BadRequest("Document key is required")
	}

	url, err := h.requestService.DocumentURL(c.Context(), c.Params("id"), objectKey)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": url})
}
