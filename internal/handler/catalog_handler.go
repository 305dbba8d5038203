package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/catalog"
)

type CatalogHandler struct {
	catalogService catalog.Service
}

func NewCatalogHandler(catalogService catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) CreateTest(c *fiber.Ctx) error {
	var input domain.CreateTestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	test, err := h.catalogService.CreateTest(c.Context(), input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(test)
}

func (h *CatalogHandler) GetTest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid test ID")
	}

	test, err := h.catalogService.GetTest(c.Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(test)
}

func (h *CatalogHandler) UpdateTest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid test ID")
	}

	var input domain.CreateTestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	test, err := h.catalogService.UpdateTest(c.Context(), id, input, middleware.GetCurrentActor(c))
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(test)
}

func (h *CatalogHandler) SetTestActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid test ID")
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.catalogService.SetTestActive(c.Context(), id, input.Active, middleware.GetCurrentActor(c)); err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Test updated"})
}

func (h *CatalogHandler) ListTests(c *fiber.Ctx) error {
	params := getPaginationParams(c)
	activeOnly := c.QueryBool("active_only", false)

	if term := c.Query("search"); term != "" {
		result, err := h.catalogService.SearchTests(c.Context(), term, params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(result)
	}

	result, err := h.catalogService.ListTests(c.Context(), activeOnly, params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CatalogHandler) ImportTests(c *fiber.Ctx) error {
	var input struct {
		Rows []domain.TestImportRow `json:"rows"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if len(input.Rows) == 0 {
		return middleware.BadRequest("No rows to import")
	}

	result, err := h.catalogService.ImportTests(c.Context(), input.Rows, middleware.GetCurrentActor(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// ImportErrorReport re-renders a posted import result as a CSV download.
func (h *CatalogHandler) ImportErrorReport(c *fiber.Ctx) error {
	var result domain.ImportResult
	if err := c.BodyParser(&result); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	report, err := h.catalogService.ImportErrorReport(&result)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="import-errors.csv"`)
	return c.Status(fiber.StatusOK).Send(report)
}

func (h *CatalogHandler) SearchICD10(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return middleware.BadRequest("Search term is required")
	}

	codes, err := h.catalogService.SearchICD10(c.Context(), term, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(codes)
}

func (h *CatalogHandler) GetICD10(c *fiber.Ctx) error {
	code, err := h.catalogService.GetICD10(c.Context(), c.Params("code"))
	if err != nil {
		return err
	}
	if code == nil {
		return middleware.NotFound("ICD-10 code not found")
	}
	return c.Status(fiber.StatusOK).JSON(code)
}
