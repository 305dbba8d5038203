package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service/report"
)

type ReportHandler struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, middleware.BadRequest("Invalid or missing 'from' date (expected YYYY-MM-DD)")
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, middleware.BadRequest("Invalid or missing 'to' date (expected YYYY-MM-DD)")
	}
	// Make the end date inclusive.
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	summary, err := h.reportService.DecisionSummary(c.Context(), from, to)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	data, err := h.reportService.ExportDecisionsCSV(c.Context(), from, to)
	if err != nil {
		return mapDomainError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="decisions.csv"`)
	return c.Status(fiber.StatusOK).Send(data)
}
