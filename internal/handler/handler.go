package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	Request      *RequestHandler
	Review       *ReviewHandler
	Catalog      *CatalogHandler
	User         *UserHandler
	Activity     *ActivityHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	Report       *ReportHandler
	Draft        *DraftHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		Request:      NewRequestHandler(services.Request, services.Lifecycle),
		Review:       NewReviewHandler(services.Lifecycle, services.Lock, services.Request),
		Catalog:      NewCatalogHandler(services.Catalog),
		User:         NewUserHandler(services.User),
		Activity:     NewActivityHandler(services.Activity),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
		Report:       NewReportHandler(services.Report),
		Draft:        NewDraftHandler(services.Draft),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

// mapDomainError translates workflow errors into HTTP errors. Anything not
// recognized passes through to the central error handler as a 500.
func mapDomainError(err error) error {
	var illegal *domain.IllegalTransitionError
	var missing *domain.MissingMetadataError
	var duplicate *domain.DuplicateRequestError

	switch {
	case errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return middleware.NotFound(err.Error())
	case errors.Is(err, domain.ErrTestInactive):
		return middleware.Conflict(err.Error())
	case errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateEmployeeNumber):
		return middleware.Conflict(err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		return middleware.BadRequest(err.Error())
	case errors.As(err, &illegal):
		return middleware.Conflict(err.Error())
	case errors.As(err, &missing):
		return middleware.BadRequest(err.Error())
	case errors.As(err, &duplicate):
		return middleware.Conflict(err.Error())
	default:
		return err
	}
}
