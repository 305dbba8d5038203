package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"lab-preauth/internal/config"
	"lab-preauth/internal/domain"
	"lab-preauth/internal/handler"
	"lab-preauth/internal/middleware"
	"lab-preauth/internal/pkg/i18n"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service"
	authsvc "lab-preauth/internal/service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := i18n.LoadTranslations("locales"); err != nil {
		log.Printf("Warning: Failed to load translations: %v", err)
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (document upload will not work)", err)
	}

	repos := repository.NewRepositories(db, cfg.ActivityLogCapacity)
	services := service.NewServices(repos, redisClient, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService authsvc.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/auth/me", h.Auth.Me)

	requests := protected.Group("/requests")
	requests.Post("/", middleware.RequirePermission("create_request"), h.Request.Create)
	requests.Post("/precheck", middleware.RequirePermission("create_request"), h.Request.Precheck)
	requests.Get("/", middleware.RequirePermission("view_requests"), h.Request.List)
	requests.Get("/:id", middleware.RequirePermission("view_requests"), h.Request.Get)
	requests.Put("/:id", middleware.RequirePermission("create_request"), h.Request.Update)
	requests.Get("/:id/validate", middleware.RequirePermission("view_requests"), h.Request.Validate)
	requests.Post("/:id/submit", middleware.RequirePermission("create_request"), h.Request.Submit)
	requests.Post("/:id/cancel", middleware.RequirePermission("create_request"), h.Request.Cancel)
	requests.Post("/:id/documents", middleware.RequirePermission("create_request"), h.Request.UploadDocument)
	requests.Delete("/:id/documents", middleware.RequirePermission("create_request"), h.Request.DeleteDocument)
	requests.Get("/:id/documents/url", middleware.RequirePermission("view_requests"), h.Request.DocumentURL)

	review := protected.Group("/requests/:id/review", middleware.RequirePermission("review_requests"))
	review.Post("/start", h.Review.Start)
	review.Post("/approve", h.Review.Approve)
	review.Post("/reject", h.Review.Reject)
	review.Post("/request-info", h.Review.RequestInfo)
	review.Post("/transfer", h.Review.Transfer)
	review.Post("/release-lock", h.Review.ReleaseLock)
	review.Get("/lock", h.Review.LockStatus)

	tests := protected.Group("/tests")
	tests.Get("/", middleware.RequirePermission("view_catalog"), h.Catalog.ListTests)
	tests.Get("/:id", middleware.RequirePermission("view_catalog"), h.Catalog.GetTest)
	tests.Post("/", middleware.RequirePermission("manage_catalog"), h.Catalog.CreateTest)
	tests.Put("/:id", middleware.RequirePermission("manage_catalog"), h.Catalog.UpdateTest)
	tests.Patch("/:id/active", middleware.RequirePermission("manage_catalog"), h.Catalog.SetTestActive)
	tests.Post("/import", middleware.RequirePermission("import_catalog"), h.Catalog.ImportTests)
	tests.Post("/import/error-report", middleware.RequirePermission("import_catalog"), h.Catalog.ImportErrorReport)

	icd10 := protected.Group("/icd10")
	icd10.Get("/search", h.Catalog.SearchICD10)
	icd10.Get("/:code", h.Catalog.GetICD10)

	users := protected.Group("/users", middleware.RequireRole(domain.RoleAdmin))
	users.Post("/", h.User.Create)
	users.Get("/", h.User.List)
	users.Get("/:id", h.User.Get)
	users.Put("/:id", h.User.Update)
	users.Patch("/:id/active", h.User.SetActive)

	protected.Get("/reviewers", middleware.RequirePermission("review_requests"), h.User.ListReviewers)

	drafts := protected.Group("/drafts")
	drafts.Put("/:formId", h.Draft.Save)
	drafts.Get("/:formId", h.Draft.Get)
	drafts.Delete("/:formId", h.Draft.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.CountUnread)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	activity := protected.Group("/activity", middleware.RequirePermission("view_activity"))
	activity.Get("/recent", h.Activity.Recent)
	activity.Get("/", h.Activity.List)

	protected.Get("/dashboard/stats", middleware.RequirePermission("view_dashboard"), h.Dashboard.Stats)

	reports := protected.Group("/reports", middleware.RequirePermission("view_reports"))
	reports.Get("/summary", h.Report.Summary)
	reports.Get("/export", h.Report.ExportCSV)
}
