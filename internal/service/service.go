package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"lab-preauth/internal/config"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/activity"
	"lab-preauth/internal/service/auth"
	"lab-preauth/internal/service/catalog"
	"lab-preauth/internal/service/dashboard"
	"lab-preauth/internal/service/draft"
	"lab-preauth/internal/service/email"
	"lab-preauth/internal/service/lifecycle"
	"lab-preauth/internal/service/lock"
	"lab-preauth/internal/service/notification"
	"lab-preauth/internal/service/report"
	"lab-preauth/internal/service/request"
	"lab-preauth/internal/service/reviewerstats"
	"lab-preauth/internal/service/user"
	"lab-preauth/internal/service/validation"
)

type Services struct {
	Auth          auth.Service
	User          user.Service
	Request       request.Service
	Lifecycle     lifecycle.Service
	Validation    validation.Service
	Lock          lock.Service
	ReviewerStats reviewerstats.Service
	Catalog       catalog.Service
	Activity      activity.Service
	Notification  notification.Service
	Email         email.Service
	Draft         draft.Service
	Dashboard     dashboard.Service
	Report        report.Service
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	activityService := activity.NewService(repos.ActivityLog)
	notificationService := notification.NewService(repos.Notification, repos.User, emailService)
	validationService := validation.NewService()
	statsService := reviewerstats.NewService(repos.User)

	var lockStore lock.Store
	if redisClient != nil {
		lockStore = lock.NewRedisStore(redisClient)
	} else {
		lockStore = lock.NewMemoryStore()
	}
	lockService := lock.NewService(lockStore, cfg.LockDuration)

	lifecycleService := lifecycle.NewService(repos.Request, statsService, activityService, notificationService)
	requestService := request.NewService(repos.Request, repos.Test, validationService, minioClient, cfg.MinioBucket, cfg.DuplicateLookback)
	catalogService := catalog.NewService(repos.Test, repos.ICD10, activityService)
	authService := auth.NewService(repos.User, repos.Session, activityService, cfg)
	userService := user.NewService(repos.User, activityService)
	draftService := draft.NewService(redisClient)
	dashboardService := dashboard.NewService(repos.Request, repos.User, redisClient)
	reportService := report.NewService(repos.Request)

	return &Services{
		Auth:          authService,
		User:          userService,
		Request:       requestService,
		Lifecycle:     lifecycleService,
		Validation:    validationService,
		Lock:          lockService,
		ReviewerStats: statsService,
		Catalog:       catalogService,
		Activity:      activityService,
		Notification:  notificationService,
		Email:         emailService,
		Draft:         draftService,
		Dashboard:     dashboardService,
		Report:        reportService,
	}
}
