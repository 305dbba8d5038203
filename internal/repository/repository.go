package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Request      RequestRepository
	Test         TestRepository
	ICD10        ICD10Repository
	User         UserRepository
	ActivityLog  ActivityLogRepository
	Notification NotificationRepository
	Session      SessionRepository
}

func NewRepositories(db *sqlx.DB, activityLogCapacity int) *Repositories {
	return &Repositories{
		Request:      NewRequestRepository(db),
		Test:         NewTestRepository(db),
		ICD10:        NewICD10Repository(db),
		User:         NewUserRepository(db),
		ActivityLog:  NewActivityLogRepository(db, activityLogCapacity),
		Notification: NewNotificationRepository(db),
		Session:      NewSessionRepository(db),
	}
}
