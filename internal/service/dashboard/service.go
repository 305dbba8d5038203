package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second

	// A reviewer carrying more than this multiple of the mean pending
	// load is flagged as overloaded.
	overloadFactor = 1.5
)

type Stats struct {
	TotalRequests int64                          `json:"total_requests"`
	ByStatus      map[domain.RequestStatus]int64 `json:"by_status"`
	PendingReview int64                          `json:"pending_review"`
	UrgentPending int64                          `json:"urgent_pending"`
	Workload      []ReviewerWorkload             `json:"workload"`
}

type ReviewerWorkload struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	Pending      int64  `json:"pending"`
	Overloaded   bool   `json:"overloaded"`
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	redis       *redis.Client
}

func NewService(requestRepo repository.RequestRepository, userRepo repository.UserRepository, redisClient *redis.Client) Service {
	return &service{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		redis:       redisClient,
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: byStatus}
	for _, count := range byStatus {
		stats.TotalRequests += count
	}
	stats.PendingReview = byStatus[domain.StatusSubmitted] + byStatus[domain.StatusUnderReview]

	urgent, err := s.requestRepo.CountUrgentPending(ctx)
	if err != nil {
		return nil, err
	}
	stats.UrgentPending = urgent

	workload, err := s.reviewerWorkload(ctx)
	if err != nil {
		return nil, err
	}
	stats.Workload = workload

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}

	return stats, nil
}

func (s *service) reviewerWorkload(ctx context.Context) ([]ReviewerWorkload, error) {
	reviewers, err := s.userRepo.ListByRole(ctx, domain.RoleReviewer, true)
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		return nil, nil
	}

	workload := make([]ReviewerWorkload, 0, len(reviewers))
	var totalPending int64
	for _, reviewer := range reviewers {
		pending, err := s.requestRepo.CountPendingByReviewer(ctx, reviewer.ID)
		if err != nil {
			return nil, err
		}
		totalPending += pending
		workload = append(workload, ReviewerWorkload{
			ReviewerID:   reviewer.ID.String(),
			ReviewerName: reviewer.NameEN,
			Pending:      pending,
		})
	}

	mean := float64(totalPending) / float64(len(reviewers))
	for i := range workload {
		workload[i].Overloaded = mean > 0 && float64(workload[i].Pending) > mean*overloadFactor
	}
	return workload, nil
}
