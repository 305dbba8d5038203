package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/activity"
)

// Service is user administration: admins create, update and deactivate
// accounts. There is no self-registration.
type Service interface {
	Create(ctx context.Context, input domain.CreateUserInput, actor domain.Actor) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput, actor domain.Actor) (*domain.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, actor domain.Actor) error
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error)
	ListReviewers(ctx context.Context) ([]domain.User, error)
}

type service struct {
	userRepo repository.UserRepository
	activity activity.Service
}

func NewService(userRepo repository.UserRepository, activityService activity.Service) Service {
	return &service{userRepo: userRepo, activity: activityService}
}

func (s *service) Create(ctx context.Context, input domain.CreateUserInput, actor domain.Actor) (*domain.User, error) {
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	if err := s.checkUnique(ctx, input.Username, input.Email, input.EmployeeNumber, nil); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:             uuid.New(),
		Username:       input.Username,
		Email:          input.Email,
		PasswordHash:   string(hashed),
		NameEN:         input.NameEN,
		NameAR:         input.NameAR,
		Role:           input.Role,
		Department:     input.Department,
		Facility:       input.Facility,
		EmployeeNumber: input.EmployeeNumber,
		Phone:          input.Phone,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Created user %s", user.Username),
		string(user.Role), domain.ActivityAdmin)
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput, actor domain.Actor) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEmail
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}
	if input.NameEN != nil {
		user.NameEN = *input.NameEN
	}
	if input.NameAR != nil {
		user.NameAR = *input.NameAR
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, fmt.Errorf("unknown role %q", *input.Role)
		}
		user.Role = *input.Role
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.Facility != nil {
		user.Facility = *input.Facility
	}
	if input.EmployeeNumber != nil {
		if *input.EmployeeNumber != nil {
			exists, err := s.userRepo.ExistsByEmployeeNumber(ctx, **input.EmployeeNumber, &id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateEmployeeNumber
			}
		}
		user.EmployeeNumber = *input.EmployeeNumber
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Updated user %s", user.Username),
		"", domain.ActivityAdmin)
	return user, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool, actor domain.Actor) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("%s user %s", verb, user.Username),
		"", domain.ActivityAdmin)
	return nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.User]{}, err
	}
	return domain.NewPaginatedResponse(users, params.Page, params.PageSize, total), nil
}

func (s *service) ListReviewers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListByRole(ctx, domain.RoleReviewer, true)
}

func (s *service) checkUnique(ctx context.Context, username, email string, employeeNumber *string, excludeID *uuid.UUID) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateUsername
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateEmail
	}

	if employeeNumber != nil {
		exists, err = s.userRepo.ExistsByEmployeeNumber(ctx, *employeeNumber, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateEmployeeNumber
		}
	}
	return nil
}
