package request

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/validation"
)

const (
	maxDocumentSize  = 10 << 20 // 10 MB
	maxDocumentCount = 10
)

var allowedMediaTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Service owns request intake: draft creation, clinical edits, document
// attachments and the validation precheck. Status changes are not done here;
// they belong to the lifecycle engine.
type Service interface {
	Create(ctx context.Context, input domain.CreateRequestInput, actor domain.Actor) (*domain.Request, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Request], error)
	UpdateClinical(ctx context.Context, id string, input domain.CreateRequestInput, actor domain.Actor) (*domain.Request, error)
	Validate(ctx context.Context, id string) (domain.ValidationReport, error)
	Precheck(ctx context.Context, input domain.CreateRequestInput) (domain.ValidationReport, error)
	AttachDocument(ctx context.Context, id string, actor domain.Actor, name, mediaType string, size int64, content io.Reader) (*domain.Request, error)
	RemoveDocument(ctx context.Context, id string, actor domain.Actor, objectKey string) (*domain.Request, error)
	DocumentURL(ctx context.Context, id, objectKey string) (string, error)
}

type service struct {
	requestRepo       repository.RequestRepository
	testRepo          repository.TestRepository
	validator         validation.Service
	storage           *minio.Client
	bucket            string
	duplicateLookback time.Duration
}

func NewService(
	requestRepo repository.RequestRepository,
	testRepo repository.TestRepository,
	validator validation.Service,
	storage *minio.Client,
	bucket string,
	duplicateLookback time.Duration,
) Service {
	return &service{
		requestRepo:       requestRepo,
		testRepo:          testRepo,
		validator:         validator,
		storage:           storage,
		bucket:            bucket,
		duplicateLookback: duplicateLookback,
	}
}

func (s *service) Create(ctx context.Context, input domain.CreateRequestInput, actor domain.Actor) (*domain.Request, error) {
	test, err := s.testRepo.GetByID(ctx, input.TestID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive {
		return nil, domain.ErrTestInactive
	}

	if !input.AllowDuplicate {
		since := time.Now().Add(-s.duplicateLookback)
		existing, err := s.requestRepo.FindDuplicate(ctx, input.PatientID, input.TestID, since)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.DuplicateRequestError{ExistingID: existing.ID}
		}
	}

	now := time.Now()
	code, err := s.requestRepo.NextCode(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	req := &domain.Request{
		ID:              code,
		PatientName:     input.PatientName,
		PatientID:       input.PatientID,
		Age:             input.Age,
		Gender:          input.Gender,
		InsuranceNumber: input.InsuranceNumber,
		TestID:          test.ID,
		TestCode:        test.Code,
		TestName:        test.NameEN,
		Justification:   input.Justification,
		Symptoms:        input.Symptoms,
		ICD10Codes:      input.ICD10Codes,
		Documents:       domain.DocumentList{},
		Priority:        priority,
		Status:          domain.StatusDraft,
		StatusHistory: domain.StatusHistory{{
			Status:    domain.StatusDraft,
			Timestamp: now,
			Actor:     actor.Name,
		}},
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	return s.requestRepo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Request], error) {
	requests, total, err := s.requestRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Request]{}, err
	}
	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

// UpdateClinical edits the clinical fields of a request that has not yet
// reached review. The test reference itself is immutable after creation.
func (s *service) UpdateClinical(ctx context.Context, id string, input domain.CreateRequestInput, actor domain.Actor) (*domain.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusDraft && req.Status != domain.StatusMoreInfoNeeded {
		return nil, &domain.IllegalTransitionError{From: req.Status, To: req.Status}
	}

	req.PatientName = input.PatientName
	req.PatientID = input.PatientID
	req.Age = input.Age
	req.Gender = input.Gender
	req.InsuranceNumber = input.InsuranceNumber
	req.Justification = input.Justification
	req.Symptoms = input.Symptoms
	req.ICD10Codes = input.ICD10Codes
	if input.Priority != "" {
		req.Priority = input.Priority
	}
	req.UpdatedAt = time.Now()

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) Validate(ctx context.Context, id string) (domain.ValidationReport, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	test, err := s.testRepo.GetByID(ctx, req.TestID)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	return s.validator.Evaluate(req.Payload(), *test), nil
}

// Precheck scores form input against the selected test before any request
// exists, so the form can show live criteria feedback.
func (s *service) Precheck(ctx context.Context, input domain.CreateRequestInput) (domain.ValidationReport, error) {
	test, err := s.testRepo.GetByID(ctx, input.TestID)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	payload := domain.ClinicalPayload{
		Age:           input.Age,
		Gender:        input.Gender,
		Symptoms:      input.Symptoms,
		ICD10Codes:    input.ICD10Codes,
		Justification: input.Justification,
	}
	return s.validator.Evaluate(payload, *test), nil
}

func (s *service) AttachDocument(ctx context.Context, id string, actor domain.Actor, name, mediaType string, size int64, content io.Reader) (*domain.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, &domain.IllegalTransitionError{From: req.Status, To: req.Status}
	}

	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return nil, fmt.Errorf("unsupported document type %s: only PDF, JPEG and PNG are accepted", mediaType)
	}
	if size > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds the %d MB size limit", maxDocumentSize>>20)
	}
	if len(req.Documents) >= maxDocumentCount {
		return nil, fmt.Errorf("request already has the maximum of %d documents", maxDocumentCount)
	}

	objectKey := fmt.Sprintf("%s/%s%s", req.ID, uuid.New().String(), extensionFor(name, mediaType))
	_, err = s.storage.PutObject(ctx, s.bucket, objectKey, content, size, minio.PutObjectOptions{
		ContentType: mediaType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	req.Documents = append(req.Documents, domain.Document{
		Name:       name,
		Size:       size,
		MediaType:  mediaType,
		ObjectKey:  objectKey,
		UploadedAt: time.Now(),
	})
	req.UpdatedAt = time.Now()

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) RemoveDocument(ctx context.Context, id string, actor domain.Actor, objectKey string) (*domain.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, &domain.IllegalTransitionError{From: req.Status, To: req.Status}
	}

	kept := req.Documents[:0]
	found := false
	for _, doc := range req.Documents {
		if doc.ObjectKey == objectKey {
			found = true
			continue
		}
		kept = append(kept, doc)
	}
	if !found {
		return nil, fmt.Errorf("document %s not found on request %s", objectKey, id)
	}

	if err := s.storage.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return nil, fmt.Errorf("failed to remove document: %w", err)
	}

	req.Documents = kept
	req.UpdatedAt = time.Now()
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DocumentURL returns a short-lived presigned download link. The bucket is
// private; documents are only reachable through these links.
func (s *service) DocumentURL(ctx context.Context, id, objectKey string) (string, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	for _, doc := range req.Documents {
		if doc.ObjectKey == objectKey {
			u, err := s.storage.PresignedGetObject(ctx, s.bucket, objectKey, 15*time.Minute, nil)
			if err != nil {
				return "", err
			}
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("document %s not found on request %s", objectKey, id)
}

func extensionFor(name, mediaType string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		return ext
	}
	return allowedMediaTypes[mediaType]
}
