package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jobtrail/jobtrail/internal/dtos"
	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/storage"
	"github.com/jobtrail/jobtrail/internal/validation"
)

// InvalidInput carries every field-level violation found in a request.
type InvalidInput struct {
	Fields []dtos.FieldError
}

func (e *InvalidInput) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return "invalid input"
}

// ApplicationService owns the business rules around job applications:
// field validation, status defaulting, merge semantics, and ownership
// scoping via the store.
type ApplicationService struct {
	store storage.ApplicationStore
	log   *logrus.Logger
}

// NewApplicationService creates the service with its dependencies.
func NewApplicationService(store storage.ApplicationStore, log *logrus.Logger) *ApplicationService {
	return &ApplicationService{store: store, log: log}
}

// Create validates and inserts a new application owned by userID. An
// omitted status defaults to Applied.
func (s *ApplicationService) Create(ctx context.Context, userID uuid.UUID, req dtos.CreateApplicationRequest) (*models.JobApplication, error) {
	var fields []dtos.FieldError

	if req.Company == "" {
		fields = append(fields, dtos.FieldError{Field: "company", Message: "Company name is required"})
	}
	if req.Role == "" {
		fields = append(fields, dtos.FieldError{Field: "role", Message: "Role/Position is required"})
	}

	status := req.Status
	if status == "" {
		status = models.DefaultStatus
	} else if !status.Valid() {
		fields = append(fields, dtos.FieldError{Field: "status", Message: "Status must be Applied, Interview, Offer, or Rejected"})
	}

	if req.JobLink != nil && *req.JobLink != "" {
		if err := validation.ValidateJobLink(*req.JobLink); err != nil {
			fields = append(fields, dtos.FieldError{Field: "job_link", Message: "Job link must be a valid URL"})
		}
	}

	if len(fields) > 0 {
		return nil, &InvalidInput{Fields: fields}
	}

	app := &models.JobApplication{
		UserID:      userID,
		Company:     req.Company,
		Role:        req.Role,
		Status:      status,
		AppliedDate: req.AppliedDate,
		Notes:       normalizeOptional(req.Notes),
		JobLink:     normalizeOptional(req.JobLink),
	}
	if err := s.store.Create(ctx, app); err != nil {
		s.log.WithError(err).Error("create application failed")
		return nil, err
	}
	return app, nil
}

// List returns the user's applications, newest first, optionally filtered
// by exact status and a case-insensitive company/role substring.
func (s *ApplicationService) List(ctx context.Context, userID uuid.UUID, status models.Status, search string) ([]models.JobApplication, error) {
	return s.store.ListByUser(ctx, userID, storage.ListFilter{Status: status, Search: search})
}

// Update applies a partial merge to the row scoped to (id, userID): nil
// fields keep their stored value, a present empty string clears the
// nullable fields. Concurrent edits are unguarded; the last write wins.
func (s *ApplicationService) Update(ctx context.Context, userID uuid.UUID, id uint, req dtos.UpdateApplicationRequest) (*models.JobApplication, error) {
	var fields []dtos.FieldError

	if req.Company != nil && *req.Company == "" {
		fields = append(fields, dtos.FieldError{Field: "company", Message: "Company name is required"})
	}
	if req.Role != nil && *req.Role == "" {
		fields = append(fields, dtos.FieldError{Field: "role", Message: "Role/Position is required"})
	}
	if req.Status != nil && !req.Status.Valid() {
		fields = append(fields, dtos.FieldError{Field: "status", Message: "Status must be Applied, Interview, Offer, or Rejected"})
	}
	if req.JobLink != nil && *req.JobLink != "" {
		if err := validation.ValidateJobLink(*req.JobLink); err != nil {
			fields = append(fields, dtos.FieldError{Field: "job_link", Message: "Job link must be a valid URL"})
		}
	}
	if len(fields) > 0 {
		return nil, &InvalidInput{Fields: fields}
	}

	app, err := s.store.GetByUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Company != nil {
		app.Company = *req.Company
	}
	if req.Role != nil {
		app.Role = *req.Role
	}
	if req.Status != nil {
		app.Status = *req.Status
	}
	if req.AppliedDate != nil {
		app.AppliedDate = req.AppliedDate
	}
	if req.ClearAppliedDate {
		app.AppliedDate = nil
	}
	if req.Notes != nil {
		app.Notes = normalizeOptional(req.Notes)
	}
	if req.JobLink != nil {
		app.JobLink = normalizeOptional(req.JobLink)
	}

	if err := s.store.Update(ctx, app); err != nil {
		s.log.WithError(err).WithField("id", id).Error("update application failed")
		return nil, err
	}
	return app, nil
}

// Delete permanently removes the row scoped to (id, userID).
func (s *ApplicationService) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	err := s.store.DeleteByUser(ctx, id, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.WithError(err).WithField("id", id).Error("delete application failed")
	}
	return err
}

// normalizeOptional maps a present empty string to NULL so "cleared" and
// "absent" are stored identically.
func normalizeOptional(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
