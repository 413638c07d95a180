// Package storage defines the persistence contract for job applications.
// Every operation is scoped to an owning user: a row that exists but
// belongs to someone else is indistinguishable from a missing row.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail/internal/models"
)

// ErrNotFound is returned when no row matches both the id and the owner.
var ErrNotFound = errors.New("job application not found")

// ListFilter narrows a list query. Zero values mean "no filtering".
type ListFilter struct {
	// Status filters by exact match when non-empty.
	Status models.Status
	// Search matches a case-insensitive substring of company OR role.
	Search string
}

// ApplicationStore is the persistence interface behind the service layer.
type ApplicationStore interface {
	// Create inserts app and fills in server-assigned fields.
	Create(ctx context.Context, app *models.JobApplication) error
	// ListByUser returns the user's rows, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.JobApplication, error)
	// GetByUser fetches one row scoped to (id, userID).
	GetByUser(ctx context.Context, id uint, userID uuid.UUID) (*models.JobApplication, error)
	// Update persists every column of app, refreshing updated_at.
	Update(ctx context.Context, app *models.JobApplication) error
	// DeleteByUser permanently removes the row scoped to (id, userID).
	DeleteByUser(ctx context.Context, id uint, userID uuid.UUID) error
}
