package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jobtrail/jobtrail/internal/dtos"
	"github.com/jobtrail/jobtrail/internal/models"
)

const applicationsPath = "/api/applications"

// Applications maps 1:1 onto the server's application endpoints.
type Applications struct {
	api *APIClient
}

// NewApplications wraps an APIClient.
func NewApplications(api *APIClient) *Applications {
	return &Applications{api: api}
}

// GetAll lists the caller's applications, optionally filtered by exact
// status and a company/role search term.
func (a *Applications) GetAll(ctx context.Context, token string, status models.Status, search string) ([]models.JobApplication, error) {
	endpoint := applicationsPath
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if search != "" {
		q.Set("search", search)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var apps []models.JobApplication
	if err := a.api.Get(ctx, endpoint, token, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Create inserts a new application and returns the server-assigned row.
func (a *Applications) Create(ctx context.Context, token string, data dtos.CreateApplicationRequest) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := a.api.Post(ctx, applicationsPath, data, token, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Update patches the given row; omitted fields keep their stored value.
func (a *Applications) Update(ctx context.Context, token string, id uint, data dtos.UpdateApplicationRequest) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := a.api.Patch(ctx, fmt.Sprintf("%s/%d", applicationsPath, id), data, token, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Delete permanently removes the given row.
func (a *Applications) Delete(ctx context.Context, token string, id uint) error {
	return a.api.Delete(ctx, fmt.Sprintf("%s/%d", applicationsPath, id), token)
}
