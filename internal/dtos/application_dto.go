package dtos

import "github.com/jobtrail/jobtrail/internal/models"

// CreateApplicationRequest is the POST /api/applications body.
type CreateApplicationRequest struct {
	Company     string        `json:"company"`
	Role        string        `json:"role"`
	Status      models.Status `json:"status"`
	AppliedDate *models.Date  `json:"applied_date"`
	Notes       *string       `json:"notes"`
	JobLink     *string       `json:"job_link"`
}

// UpdateApplicationRequest is the PATCH /api/applications/:id body.
// Every field is a pointer: nil means "leave unchanged", and a present
// empty string clears the nullable text fields (notes, job_link). JSON
// cannot distinguish a null applied_date from an omitted one, so
// clearing the date goes through ClearAppliedDate instead.
type UpdateApplicationRequest struct {
	Company     *string        `json:"company"`
	Role        *string        `json:"role"`
	Status      *models.Status `json:"status"`
	AppliedDate *models.Date   `json:"applied_date"`
	Notes       *string        `json:"notes"`
	JobLink     *string        `json:"job_link"`

	// ClearAppliedDate removes the stored date when true.
	ClearAppliedDate bool `json:"clear_applied_date,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the 400 response body: every violation at once.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}
