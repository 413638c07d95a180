package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobtrail/jobtrail/internal/dtos"
	"github.com/jobtrail/jobtrail/internal/middleware"
	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/services"
	"github.com/jobtrail/jobtrail/internal/storage"
)

// ApplicationHandler exposes the job-application CRUD endpoints.
type ApplicationHandler struct {
	Service *services.ApplicationService
}

// NewApplicationHandler creates the handler with dependencies.
func NewApplicationHandler(svc *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Service: svc}
}

// Create is POST /api/applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dtos.CreateApplicationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	app, err := h.Service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// List is GET /api/applications with optional status and search query
// parameters.
func (h *ApplicationHandler) List(c *gin.Context) {
	status := models.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, dtos.ValidationErrors{Errors: []dtos.FieldError{
			{Field: "status", Message: "Status must be Applied, Interview, Offer, or Rejected"},
		}})
		return
	}

	user := middleware.CurrentUser(c)
	apps, err := h.Service.List(c.Request.Context(), user.ID, status, c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Update is PATCH /api/applications/:id.
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dtos.UpdateApplicationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	app, err := h.Service.Update(c.Request.Context(), user.ID, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Delete is DELETE /api/applications/:id.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.Service.Delete(c.Request.Context(), user.ID, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job application deleted successfully"})
}

// bindJSON decodes the request body into req. Bodies over the size cap
// are cut off by MaxBytesReader, which is a different failure than
// malformed JSON and gets its own status.
func (h *ApplicationHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
	return false
}

// parseID reads the :id route parameter. A non-numeric id can never name
// a row, so it reports not-found rather than bad-request.
func (h *ApplicationHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job application not found"})
		return 0, false
	}
	return uint(id), true
}

func (h *ApplicationHandler) respondError(c *gin.Context, err error) {
	var invalid *services.InvalidInput
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, dtos.ValidationErrors{Errors: invalid.Fields})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job application not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}
}
