package handler

import (
	"context"

	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SchoolHandler handles school tenant endpoints. Registration is
// public; everything else requires the platform super admin.
type SchoolHandler struct {
	BaseHandler
	schoolService *appidentity.SchoolService
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(schoolService *appidentity.SchoolService) *SchoolHandler {
	return &SchoolHandler{
		schoolService: schoolService,
	}
}

// Register provisions a new school tenant with a trial subscription
// and its first admin user
func (h *SchoolHandler) Register(c *gin.Context) {
	var req appidentity.RegisterSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	school, err := h.schoolService.RegisterSchool(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, school)
}

// GetByID retrieves a school by its ID
func (h *SchoolHandler) GetByID(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid school ID format")
		return
	}

	school, err := h.schoolService.GetSchoolByID(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, school)
}

// Update changes a school's contact details
func (h *SchoolHandler) Update(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid school ID format")
		return
	}

	var req appidentity.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	school, err := h.schoolService.UpdateSchool(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, school)
}

// Suspend blocks a school's users from signing in
func (h *SchoolHandler) Suspend(c *gin.Context) {
	h.transition(c, h.schoolService.SuspendSchool)
}

// Reactivate restores a suspended school
func (h *SchoolHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.schoolService.ReactivateSchool)
}

// Close permanently closes a school
func (h *SchoolHandler) Close(c *gin.Context) {
	h.transition(c, h.schoolService.CloseSchool)
}

// List retrieves a paginated list of schools
func (h *SchoolHandler) List(c *gin.Context) {
	var filter appidentity.SchoolListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	schools, total, err := h.schoolService.ListSchools(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, schools, total, filter.Page, filter.PageSize)
}

func (h *SchoolHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*appidentity.SchoolResponse, error)) {
	schoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid school ID format")
		return
	}

	school, err := op(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, school)
}
