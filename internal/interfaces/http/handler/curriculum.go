package handler

import (
	appschool "github.com/elimu/backend/internal/application/school"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CurriculumHandler handles CBC learning area endpoints
type CurriculumHandler struct {
	BaseHandler
	curriculumService *appschool.CurriculumService
}

// NewCurriculumHandler creates a new CurriculumHandler
func NewCurriculumHandler(curriculumService *appschool.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{
		curriculumService: curriculumService,
	}
}

// CreateLearningArea adds a learning area at a CBC level
func (h *CurriculumHandler) CreateLearningArea(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appschool.CreateLearningAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.curriculumService.CreateLearningArea(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, area)
}

// GetLearningArea retrieves a learning area with its full strand tree
func (h *CurriculumHandler) GetLearningArea(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	area, err := h.curriculumService.GetLearningAreaByID(c.Request.Context(), schoolID, areaID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// RenameLearningArea renames a learning area
func (h *CurriculumHandler) RenameLearningArea(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.RenameLearningAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.curriculumService.RenameLearningArea(c.Request.Context(), schoolID, areaID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// DeactivateLearningArea retires a learning area from the curriculum
func (h *CurriculumHandler) DeactivateLearningArea(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	area, err := h.curriculumService.DeactivateLearningArea(c.Request.Context(), schoolID, areaID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// AddStrand adds a strand under a learning area
func (h *CurriculumHandler) AddStrand(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.AddStrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.curriculumService.AddStrand(c.Request.Context(), schoolID, areaID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// AddSubStrand adds a sub-strand under a strand
func (h *CurriculumHandler) AddSubStrand(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.AddSubStrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.curriculumService.AddSubStrand(c.Request.Context(), schoolID, areaID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// AddLearningOutcome adds a learning outcome under a sub-strand
func (h *CurriculumHandler) AddLearningOutcome(c *gin.Context) {
	schoolID, areaID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appschool.AddLearningOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.curriculumService.AddLearningOutcome(c.Request.Context(), schoolID, areaID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// ListLearningAreas retrieves a paginated list of learning areas
func (h *CurriculumHandler) ListLearningAreas(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appschool.LearningAreaListFilter
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

	areas, total, err := h.curriculumService.ListLearningAreas(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, areas, total, filter.Page, filter.PageSize)
}

func (h *CurriculumHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid learning area ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, areaID, true
}
