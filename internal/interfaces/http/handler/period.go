package handler

import (
	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PeriodHandler handles accounting period endpoints
type PeriodHandler struct {
	BaseHandler
	periodService *appaccounting.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periodService *appaccounting.PeriodService) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
	}
}

// Create opens a new accounting period
func (h *PeriodHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appaccounting.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, period)
}

// GetByID retrieves a period by its ID
func (h *PeriodHandler) GetByID(c *gin.Context) {
	schoolID, periodID, ok := h.scope(c)
	if !ok {
		return
	}

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), schoolID, periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, period)
}

// Close closes an open period so no further entries can post into it
func (h *PeriodHandler) Close(c *gin.Context) {
	schoolID, periodID, ok := h.scope(c)
	if !ok {
		return
	}

	closedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	period, err := h.periodService.ClosePeriod(c.Request.Context(), schoolID, periodID, closedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, period)
}

// Lock makes a closed period permanent
func (h *PeriodHandler) Lock(c *gin.Context) {
	schoolID, periodID, ok := h.scope(c)
	if !ok {
		return
	}

	period, err := h.periodService.LockPeriod(c.Request.Context(), schoolID, periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, period)
}

// List retrieves a paginated list of periods
func (h *PeriodHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appaccounting.PeriodListFilter
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

	periods, total, err := h.periodService.ListPeriods(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, periods, total, filter.Page, filter.PageSize)
}

func (h *PeriodHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid period ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, periodID, true
}
