package handler

import (
	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BudgetHandler handles budget endpoints
type BudgetHandler struct {
	BaseHandler
	budgetService *appaccounting.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *appaccounting.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// Create opens a draft budget for a fiscal year
func (h *BudgetHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appaccounting.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, budget)
}

// GetByID retrieves a budget with its lines
func (h *BudgetHandler) GetByID(c *gin.Context) {
	schoolID, budgetID, ok := h.scope(c)
	if !ok {
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), schoolID, budgetID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, budget)
}

// AddLine adds an account line to a draft budget
func (h *BudgetHandler) AddLine(c *gin.Context) {
	schoolID, budgetID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appaccounting.BudgetLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.AddBudgetLine(c.Request.Context(), schoolID, budgetID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, budget)
}

// Approve approves a draft budget, freezing its original amounts
func (h *BudgetHandler) Approve(c *gin.Context) {
	schoolID, budgetID, ok := h.scope(c)
	if !ok {
		return
	}

	approvedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	budget, err := h.budgetService.ApproveBudget(c.Request.Context(), schoolID, budgetID, approvedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, budget)
}

// ReviseLine changes a line's amount on an approved budget, keeping
// the original for variance reporting
func (h *BudgetHandler) ReviseLine(c *gin.Context) {
	schoolID, budgetID, ok := h.scope(c)
	if !ok {
		return
	}

	revisedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appaccounting.ReviseBudgetLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.ReviseBudgetLine(c.Request.Context(), schoolID, budgetID, revisedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, budget)
}

// VarianceReport compares budgeted amounts against posted actuals
func (h *BudgetHandler) VarianceReport(c *gin.Context) {
	schoolID, budgetID, ok := h.scope(c)
	if !ok {
		return
	}

	report, err := h.budgetService.GetVarianceReport(c.Request.Context(), schoolID, budgetID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// List retrieves a paginated list of budgets
func (h *BudgetHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appaccounting.BudgetListFilter
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

	budgets, total, err := h.budgetService.ListBudgets(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, budgets, total, filter.Page, filter.PageSize)
}

func (h *BudgetHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, budgetID, true
}
