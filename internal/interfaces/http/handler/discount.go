package handler

import (
	appfinance "github.com/elimu/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DiscountHandler handles student discount endpoints
type DiscountHandler struct {
	BaseHandler
	discountService *appfinance.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(discountService *appfinance.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
	}
}

// Create grants a standing discount to a student
func (h *DiscountHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appfinance.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	discount, err := h.discountService.CreateDiscount(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, discount)
}

// ListForStudent lists a student's discounts, active first
func (h *DiscountHandler) ListForStudent(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	discounts, err := h.discountService.ListStudentDiscounts(c.Request.Context(), schoolID, studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, discounts)
}

// Deactivate stops a discount from applying to future invoices
func (h *DiscountHandler) Deactivate(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	discountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid discount ID format")
		return
	}

	discount, err := h.discountService.DeactivateDiscount(c.Request.Context(), schoolID, discountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, discount)
}
