package handler

import (
	"strconv"

	appfinance "github.com/elimu/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentPlanHandler handles instalment plan endpoints
type PaymentPlanHandler struct {
	BaseHandler
	planService *appfinance.PaymentPlanService
}

// NewPaymentPlanHandler creates a new PaymentPlanHandler
func NewPaymentPlanHandler(planService *appfinance.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{
		planService: planService,
	}
}

// Create splits an issued invoice into scheduled instalments
func (h *PaymentPlanHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appfinance.CreatePaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.CreatePaymentPlan(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetByID retrieves a payment plan with its instalments
func (h *PaymentPlanHandler) GetByID(c *gin.Context) {
	schoolID, planID, ok := h.scope(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), schoolID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// MarkInstalmentPaid settles one instalment by sequence number
func (h *PaymentPlanHandler) MarkInstalmentPaid(c *gin.Context) {
	schoolID, planID, ok := h.scope(c)
	if !ok {
		return
	}

	sequence, err := strconv.Atoi(c.Param("sequence"))
	if err != nil || sequence < 1 {
		h.BadRequest(c, "Invalid instalment sequence")
		return
	}

	plan, err := h.planService.MarkInstalmentPaid(c.Request.Context(), schoolID, planID, sequence)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

func (h *PaymentPlanHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment plan ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, planID, true
}
