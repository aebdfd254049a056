package handler

import (
	appidentity "github.com/elimu/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionHandler handles subscription billing endpoints
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService *appidentity.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *appidentity.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// GetCurrent returns the school's current subscription
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	subscription, err := h.subscriptionService.GetCurrentSubscription(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Activate converts a trial subscription to active after payment
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	schoolID, subscriptionID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.PaymentReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.ActivateSubscription(c.Request.Context(), schoolID, subscriptionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Renew extends the current billing period after payment
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	schoolID, subscriptionID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.PaymentReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.RenewSubscription(c.Request.Context(), schoolID, subscriptionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

// MarkPastDue flags a subscription whose renewal payment failed
func (h *SubscriptionHandler) MarkPastDue(c *gin.Context) {
	schoolID, subscriptionID, ok := h.scope(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.MarkSubscriptionPastDue(c.Request.Context(), schoolID, subscriptionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Cancel cancels the subscription at the end of the paid period
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	schoolID, subscriptionID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.CancelSubscription(c.Request.Context(), schoolID, subscriptionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

// ChangePlan moves the school to a different pricing plan
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	schoolID, subscriptionID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appidentity.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.ChangePlan(c.Request.Context(), schoolID, subscriptionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subscription)
}

func (h *SubscriptionHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid subscription ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, subscriptionID, true
}
