package handler

import (
	appfinance "github.com/elimu/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// PostingRuleHandler handles posting rule configuration endpoints
type PostingRuleHandler struct {
	BaseHandler
	postingRuleService *appfinance.PostingRuleService
}

// NewPostingRuleHandler creates a new PostingRuleHandler
func NewPostingRuleHandler(postingRuleService *appfinance.PostingRuleService) *PostingRuleHandler {
	return &PostingRuleHandler{
		postingRuleService: postingRuleService,
	}
}

// Get returns the school's posting rules, falling back to defaults
// where no override is configured
func (h *PostingRuleHandler) Get(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	rules, err := h.postingRuleService.GetPostingRules(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rules)
}

// Update remaps which accounts automatic postings target
func (h *PostingRuleHandler) Update(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appfinance.UpdatePostingRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rules, err := h.postingRuleService.UpdatePostingRules(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rules)
}
