package handler

import (
	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JournalHandler handles journal entry endpoints
type JournalHandler struct {
	BaseHandler
	journalService *appaccounting.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *appaccounting.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

// Create captures a manual journal entry in draft
func (h *JournalHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appaccounting.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	journal, err := h.journalService.CreateJournal(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, journal)
}

// GetByID retrieves a journal entry with its lines
func (h *JournalHandler) GetByID(c *gin.Context) {
	schoolID, journalID, ok := h.scope(c)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), schoolID, journalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, journal)
}

// Post posts a draft entry into its accounting period
func (h *JournalHandler) Post(c *gin.Context) {
	schoolID, journalID, ok := h.scope(c)
	if !ok {
		return
	}

	postedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	journal, err := h.journalService.PostJournal(c.Request.Context(), schoolID, journalID, postedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, journal)
}

// Reverse creates and posts a mirror-image entry against a posted one
func (h *JournalHandler) Reverse(c *gin.Context) {
	schoolID, journalID, ok := h.scope(c)
	if !ok {
		return
	}

	requestedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appaccounting.ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reversal, err := h.journalService.ReverseJournal(c.Request.Context(), schoolID, journalID, requestedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reversal)
}

// List retrieves a paginated list of journal entries
func (h *JournalHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appaccounting.JournalListFilter
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

	journals, total, err := h.journalService.ListJournals(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, journals, total, filter.Page, filter.PageSize)
}

func (h *JournalHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	journalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid journal entry ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, journalID, true
}
