package handler

import (
	"time"

	appaccounting "github.com/elimu/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// dateLayout is the wire format for date-only query parameters
const dateLayout = "2006-01-02"

// AccountHandler handles chart of accounts endpoints
type AccountHandler struct {
	BaseHandler
	accountService *appaccounting.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *appaccounting.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Create adds a GL account to the school's chart of accounts
func (h *AccountHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appaccounting.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetByID retrieves an account by its ID
func (h *AccountHandler) GetByID(c *gin.Context) {
	schoolID, accountID, ok := h.scope(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), schoolID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Update renames an account
func (h *AccountHandler) Update(c *gin.Context) {
	schoolID, accountID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appaccounting.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), schoolID, accountID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// Deactivate retires an account with no posted activity requirement
// beyond a zero balance
func (h *AccountHandler) Deactivate(c *gin.Context) {
	schoolID, accountID, ok := h.scope(c)
	if !ok {
		return
	}

	account, err := h.accountService.DeactivateAccount(c.Request.Context(), schoolID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// List retrieves a paginated list of accounts
func (h *AccountHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appaccounting.AccountListFilter
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

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// GetBalance computes an account's posted balance over a date range.
// Defaults to the current fiscal year to date when no range is given.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	schoolID, accountID, ok := h.scope(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = parsed
	}

	balance, err := h.accountService.GetAccountBalance(c.Request.Context(), schoolID, accountID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// GetTrialBalance lists every postable account with its debit and
// credit totals as of a date
func (h *AccountHandler) GetTrialBalance(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	rows, err := h.accountService.GetTrialBalance(c.Request.Context(), schoolID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rows)
}

func (h *AccountHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, accountID, true
}
