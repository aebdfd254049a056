package handler

import (
	"context"

	appfinance "github.com/elimu/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseHandler handles expense workflow endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *appfinance.ExpenseService
	receiptService *appfinance.ReceiptService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *appfinance.ExpenseService, receiptService *appfinance.ReceiptService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		receiptService: receiptService,
	}
}

// ConfirmReceiptUploadRequest confirms a completed receipt upload
type ConfirmReceiptUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// Create records a draft expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appfinance.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, expense)
}

// GetByID retrieves an expense by its ID
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), schoolID, expenseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Submit sends a draft expense for approval
func (h *ExpenseHandler) Submit(c *gin.Context) {
	h.actorTransition(c, h.expenseService.SubmitExpense)
}

// Approve approves a submitted expense and posts the accrual
func (h *ExpenseHandler) Approve(c *gin.Context) {
	h.actorTransition(c, h.expenseService.ApproveExpense)
}

// Reject returns a submitted expense with a reason
func (h *ExpenseHandler) Reject(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	rejectedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appfinance.RejectExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.RejectExpense(c.Request.Context(), schoolID, expenseID, rejectedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Pay settles an approved expense and posts the cash movement
func (h *ExpenseHandler) Pay(c *gin.Context) {
	h.actorTransition(c, h.expenseService.PayExpense)
}

// List retrieves a paginated list of expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appfinance.ExpenseListFilter
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

	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// RequestReceiptUpload issues a presigned upload URL for a receipt
func (h *ExpenseHandler) RequestReceiptUpload(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appfinance.RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	upload, err := h.receiptService.RequestUpload(c.Request.Context(), schoolID, expenseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, upload)
}

// ConfirmReceiptUpload attaches an uploaded receipt to the expense
func (h *ExpenseHandler) ConfirmReceiptUpload(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req ConfirmReceiptUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.ConfirmUpload(c.Request.Context(), schoolID, expenseID, req.StorageKey); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListReceipts lists an expense's receipts with download URLs
func (h *ExpenseHandler) ListReceipts(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	receipts, err := h.receiptService.ListReceipts(c.Request.Context(), schoolID, expenseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipts)
}

// RemoveReceipt detaches a receipt and deletes the stored object
func (h *ExpenseHandler) RemoveReceipt(c *gin.Context) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	storageKey := c.Query("storage_key")
	if storageKey == "" {
		h.BadRequest(c, "storage_key query parameter is required")
		return
	}

	if err := h.receiptService.RemoveReceipt(c.Request.Context(), schoolID, expenseID, storageKey); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

type expenseTransition func(ctx context.Context, schoolID, id, actor uuid.UUID) (*appfinance.ExpenseResponse, error)

func (h *ExpenseHandler) actorTransition(c *gin.Context, op expenseTransition) {
	schoolID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	expense, err := op(c.Request.Context(), schoolID, expenseID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

func (h *ExpenseHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, expenseID, true
}
