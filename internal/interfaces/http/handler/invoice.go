package handler

import (
	appfinance "github.com/elimu/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles fee invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appfinance.InvoiceService
	paymentService *appfinance.PaymentService
	planService    *appfinance.PaymentPlanService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appfinance.InvoiceService, paymentService *appfinance.PaymentService, planService *appfinance.PaymentPlanService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		planService:    planService,
	}
}

// Create drafts a fee invoice for a student
func (h *InvoiceHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var req appfinance.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID retrieves an invoice with its items
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	schoolID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), schoolID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Issue issues a draft invoice, applying discounts and posting the
// receivable
func (h *InvoiceHandler) Issue(c *gin.Context) {
	schoolID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	issuedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appfinance.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), schoolID, invoiceID, issuedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Cancel cancels an invoice that has received no payments
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	schoolID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appfinance.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), schoolID, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List retrieves a paginated list of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return
	}

	var filter appfinance.InvoiceListFilter
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

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), schoolID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// ListCreditNotes lists the credit notes issued against an invoice
func (h *InvoiceHandler) ListCreditNotes(c *gin.Context) {
	schoolID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	notes, err := h.paymentService.ListInvoiceCreditNotes(c.Request.Context(), schoolID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, notes)
}

// GetPaymentPlan returns the instalment plan attached to an invoice
func (h *InvoiceHandler) GetPaymentPlan(c *gin.Context) {
	schoolID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanForInvoice(c.Request.Context(), schoolID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

func (h *InvoiceHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.Forbidden(c, "A school-scoped token is required")
		return uuid.Nil, uuid.Nil, false
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return schoolID, invoiceID, true
}
