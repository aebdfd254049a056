package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/school"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice lifecycle use cases
type InvoiceService struct {
	invoiceRepo  finance.InvoiceRepository
	discountRepo finance.StudentDiscountRepository
	studentRepo  school.StudentRepository
	poster       *glPoster
	eventBus     shared.EventPublisher
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	discountRepo finance.StudentDiscountRepository,
	studentRepo school.StudentRepository,
	accountRepo accounting.ChartOfAccountRepository,
	journalRepo accounting.JournalEntryRepository,
	periodRepo accounting.AccountingPeriodRepository,
	rulesRepo finance.PostingRuleSetRepository,
	eventBus shared.EventPublisher,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		discountRepo: discountRepo,
		studentRepo:  studentRepo,
		poster:       newGLPoster(accountRepo, journalRepo, periodRepo, rulesRepo),
		eventBus:     eventBus,
	}
}

// InvoiceItemResponse represents one invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceResponse represents invoice data returned to clients
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	SchoolID       uuid.UUID             `json:"school_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	StudentID      uuid.UUID             `json:"student_id"`
	Status         string                `json:"status"`
	IssueDate      *time.Time            `json:"issue_date,omitempty"`
	DueDate        time.Time             `json:"due_date"`
	Items          []InvoiceItemResponse `json:"items"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	TaxTotal       decimal.Decimal       `json:"tax_total"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	CreditedAmount decimal.Decimal       `json:"credited_amount"`
	AmountDue      decimal.Decimal       `json:"amount_due"`
	Notes          string                `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID            `json:"journal_entry_id,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Version        int                   `json:"version"`
}

// InvoiceItemRequest is one line in a create request
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,max=200"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest represents a request to draft an invoice. When
// ApplyDiscounts is set the student's active discounts are computed per
// line on top of any explicit line discount.
type CreateInvoiceRequest struct {
	StudentID      uuid.UUID            `json:"student_id" binding:"required"`
	DueDate        time.Time            `json:"due_date" binding:"required"`
	Items          []InvoiceItemRequest `json:"items" binding:"required,min=1"`
	ApplyDiscounts bool                 `json:"apply_discounts"`
}

// IssueInvoiceRequest sets the issue date for a draft invoice
type IssueInvoiceRequest struct {
	IssueDate time.Time `json:"issue_date" binding:"required"`
}

// CancelInvoiceRequest carries the mandatory cancellation reason
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	StudentID *uuid.UUID `form:"student_id"`
	Status    string     `form:"status"`
	DueFrom   *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo     *time.Time `form:"due_to" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir"`
}

// CreateInvoice drafts an invoice for a student
func (s *InvoiceService) CreateInvoice(ctx context.Context, schoolID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	student, err := s.studentRepo.FindByIDForSchool(ctx, schoolID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "student not found")
	}

	var discounts []finance.StudentDiscount
	if req.ApplyDiscounts {
		discounts, err = s.discountRepo.FindActiveByStudent(ctx, schoolID, req.StudentID)
		if err != nil {
			return nil, err
		}
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	invoice, err := finance.NewInvoice(schoolID, invoiceNumber, req.StudentID, req.DueDate)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		discount := item.Discount
		if req.ApplyDiscounts {
			gross := valueobject.NewMoneyKES(item.Quantity.Mul(item.UnitPrice))
			for i := range discounts {
				discount = discount.Add(discounts[i].ComputeDiscount(gross).Amount())
			}
		}
		if err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice, discount, item.TaxRate); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()

	return toInvoiceResponse(invoice), nil
}

// GetInvoiceByID retrieves an invoice by ID
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, schoolID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// IssueInvoice issues a draft invoice and recognizes the revenue: fees
// receivable is debited for the gross total, tuition revenue is credited
// net of tax, and the VAT portion is credited to the tax payable account.
func (s *InvoiceService) IssueInvoice(ctx context.Context, schoolID, id, issuedBy uuid.UUID, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Issue(req.IssueDate); err != nil {
		return nil, err
	}

	rules, err := s.poster.rulesFor(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	gross := valueobject.NewMoneyKES(invoice.TotalAmount)
	tax := valueobject.NewMoneyKES(invoice.TaxTotal)
	net := valueobject.NewMoneyKES(invoice.TotalAmount.Sub(invoice.TaxTotal))

	entry, err := s.poster.post(ctx, schoolID, issuedBy, req.IssueDate,
		"Invoice "+invoice.InvoiceNumber+" issued", sourceTypeInvoice, invoice.ID,
		[]glLine{
			{accountCode: rules.ReceivableAccount, side: accounting.SideDebit, amount: gross, memo: invoice.InvoiceNumber},
			{accountCode: rules.TuitionRevenue, side: accounting.SideCredit, amount: net, memo: invoice.InvoiceNumber},
			{accountCode: rules.TaxPayableAccount, side: accounting.SideCredit, amount: tax, memo: "Output VAT"},
		})
	if err != nil {
		return nil, err
	}
	invoice.LinkJournalEntry(entry.ID)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()
	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toInvoiceResponse(invoice), nil
}

// CancelInvoice voids an invoice nothing has been paid against
func (s *InvoiceService) CancelInvoice(ctx context.Context, schoolID, id uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, schoolID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := finance.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		StudentID: filter.StudentID,
		DueFrom:   filter.DueFrom,
		DueTo:     filter.DueTo,
	}
	if filter.Status != "" {
		st := finance.InvoiceStatus(filter.Status)
		domainFilter.Status = &st
	}

	invoices, err := s.invoiceRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *toInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, schoolID, id uuid.UUID) (*finance.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "invoice not found")
	}
	return invoice, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toInvoiceResponse(inv *finance.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
			NetAmount:   it.NetAmount,
			TaxAmount:   it.TaxAmount,
			Total:       it.Total,
		})
	}
	return &InvoiceResponse{
		ID:             inv.ID,
		SchoolID:       inv.SchoolID,
		InvoiceNumber:  inv.InvoiceNumber,
		StudentID:      inv.StudentID,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Items:          items,
		TotalAmount:    inv.TotalAmount,
		TaxTotal:       inv.TaxTotal,
		PaidAmount:     inv.PaidAmount,
		CreditedAmount: inv.CreditedAmount,
		AmountDue:      inv.AmountDue(),
		Notes:          inv.Notes,
		JournalEntryID: inv.JournalEntryID,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		CreatedAt:      inv.CreatedAt,
		Version:        inv.Version,
	}
}
