package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService handles payment capture and confirmation plus credit notes
type PaymentService struct {
	paymentRepo    finance.PaymentRepository
	invoiceRepo    finance.InvoiceRepository
	creditNoteRepo finance.CreditNoteRepository
	poster         *glPoster
	eventBus       shared.EventPublisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo finance.PaymentRepository,
	invoiceRepo finance.InvoiceRepository,
	creditNoteRepo finance.CreditNoteRepository,
	accountRepo accounting.ChartOfAccountRepository,
	journalRepo accounting.JournalEntryRepository,
	periodRepo accounting.AccountingPeriodRepository,
	rulesRepo finance.PostingRuleSetRepository,
	eventBus shared.EventPublisher,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		invoiceRepo:    invoiceRepo,
		creditNoteRepo: creditNoteRepo,
		poster:         newGLPoster(accountRepo, journalRepo, periodRepo, rulesRepo),
		eventBus:       eventBus,
	}
}

// PaymentResponse represents payment data returned to clients
type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	SchoolID       uuid.UUID       `json:"school_id"`
	PaymentNumber  string          `json:"payment_number"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	StudentID      uuid.UUID       `json:"student_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      string          `json:"reference,omitempty"`
	Status         string          `json:"status"`
	ReceivedAt     time.Time       `json:"received_at"`
	JournalEntryID *uuid.UUID      `json:"journal_entry_id,omitempty"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	VoidedAt       *time.Time      `json:"voided_at,omitempty"`
	VoidReason     string          `json:"void_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Version        int             `json:"version"`
}

// CreditNoteResponse represents credit note data returned to clients
type CreditNoteResponse struct {
	ID               uuid.UUID       `json:"id"`
	SchoolID         uuid.UUID       `json:"school_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	JournalEntryID   *uuid.UUID      `json:"journal_entry_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RecordPaymentRequest captures money received against an invoice
type RecordPaymentRequest struct {
	InvoiceID  uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Method     string          `json:"method" binding:"required"`
	Reference  string          `json:"reference" binding:"max=100"`
	ReceivedAt time.Time       `json:"received_at" binding:"required"`
}

// VoidPaymentRequest carries the mandatory void reason
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// IssueCreditNoteRequest reduces an invoice's amount due
type IssueCreditNoteRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required,max=500"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	InvoiceID *uuid.UUID `form:"invoice_id"`
	StudentID *uuid.UUID `form:"student_id"`
	Status    string     `form:"status"`
	Method    string     `form:"method"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// RecordPayment captures a pending payment against an issued invoice.
// Nothing hits the ledger until the payment is confirmed.
func (s *PaymentService) RecordPayment(ctx context.Context, schoolID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	invoice, err := s.findInvoice(ctx, schoolID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != finance.InvoiceStatusIssued && invoice.Status != finance.InvoiceStatusPartiallyPaid {
		return nil, shared.NewDomainError("INVALID_STATE", "invoice is not open for payment")
	}

	paymentNumber, err := s.paymentRepo.GeneratePaymentNumber(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyKES(req.Amount)
	payment, err := finance.NewPayment(schoolID, paymentNumber, invoice.ID, invoice.StudentID,
		amount, finance.PaymentMethod(req.Method), req.Reference, req.ReceivedAt)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, payment.GetDomainEvents())
	payment.ClearDomainEvents()

	return toPaymentResponse(payment), nil
}

// GetPaymentByID retrieves a payment by ID
func (s *PaymentService) GetPaymentByID(ctx context.Context, schoolID, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// ConfirmPayment confirms a pending payment, applies it to the invoice,
// and posts cash against fees receivable. The invoice save uses the
// optimistic lock so two tellers confirming against the same invoice
// cannot both settle the last shilling.
func (s *PaymentService) ConfirmPayment(ctx context.Context, schoolID, id, confirmedBy uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.findInvoice(ctx, schoolID, payment.InvoiceID)
	if err != nil {
		return nil, err
	}

	if err := payment.Confirm(confirmedBy); err != nil {
		return nil, err
	}
	if err := invoice.ApplyPayment(payment.GetAmountMoney()); err != nil {
		return nil, err
	}

	rules, err := s.poster.rulesFor(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	amount := payment.GetAmountMoney()

	entry, err := s.poster.post(ctx, schoolID, confirmedBy, payment.ReceivedAt,
		"Payment "+payment.PaymentNumber+" confirmed", sourceTypePayment, payment.ID,
		[]glLine{
			{accountCode: rules.CashAccount, side: accounting.SideDebit, amount: amount, memo: payment.Reference},
			{accountCode: rules.ReceivableAccount, side: accounting.SideCredit, amount: amount, memo: invoice.InvoiceNumber},
		})
	if err != nil {
		return nil, err
	}
	payment.LinkJournalEntry(entry.ID)

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment.GetDomainEvents())
	payment.ClearDomainEvents()
	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()
	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toPaymentResponse(payment), nil
}

// VoidPayment voids a pending payment before confirmation
func (s *PaymentService) VoidPayment(ctx context.Context, schoolID, id uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := payment.Void(req.Reason); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// IssueCreditNote issues a credit note against an invoice: the amount due
// drops, and the revenue recognized at issue is wound back with a debit
// to tuition revenue against fees receivable.
func (s *PaymentService) IssueCreditNote(ctx context.Context, schoolID, issuedBy uuid.UUID, req IssueCreditNoteRequest) (*CreditNoteResponse, error) {
	invoice, err := s.findInvoice(ctx, schoolID, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyKES(req.Amount)
	if err := invoice.ApplyCredit(amount); err != nil {
		return nil, err
	}

	noteNumber, err := s.creditNoteRepo.GenerateCreditNoteNumber(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	note, err := finance.NewCreditNote(schoolID, noteNumber, invoice.ID, invoice.StudentID, amount, req.Reason, issuedBy)
	if err != nil {
		return nil, err
	}

	rules, err := s.poster.rulesFor(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	entry, err := s.poster.post(ctx, schoolID, issuedBy, time.Now().UTC(),
		"Credit note "+noteNumber+" against "+invoice.InvoiceNumber, sourceTypeCreditNote, note.ID,
		[]glLine{
			{accountCode: rules.TuitionRevenue, side: accounting.SideDebit, amount: amount, memo: req.Reason},
			{accountCode: rules.ReceivableAccount, side: accounting.SideCredit, amount: amount, memo: invoice.InvoiceNumber},
		})
	if err != nil {
		return nil, err
	}
	note.LinkJournalEntry(entry.ID)

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()
	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toCreditNoteResponse(note), nil
}

// ListInvoiceCreditNotes lists credit notes issued against an invoice
func (s *PaymentService) ListInvoiceCreditNotes(ctx context.Context, schoolID, invoiceID uuid.UUID) ([]CreditNoteResponse, error) {
	notes, err := s.creditNoteRepo.FindByInvoice(ctx, schoolID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]CreditNoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, *toCreditNoteResponse(&notes[i]))
	}
	return responses, nil
}

// ListPayments lists payments with filtering
func (s *PaymentService) ListPayments(ctx context.Context, schoolID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := finance.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		InvoiceID: filter.InvoiceID,
		StudentID: filter.StudentID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	if filter.Status != "" {
		st := finance.PaymentStatus(filter.Status)
		domainFilter.Status = &st
	}
	if filter.Method != "" {
		m := finance.PaymentMethod(filter.Method)
		domainFilter.Method = &m
	}

	payments, err := s.paymentRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *toPaymentResponse(&payments[i]))
	}
	return responses, total, nil
}

func (s *PaymentService) findPayment(ctx context.Context, schoolID, id uuid.UUID) (*finance.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "payment not found")
	}
	return payment, nil
}

func (s *PaymentService) findInvoice(ctx context.Context, schoolID, id uuid.UUID) (*finance.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "invoice not found")
	}
	return invoice, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toPaymentResponse(p *finance.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:             p.ID,
		SchoolID:       p.SchoolID,
		PaymentNumber:  p.PaymentNumber,
		InvoiceID:      p.InvoiceID,
		StudentID:      p.StudentID,
		Amount:         p.Amount,
		Method:         string(p.Method),
		Reference:      p.Reference,
		Status:         string(p.Status),
		ReceivedAt:     p.ReceivedAt,
		JournalEntryID: p.JournalEntryID,
		ConfirmedAt:    p.ConfirmedAt,
		VoidedAt:       p.VoidedAt,
		VoidReason:     p.VoidReason,
		CreatedAt:      p.CreatedAt,
		Version:        p.Version,
	}
}

func toCreditNoteResponse(n *finance.CreditNote) *CreditNoteResponse {
	return &CreditNoteResponse{
		ID:               n.ID,
		SchoolID:         n.SchoolID,
		CreditNoteNumber: n.CreditNoteNumber,
		InvoiceID:        n.InvoiceID,
		StudentID:        n.StudentID,
		Amount:           n.Amount,
		Reason:           n.Reason,
		JournalEntryID:   n.JournalEntryID,
		CreatedAt:        n.CreatedAt,
	}
}
