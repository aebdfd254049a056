package finance

import (
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCreatedEvent is raised when a new expense is captured
type ExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	Category      ExpenseCategory `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ExpenseCreatedEvent) EventType() string {
	return "ExpenseCreated"
}

// NewExpenseCreatedEvent creates a new ExpenseCreatedEvent
func NewExpenseCreatedEvent(exp *Expense) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseCreated", "Expense", exp.ID, exp.SchoolID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		Category:        exp.Category,
		Amount:          exp.Amount,
	}
}

// ExpenseSubmittedEvent is raised when an expense enters the approval queue
type ExpenseSubmittedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID `json:"expense_id"`
	ExpenseNumber string    `json:"expense_number"`
	SubmittedBy   uuid.UUID `json:"submitted_by"`
}

// EventType returns the event type name
func (e *ExpenseSubmittedEvent) EventType() string {
	return "ExpenseSubmitted"
}

// NewExpenseSubmittedEvent creates a new ExpenseSubmittedEvent
func NewExpenseSubmittedEvent(exp *Expense) *ExpenseSubmittedEvent {
	var by uuid.UUID
	if exp.SubmittedBy != nil {
		by = *exp.SubmittedBy
	}
	return &ExpenseSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseSubmitted", "Expense", exp.ID, exp.SchoolID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		SubmittedBy:     by,
	}
}

// ExpenseApprovedEvent is raised when an expense is approved. The expense
// service reacts by synthesizing the GL posting.
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	Category      ExpenseCategory `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ApprovedBy    uuid.UUID       `json:"approved_by"`
}

// EventType returns the event type name
func (e *ExpenseApprovedEvent) EventType() string {
	return "ExpenseApproved"
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(exp *Expense) *ExpenseApprovedEvent {
	var by uuid.UUID
	if exp.ApprovedBy != nil {
		by = *exp.ApprovedBy
	}
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseApproved", "Expense", exp.ID, exp.SchoolID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		Category:        exp.Category,
		Amount:          exp.Amount,
		TaxAmount:       exp.TaxAmount,
		ApprovedBy:      by,
	}
}

// ExpenseRejectedEvent is raised when an expense is rejected
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID `json:"expense_id"`
	ExpenseNumber string    `json:"expense_number"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *ExpenseRejectedEvent) EventType() string {
	return "ExpenseRejected"
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(exp *Expense, reason string) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseRejected", "Expense", exp.ID, exp.SchoolID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		Reason:          reason,
	}
}

// ExpensePaidEvent is raised when an approved expense is paid out
type ExpensePaidEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ExpensePaidEvent) EventType() string {
	return "ExpensePaid"
}

// NewExpensePaidEvent creates a new ExpensePaidEvent
func NewExpensePaidEvent(exp *Expense) *ExpensePaidEvent {
	return &ExpensePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpensePaid", "Expense", exp.ID, exp.SchoolID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		Amount:          exp.TotalAmount(),
	}
}

// InvoiceCreatedEvent is raised when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	StudentID     uuid.UUID `json:"student_id"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.SchoolID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		StudentID:       inv.StudentID,
	}
}

// InvoiceIssuedEvent is raised when an invoice is issued to a student
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return "InvoiceIssued"
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceIssued", "Invoice", inv.ID, inv.SchoolID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		StudentID:       inv.StudentID,
		TotalAmount:     inv.TotalAmount,
		TaxTotal:        inv.TaxTotal,
	}
}

// InvoicePaidEvent is raised when an invoice is fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID, inv.SchoolID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		StudentID:       inv.StudentID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceCancelledEvent is raised when an invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID, inv.SchoolID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          reason,
	}
}

// PaymentReceivedEvent is raised when a payment is captured
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
}

// EventType returns the event type name
func (e *PaymentReceivedEvent) EventType() string {
	return "PaymentReceived"
}

// NewPaymentReceivedEvent creates a new PaymentReceivedEvent
func NewPaymentReceivedEvent(p *Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReceived", "Payment", p.ID, p.SchoolID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// PaymentConfirmedEvent is raised when funds are confirmed received
type PaymentConfirmedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	ConfirmedBy   uuid.UUID       `json:"confirmed_by"`
}

// EventType returns the event type name
func (e *PaymentConfirmedEvent) EventType() string {
	return "PaymentConfirmed"
}

// NewPaymentConfirmedEvent creates a new PaymentConfirmedEvent
func NewPaymentConfirmedEvent(p *Payment) *PaymentConfirmedEvent {
	var by uuid.UUID
	if p.ConfirmedBy != nil {
		by = *p.ConfirmedBy
	}
	return &PaymentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentConfirmed", "Payment", p.ID, p.SchoolID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		ConfirmedBy:     by,
	}
}
