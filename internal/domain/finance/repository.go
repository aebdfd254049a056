package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	Category *ExpenseCategory
	Status   *ExpenseStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Expense, error)
	FindByExpenseNumber(ctx context.Context, schoolID uuid.UUID, expenseNumber string) (*Expense, error)
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter ExpenseFilter) ([]Expense, error)
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter ExpenseFilter) (int64, error)
	GenerateExpenseNumber(ctx context.Context, schoolID uuid.UUID) (string, error)
	Save(ctx context.Context, expense *Expense) error
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	Status    *InvoiceStatus
	DueFrom   *time.Time
	DueTo     *time.Time
	Overdue   *bool
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, schoolID uuid.UUID, invoiceNumber string) (*Invoice, error)
	FindByStudent(ctx context.Context, schoolID, studentID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter InvoiceFilter) (int64, error)
	GenerateInvoiceNumber(ctx context.Context, schoolID uuid.UUID) (string, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	InvoiceID *uuid.UUID
	StudentID *uuid.UUID
	Status    *PaymentStatus
	Method    *PaymentMethod
	FromDate  *time.Time
	ToDate    *time.Time
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, schoolID uuid.UUID, reference string) (*Payment, error)
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter PaymentFilter) (int64, error)
	GeneratePaymentNumber(ctx context.Context, schoolID uuid.UUID) (string, error)
	Save(ctx context.Context, payment *Payment) error
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*CreditNote, error)
	FindByInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) ([]CreditNote, error)
	GenerateCreditNoteNumber(ctx context.Context, schoolID uuid.UUID) (string, error)
	Save(ctx context.Context, note *CreditNote) error
}

// PaymentPlanRepository defines the interface for payment plan persistence
type PaymentPlanRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*PaymentPlan, error)
	FindByInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) (*PaymentPlan, error)
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) ([]PaymentPlan, error)
	Save(ctx context.Context, plan *PaymentPlan) error
}

// StudentDiscountRepository defines the interface for discount persistence
type StudentDiscountRepository interface {
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*StudentDiscount, error)
	FindActiveByStudent(ctx context.Context, schoolID, studentID uuid.UUID) ([]StudentDiscount, error)
	Save(ctx context.Context, discount *StudentDiscount) error
}

// PostingRuleSetRepository defines the interface for posting rule persistence
type PostingRuleSetRepository interface {
	FindForSchool(ctx context.Context, schoolID uuid.UUID) (*PostingRuleSet, error)
	Save(ctx context.Context, rules *PostingRuleSet) error
}
