package finance

import (
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how money arrived
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodMpesa        PaymentMethod = "MPESA"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusVoided    PaymentStatus = "VOIDED"
)

var paymentTransitions = shared.TransitionTable[PaymentStatus]{
	PaymentStatusPending: {PaymentStatusConfirmed, PaymentStatusVoided},
}

// Payment records money received against a student invoice. Confirming a
// payment applies it to the invoice and posts the cash receipt into the
// ledger.
type Payment struct {
	shared.SchoolAggregateRoot
	PaymentNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_school_number,priority:2"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method         PaymentMethod   `gorm:"type:varchar(20);not null"`
	Reference      string          `gorm:"type:varchar(100)"` // Mpesa code, cheque number, bank slip
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReceivedAt     time.Time       `gorm:"not null"`
	JournalEntryID *uuid.UUID      `gorm:"type:uuid;index"`
	ConfirmedAt    *time.Time
	ConfirmedBy    *uuid.UUID `gorm:"type:uuid"`
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new pending payment against an invoice
func NewPayment(schoolID uuid.UUID, paymentNumber string, invoiceID, studentID uuid.UUID, amount valueobject.Money, method PaymentMethod, reference string, receivedAt time.Time) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD",
			fmt.Sprintf("%q is not a valid payment method", method))
	}
	if receivedAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Received date is required")
	}

	p := &Payment{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		PaymentNumber:       paymentNumber,
		InvoiceID:           invoiceID,
		StudentID:           studentID,
		Amount:              amount.Amount(),
		Method:              method,
		Reference:           reference,
		Status:              PaymentStatusPending,
		ReceivedAt:          receivedAt,
	}

	p.AddDomainEvent(NewPaymentReceivedEvent(p))

	return p, nil
}

// Confirm confirms receipt of the funds
func (p *Payment) Confirm(confirmedBy uuid.UUID) error {
	if err := paymentTransitions.Guard(p.Status, PaymentStatusConfirmed); err != nil {
		return err
	}
	if confirmedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Confirming user ID is required")
	}

	now := time.Now()
	p.Status = PaymentStatusConfirmed
	p.ConfirmedAt = &now
	p.ConfirmedBy = &confirmedBy
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentConfirmedEvent(p))

	return nil
}

// Void voids a pending payment that never materialized
func (p *Payment) Void(reason string) error {
	if err := paymentTransitions.Guard(p.Status, PaymentStatusVoided); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusVoided
	p.VoidedAt = &now
	p.VoidReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// LinkJournalEntry records the cash receipt journal entry
func (p *Payment) LinkJournalEntry(journalID uuid.UUID) {
	p.JournalEntryID = &journalID
	p.Touch()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// CreditNote reduces what a student owes on an issued invoice, for example
// after a withdrawal mid-term. Issuing a credit note posts the inverse of
// the revenue recognition.
type CreditNote struct {
	shared.SchoolAggregateRoot
	CreditNoteNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_school_number,priority:2"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason           string          `gorm:"type:varchar(500);not null"`
	IssuedAt         time.Time       `gorm:"not null"`
	IssuedBy         uuid.UUID       `gorm:"type:uuid;not null"`
	JournalEntryID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote creates a credit note against an invoice
func NewCreditNote(schoolID uuid.UUID, creditNoteNumber string, invoiceID, studentID uuid.UUID, amount valueobject.Money, reason string, issuedBy uuid.UUID) (*CreditNote, error) {
	if creditNoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT_NOTE_NUMBER", "Credit note number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Credit reason is required")
	}
	if issuedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Issuing user ID is required")
	}

	return &CreditNote{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		CreditNoteNumber:    creditNoteNumber,
		InvoiceID:           invoiceID,
		StudentID:           studentID,
		Amount:              amount.Amount(),
		Reason:              reason,
		IssuedAt:            time.Now(),
		IssuedBy:            issuedBy,
	}, nil
}

// LinkJournalEntry records the revenue reversal journal entry
func (c *CreditNote) LinkJournalEntry(journalID uuid.UUID) {
	c.JournalEntryID = &journalID
	c.Touch()
}
