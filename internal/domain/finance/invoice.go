package finance

import (
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of a student invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// invoiceTransitions: issue from draft, settle through partial payment to
// paid, cancel while money has not fully arrived
var invoiceTransitions = shared.TransitionTable[InvoiceStatus]{
	InvoiceStatusDraft:         {InvoiceStatusIssued, InvoiceStatusCancelled},
	InvoiceStatusIssued:        {InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPartiallyPaid: {InvoiceStatusPaid},
}

// InvoiceItem is one billable line on an invoice.
//
// Total, TaxAmount and NetAmount are derived columns: Compute must be
// called after quantity, unit price, discount or tax rate change. There is
// no automatic recalculation hook.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Absolute discount per line
	TaxRate     decimal.Decimal `gorm:"type:decimal(7,4);not null"`  // e.g. 0.16 for 16% VAT
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // (qty*price - discount) + tax
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Before tax, after discount
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// Compute recalculates the derived amounts from the inputs. It is
// idempotent: calling it repeatedly with unchanged inputs yields identical
// results.
func (i *InvoiceItem) Compute() {
	gross := i.Quantity.Mul(i.UnitPrice)
	net := gross.Sub(i.Discount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	tax := net.Mul(i.TaxRate).Round(4)
	i.NetAmount = net
	i.TaxAmount = tax
	i.Total = net.Add(tax)
}

// Invoice bills a student for fees. Issuing an invoice posts the
// receivable into the ledger; payments and credit notes settle it.
type Invoice struct {
	shared.SchoolAggregateRoot
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_school_number,priority:2"`
	StudentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IssueDate      *time.Time      `gorm:"index"`
	DueDate        time.Time       `gorm:"not null"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;references:ID"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreditedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes          string          `gorm:"type:text"`
	JournalEntryID *uuid.UUID      `gorm:"type:uuid;index"`
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice for a student
func NewInvoice(schoolID uuid.UUID, invoiceNumber string, studentID uuid.UUID, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}

	inv := &Invoice{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		InvoiceNumber:       invoiceNumber,
		StudentID:           studentID,
		Status:              InvoiceStatusDraft,
		DueDate:             dueDate,
		Items:               make([]InvoiceItem, 0),
		TotalAmount:         decimal.Zero,
		TaxTotal:            decimal.Zero,
		PaidAmount:          decimal.Zero,
		CreditedAmount:      decimal.Zero,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddItem appends a billable line to a draft invoice and recomputes totals
func (inv *Invoice) AddItem(description string, quantity, unitPrice, discount, taxRate decimal.Decimal) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to a draft invoice")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	item := InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Discount:    discount,
		TaxRate:     taxRate,
	}
	item.Compute()

	inv.Items = append(inv.Items, item)
	inv.recomputeTotals()
	inv.Touch()
	return nil
}

// recomputeTotals rolls the line totals up to the invoice header
func (inv *Invoice) recomputeTotals() {
	total := decimal.Zero
	tax := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(it.Total)
		tax = tax.Add(it.TaxAmount)
	}
	inv.TotalAmount = total
	inv.TaxTotal = tax
}

// Issue issues a draft invoice with at least one item
func (inv *Invoice) Issue(issueDate time.Time) error {
	if err := invoiceTransitions.Guard(inv.Status, InvoiceStatusIssued); err != nil {
		return err
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Invoice must have at least one item")
	}
	if !inv.TotalAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	inv.Status = InvoiceStatusIssued
	inv.IssueDate = &issueDate
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return nil
}

// AmountDue returns the outstanding balance: total minus payments and credits
func (inv *Invoice) AmountDue() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount).Sub(inv.CreditedAmount)
}

// ApplyPayment records a confirmed payment against the invoice and moves
// the status along. Overpayment is rejected.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if inv.Status != InvoiceStatusIssued && inv.Status != InvoiceStatusPartiallyPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to a %s invoice", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountDue()) {
		return shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("Payment %s exceeds amount due %s", amount.Amount(), inv.AmountDue()))
	}

	next := InvoiceStatusPartiallyPaid
	if inv.AmountDue().Equal(amount.Amount()) {
		next = InvoiceStatusPaid
	}
	// A further partial payment keeps the invoice PARTIALLY_PAID; only real
	// state changes go through the table.
	if next != inv.Status {
		if err := invoiceTransitions.Guard(inv.Status, next); err != nil {
			return err
		}
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.Status = next
	inv.Touch()
	inv.IncrementVersion()

	if next == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return nil
}

// ApplyCredit reduces the amount due with a credit note
func (inv *Invoice) ApplyCredit(amount valueobject.Money) error {
	if inv.Status != InvoiceStatusIssued && inv.Status != InvoiceStatusPartiallyPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot credit a %s invoice", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountDue()) {
		return shared.NewDomainError("OVERCREDIT",
			fmt.Sprintf("Credit %s exceeds amount due %s", amount.Amount(), inv.AmountDue()))
	}

	inv.CreditedAmount = inv.CreditedAmount.Add(amount.Amount())
	if inv.AmountDue().IsZero() {
		inv.Status = InvoiceStatusPaid
	}
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// Cancel voids an invoice no money has fully arrived for
func (inv *Invoice) Cancel(reason string) error {
	if err := invoiceTransitions.Guard(inv.Status, InvoiceStatusCancelled); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Invoices with payments cannot be cancelled; issue a credit note")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, reason))

	return nil
}

// LinkJournalEntry records the journal entry posted when the invoice was issued
func (inv *Invoice) LinkJournalEntry(journalID uuid.UUID) {
	inv.JournalEntryID = &journalID
	inv.Touch()
}
