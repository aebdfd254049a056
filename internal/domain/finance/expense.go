package finance

import (
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies school expenses for reporting and for default
// GL account selection
type ExpenseCategory string

const (
	ExpenseCategorySalaries    ExpenseCategory = "SALARIES"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategorySupplies    ExpenseCategory = "SUPPLIES"
	ExpenseCategoryTransport   ExpenseCategory = "TRANSPORT"
	ExpenseCategoryCatering    ExpenseCategory = "CATERING"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// IsValid checks if the category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategorySalaries, ExpenseCategoryUtilities, ExpenseCategoryMaintenance,
		ExpenseCategorySupplies, ExpenseCategoryTransport, ExpenseCategoryCatering,
		ExpenseCategoryOther:
		return true
	}
	return false
}

// ExpenseStatus represents the workflow status of an expense
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"
	ExpenseStatusSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"
	ExpenseStatusRejected  ExpenseStatus = "REJECTED"
	ExpenseStatusPaid      ExpenseStatus = "PAID"
)

// expenseTransitions: Draft -> Submitted -> Approved -> Paid, with Rejected
// as a terminal branch from Submitted
var expenseTransitions = shared.TransitionTable[ExpenseStatus]{
	ExpenseStatusDraft:     {ExpenseStatusSubmitted},
	ExpenseStatusSubmitted: {ExpenseStatusApproved, ExpenseStatusRejected},
	ExpenseStatusApproved:  {ExpenseStatusPaid},
}

// Expense is a school expenditure moving through the approval workflow.
// On approval the expense service synthesizes a System journal entry and
// links it back via JournalEntryID.
type Expense struct {
	shared.SchoolAggregateRoot
	ExpenseNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_expense_school_number,priority:2"`
	Category       ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	GLAccountID    *uuid.UUID      `gorm:"type:uuid"` // Optional override of the category's default expense account
	Description    string          `gorm:"type:varchar(500);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IncurredAt     time.Time       `gorm:"not null"`
	Status         ExpenseStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Notes          string          `gorm:"type:text"`
	AttachmentKeys string          `gorm:"type:text"` // Object storage keys for receipts, comma separated
	JournalEntryID *uuid.UUID      `gorm:"type:uuid;index"`
	SubmittedAt    *time.Time
	SubmittedBy    *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	ApprovedBy     *uuid.UUID `gorm:"type:uuid"`
	RejectedAt     *time.Time
	RejectedBy     *uuid.UUID `gorm:"type:uuid"`
	PaidAt         *time.Time
	PaidBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates a new draft expense
func NewExpense(schoolID uuid.UUID, expenseNumber string, category ExpenseCategory, description string, amount, tax valueobject.Money, incurredAt time.Time) (*Expense, error) {
	if expenseNumber == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY",
			fmt.Sprintf("%q is not a valid expense category", category))
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax amount cannot be negative")
	}
	if incurredAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Incurred date is required")
	}

	e := &Expense{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		ExpenseNumber:       expenseNumber,
		Category:            category,
		Description:         description,
		Amount:              amount.Amount(),
		TaxAmount:           tax.Amount(),
		IncurredAt:          incurredAt,
		Status:              ExpenseStatusDraft,
	}

	e.AddDomainEvent(NewExpenseCreatedEvent(e))

	return e, nil
}

// TotalAmount returns amount plus tax
func (e *Expense) TotalAmount() decimal.Decimal {
	return e.Amount.Add(e.TaxAmount)
}

// SetGLAccount overrides the default expense account for the category
func (e *Expense) SetGLAccount(accountID uuid.UUID) error {
	if e.Status != ExpenseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "GL account can only be set while draft")
	}
	e.GLAccountID = &accountID
	e.Touch()
	return nil
}

// Submit moves a draft expense into the approval queue
func (e *Expense) Submit(submittedBy uuid.UUID) error {
	if err := expenseTransitions.Guard(e.Status, ExpenseStatusSubmitted); err != nil {
		return err
	}
	if submittedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusSubmitted
	e.SubmittedAt = &now
	e.SubmittedBy = &submittedBy
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewExpenseSubmittedEvent(e))

	return nil
}

// Approve approves a submitted expense. Approval from any other status is
// an illegal transition.
func (e *Expense) Approve(approvedBy uuid.UUID) error {
	if err := expenseTransitions.Guard(e.Status, ExpenseStatusApproved); err != nil {
		return err
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedAt = &now
	e.ApprovedBy = &approvedBy
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewExpenseApprovedEvent(e))

	return nil
}

// Reject rejects a submitted expense, terminally, appending the reason to
// the notes trail
func (e *Expense) Reject(rejectedBy uuid.UUID, reason string) error {
	if err := expenseTransitions.Guard(e.Status, ExpenseStatusRejected); err != nil {
		return err
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.RejectedAt = &now
	e.RejectedBy = &rejectedBy
	if e.Notes != "" {
		e.Notes += "\n"
	}
	e.Notes += fmt.Sprintf("Rejected %s: %s", now.Format("2006-01-02"), reason)
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewExpenseRejectedEvent(e, reason))

	return nil
}

// MarkPaid records payment of an approved expense
func (e *Expense) MarkPaid(paidBy uuid.UUID) error {
	if err := expenseTransitions.Guard(e.Status, ExpenseStatusPaid); err != nil {
		return err
	}
	if paidBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Paying user ID is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusPaid
	e.PaidAt = &now
	e.PaidBy = &paidBy
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewExpensePaidEvent(e))

	return nil
}

// LinkJournalEntry records the journal entry synthesized on approval
func (e *Expense) LinkJournalEntry(journalID uuid.UUID) {
	e.JournalEntryID = &journalID
	e.Touch()
}

// SetNotes replaces the free-form notes on a draft expense
func (e *Expense) SetNotes(notes string) {
	e.Notes = notes
	e.Touch()
}

// SetAttachmentKeys records object storage keys for receipt scans
func (e *Expense) SetAttachmentKeys(keys string) {
	e.AttachmentKeys = keys
	e.Touch()
}
