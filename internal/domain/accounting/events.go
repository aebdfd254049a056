package accounting

import (
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountCreatedEvent is raised when a new GL account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID   `json:"account_id"`
	AccountCode string      `json:"account_code"`
	AccountType AccountType `json:"account_type"`
	IsHeader    bool        `json:"is_header"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "AccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *ChartOfAccount) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountCreated", "ChartOfAccount", a.ID, a.SchoolID),
		AccountID:       a.ID,
		AccountCode:     a.Code,
		AccountType:     a.Type,
		IsHeader:        a.IsHeader,
	}
}

// JournalPostedEvent is raised when a journal entry is posted.
// Subscribers use it to invalidate cached account balances.
type JournalPostedEvent struct {
	shared.BaseDomainEvent
	JournalID   uuid.UUID       `json:"journal_id"`
	EntryNumber string          `json:"entry_number"`
	JournalType JournalType     `json:"journal_type"`
	EntryDate   time.Time       `json:"entry_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AccountIDs  []uuid.UUID     `json:"account_ids"`
	PostedBy    uuid.UUID       `json:"posted_by"`
}

// EventType returns the event type name
func (e *JournalPostedEvent) EventType() string {
	return "JournalPosted"
}

// NewJournalPostedEvent creates a new JournalPostedEvent
func NewJournalPostedEvent(j *JournalEntry) *JournalPostedEvent {
	accountIDs := make([]uuid.UUID, 0, len(j.Lines))
	for _, l := range j.Lines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	var postedBy uuid.UUID
	if j.PostedBy != nil {
		postedBy = *j.PostedBy
	}
	return &JournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("JournalPosted", "JournalEntry", j.ID, j.SchoolID),
		JournalID:       j.ID,
		EntryNumber:     j.EntryNumber,
		JournalType:     j.Type,
		EntryDate:       j.EntryDate,
		TotalAmount:     j.TotalDebit(),
		AccountIDs:      accountIDs,
		PostedBy:        postedBy,
	}
}

// PeriodClosedEvent is raised when an accounting period is closed
type PeriodClosedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	FiscalYear   int       `json:"fiscal_year"`
	PeriodNumber int       `json:"period_number"`
	ClosedBy     uuid.UUID `json:"closed_by"`
}

// EventType returns the event type name
func (e *PeriodClosedEvent) EventType() string {
	return "PeriodClosed"
}

// NewPeriodClosedEvent creates a new PeriodClosedEvent
func NewPeriodClosedEvent(p *AccountingPeriod) *PeriodClosedEvent {
	var closedBy uuid.UUID
	if p.ClosedBy != nil {
		closedBy = *p.ClosedBy
	}
	return &PeriodClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PeriodClosed", "AccountingPeriod", p.ID, p.SchoolID),
		PeriodID:        p.ID,
		FiscalYear:      p.FiscalYear,
		PeriodNumber:    p.PeriodNumber,
		ClosedBy:        closedBy,
	}
}

// PeriodLockedEvent is raised when an accounting period is locked
type PeriodLockedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	FiscalYear   int       `json:"fiscal_year"`
	PeriodNumber int       `json:"period_number"`
}

// EventType returns the event type name
func (e *PeriodLockedEvent) EventType() string {
	return "PeriodLocked"
}

// NewPeriodLockedEvent creates a new PeriodLockedEvent
func NewPeriodLockedEvent(p *AccountingPeriod) *PeriodLockedEvent {
	return &PeriodLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PeriodLocked", "AccountingPeriod", p.ID, p.SchoolID),
		PeriodID:        p.ID,
		FiscalYear:      p.FiscalYear,
		PeriodNumber:    p.PeriodNumber,
	}
}

// BudgetApprovedEvent is raised when a budget is approved
type BudgetApprovedEvent struct {
	shared.BaseDomainEvent
	BudgetID     uuid.UUID       `json:"budget_id"`
	PeriodID     uuid.UUID       `json:"period_id"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	ApprovedBy   uuid.UUID       `json:"approved_by"`
}

// EventType returns the event type name
func (e *BudgetApprovedEvent) EventType() string {
	return "BudgetApproved"
}

// NewBudgetApprovedEvent creates a new BudgetApprovedEvent
func NewBudgetApprovedEvent(b *Budget) *BudgetApprovedEvent {
	var approvedBy uuid.UUID
	if b.ApprovedBy != nil {
		approvedBy = *b.ApprovedBy
	}
	return &BudgetApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BudgetApproved", "Budget", b.ID, b.SchoolID),
		BudgetID:        b.ID,
		PeriodID:        b.PeriodID,
		TotalRevenue:    b.TotalRevenue(),
		TotalExpense:    b.TotalExpense(),
		ApprovedBy:      approvedBy,
	}
}
