package accounting

import (
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalType distinguishes manually captured entries from those the system
// synthesizes out of finance workflows, and reversal entries
type JournalType string

const (
	JournalTypeManual   JournalType = "MANUAL"
	JournalTypeSystem   JournalType = "SYSTEM"
	JournalTypeReversal JournalType = "REVERSAL"
)

// IsValid checks if the journal type is valid
func (t JournalType) IsValid() bool {
	return t == JournalTypeManual || t == JournalTypeSystem || t == JournalTypeReversal
}

// JournalStatus represents the lifecycle status of a journal entry
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
)

// journalTransitions: a draft entry can only be posted; posted entries are
// terminal (immutable - corrections go through reversal entries).
var journalTransitions = shared.TransitionTable[JournalStatus]{
	JournalStatusDraft: {JournalStatusPosted},
}

// JournalEntryLine is one debit or credit leg of a journal entry
type JournalEntryLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode    string          `gorm:"type:varchar(20);not null"` // Denormalized for reporting
	Side           BalanceSide     `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostCentre     string          `gorm:"type:varchar(50)"`
	Memo           string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JournalEntryLine) TableName() string {
	return "journal_entry_lines"
}

// GetAmountMoney returns the line amount as Money
func (l *JournalEntryLine) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(l.Amount)
}

// JournalEntry is the aggregate root for one balanced financial event.
//
// An entry is built up in Draft status and posted atomically: posting
// requires the entry to be balanced (total debits equal total credits and
// are strictly positive) and the target period to be open and to contain
// the entry date. Once posted the entry is logically immutable.
type JournalEntry struct {
	shared.SchoolAggregateRoot
	EntryNumber       string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_journal_school_number,priority:2"`
	Type              JournalType        `gorm:"type:varchar(20);not null;index"`
	Status            JournalStatus      `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	EntryDate         time.Time          `gorm:"not null;index"`
	Description       string             `gorm:"type:varchar(500);not null"`
	SourceType        string             `gorm:"type:varchar(50);index:idx_journal_source"` // e.g. "INVOICE", "EXPENSE"
	SourceID          *uuid.UUID         `gorm:"type:uuid;index:idx_journal_source"`
	PeriodID          *uuid.UUID         `gorm:"type:uuid;index"`
	ReversesJournalID *uuid.UUID         `gorm:"type:uuid;index"`
	Lines             []JournalEntryLine `gorm:"foreignKey:JournalEntryID;references:ID"`
	PostedAt          *time.Time
	PostedBy          *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// NewJournalEntry creates a new draft journal entry with no lines
func NewJournalEntry(schoolID uuid.UUID, entryNumber string, journalType JournalType, entryDate time.Time, description string) (*JournalEntry, error) {
	if entryNumber == "" {
		return nil, shared.NewDomainError("INVALID_ENTRY_NUMBER", "Entry number cannot be empty")
	}
	if len(entryNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ENTRY_NUMBER", "Entry number cannot exceed 50 characters")
	}
	if !journalType.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOURNAL_TYPE",
			fmt.Sprintf("%q is not a valid journal type", journalType))
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ENTRY_DATE", "Entry date is required")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}

	return &JournalEntry{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		EntryNumber:         entryNumber,
		Type:                journalType,
		Status:              JournalStatusDraft,
		EntryDate:           entryDate,
		Description:         description,
		Lines:               make([]JournalEntryLine, 0),
	}, nil
}

// LinkSource attaches the source document this entry was synthesized from
func (e *JournalEntry) LinkSource(sourceType string, sourceID uuid.UUID) {
	e.SourceType = sourceType
	e.SourceID = &sourceID
	e.Touch()
}

// AddLine appends a debit or credit line to a draft entry. The target
// account must be postable: header and inactive accounts are rejected.
func (e *JournalEntry) AddLine(account *ChartOfAccount, side BalanceSide, amount valueobject.Money, costCentre, memo string) error {
	if e.Status != JournalStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a posted entry")
	}
	if account == nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account is required")
	}
	if account.SchoolID != e.SchoolID {
		return shared.ErrTenantMismatch
	}
	if !account.IsPostable() {
		return shared.NewDomainError("ACCOUNT_NOT_POSTABLE",
			fmt.Sprintf("Account %s is a header or inactive account and cannot take postings", account.Code))
	}
	if !side.IsValid() {
		return shared.NewDomainError("INVALID_SIDE", "Line side must be DEBIT or CREDIT")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Line amount must be positive")
	}

	e.Lines = append(e.Lines, JournalEntryLine{
		ID:             uuid.New(),
		JournalEntryID: e.ID,
		AccountID:      account.ID,
		AccountCode:    account.Code,
		Side:           side,
		Amount:         amount.Amount(),
		CostCentre:     costCentre,
		Memo:           memo,
	})
	e.Touch()
	return nil
}

// TotalDebit returns the sum of all debit lines
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == SideDebit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredit returns the sum of all credit lines
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == SideCredit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// IsBalanced reports whether total debits equal total credits and the
// total is strictly positive. A zero-value entry is never balanced, so
// no-op postings are impossible.
func (e *JournalEntry) IsBalanced() bool {
	debit := e.TotalDebit()
	return debit.Equal(e.TotalCredit()) && debit.IsPositive()
}

// IsReversal reports whether this entry reverses another entry
func (e *JournalEntry) IsReversal() bool {
	return e.ReversesJournalID != nil
}

// Post posts the entry into the given accounting period.
//
// Preconditions: the entry is a balanced draft, the period is open, belongs
// to the same school and contains the entry date. On success the entry
// becomes Posted and immutable.
func (e *JournalEntry) Post(postedBy uuid.UUID, period *AccountingPeriod) error {
	if err := journalTransitions.Guard(e.Status, JournalStatusPosted); err != nil {
		return err
	}
	if postedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Posting user ID is required")
	}
	if !e.IsBalanced() {
		return shared.ErrUnbalancedEntry
	}
	if period == nil {
		return shared.NewDomainError("INVALID_PERIOD", "Accounting period is required")
	}
	if period.SchoolID != e.SchoolID {
		return shared.ErrTenantMismatch
	}
	if !period.IsOpen() {
		return shared.ErrPeriodNotOpen
	}
	if !period.Contains(e.EntryDate) {
		return shared.NewDomainError("DATE_OUT_OF_PERIOD",
			fmt.Sprintf("Entry date %s is outside period %s", e.EntryDate.Format("2006-01-02"), period.Name))
	}

	now := time.Now()
	e.Status = JournalStatusPosted
	e.PeriodID = &period.ID
	e.PostedAt = &now
	e.PostedBy = &postedBy
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewJournalPostedEvent(e))

	return nil
}

// NewReversalEntry builds the reversal of a posted entry: a new draft entry
// whose lines mirror the original with debit and credit flipped. The
// reversal targets its own (usually later) period so closed periods can be
// corrected without being reopened.
func NewReversalEntry(original *JournalEntry, entryNumber string, entryDate time.Time, reason string) (*JournalEntry, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Original entry is required")
	}
	if original.Status != JournalStatusPosted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only posted entries can be reversed")
	}
	if original.IsReversal() {
		return nil, shared.NewDomainError("INVALID_STATE", "A reversal entry cannot itself be reversed")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	rev, err := NewJournalEntry(
		original.SchoolID,
		entryNumber,
		JournalTypeReversal,
		entryDate,
		fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, reason),
	)
	if err != nil {
		return nil, err
	}
	rev.ReversesJournalID = &original.ID
	rev.SourceType = original.SourceType
	rev.SourceID = original.SourceID

	for _, l := range original.Lines {
		rev.Lines = append(rev.Lines, JournalEntryLine{
			ID:             uuid.New(),
			JournalEntryID: rev.ID,
			AccountID:      l.AccountID,
			AccountCode:    l.AccountCode,
			Side:           l.Side.Opposite(),
			Amount:         l.Amount,
			CostCentre:     l.CostCentre,
			Memo:           l.Memo,
		})
	}

	return rev, nil
}
