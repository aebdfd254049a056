package accounting

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFilter defines filtering options for chart of account queries
type AccountFilter struct {
	shared.Filter
	Type     *AccountType
	ParentID *uuid.UUID
	IsHeader *bool
	Active   *bool
}

// ChartOfAccountRepository defines the interface for GL account persistence
type ChartOfAccountRepository interface {
	// FindByIDForSchool finds an account by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*ChartOfAccount, error)

	// FindByCode finds an account by its code within a school
	FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*ChartOfAccount, error)

	// FindAllForSchool lists accounts for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter AccountFilter) ([]ChartOfAccount, error)

	// FindChildren lists the direct children of a header account
	FindChildren(ctx context.Context, schoolID, parentID uuid.UUID) ([]ChartOfAccount, error)

	// CountForSchool counts accounts matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter AccountFilter) (int64, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *ChartOfAccount) error

	// DeleteForSchool deletes an account within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}

// PeriodFilter defines filtering options for accounting period queries
type PeriodFilter struct {
	shared.Filter
	FiscalYear *int
	Status     *PeriodStatus
}

// AccountingPeriodRepository defines the interface for period persistence
type AccountingPeriodRepository interface {
	// FindByIDForSchool finds a period by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*AccountingPeriod, error)

	// FindByDate finds the period containing the given date
	FindByDate(ctx context.Context, schoolID uuid.UUID, date time.Time) (*AccountingPeriod, error)

	// FindByYearAndNumber finds a period by fiscal year and period number
	FindByYearAndNumber(ctx context.Context, schoolID uuid.UUID, fiscalYear, periodNumber int) (*AccountingPeriod, error)

	// FindAllForSchool lists periods for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter PeriodFilter) ([]AccountingPeriod, error)

	// CountForSchool counts periods matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter PeriodFilter) (int64, error)

	// Save creates or updates a period
	Save(ctx context.Context, period *AccountingPeriod) error
}

// JournalFilter defines filtering options for journal entry queries
type JournalFilter struct {
	shared.Filter
	Type       *JournalType
	Status     *JournalStatus
	PeriodID   *uuid.UUID
	AccountID  *uuid.UUID
	SourceType *string
	SourceID   *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// AccountBalance is the posted debit/credit position of one account
type AccountBalance struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// Net returns the balance on the account's normal side: debit minus credit
// for debit-normal accounts, credit minus debit otherwise
func (b AccountBalance) Net(normal BalanceSide) decimal.Decimal {
	if normal == SideDebit {
		return b.TotalDebit.Sub(b.TotalCredit)
	}
	return b.TotalCredit.Sub(b.TotalDebit)
}

// JournalEntryRepository defines the interface for journal persistence
type JournalEntryRepository interface {
	// FindByIDForSchool finds a journal entry by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*JournalEntry, error)

	// FindByEntryNumber finds a journal entry by its number within a school
	FindByEntryNumber(ctx context.Context, schoolID uuid.UUID, entryNumber string) (*JournalEntry, error)

	// FindBySource finds entries synthesized from a source document
	FindBySource(ctx context.Context, schoolID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]JournalEntry, error)

	// FindReversalOf finds the reversal entry for a posted entry, if any
	FindReversalOf(ctx context.Context, schoolID, journalID uuid.UUID) (*JournalEntry, error)

	// FindAllForSchool lists journal entries for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter JournalFilter) ([]JournalEntry, error)

	// CountForSchool counts journal entries matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter JournalFilter) (int64, error)

	// SumPostedByAccount sums posted line amounts per account over a date
	// range. This is the reporting-time join used for account balances and
	// budget actuals.
	SumPostedByAccount(ctx context.Context, schoolID uuid.UUID, accountIDs []uuid.UUID, from, to time.Time) ([]AccountBalance, error)

	// GenerateEntryNumber produces the next sequential entry number for a school
	GenerateEntryNumber(ctx context.Context, schoolID uuid.UUID, journalType JournalType) (string, error)

	// Save creates or updates a journal entry with its lines
	Save(ctx context.Context, entry *JournalEntry) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, entry *JournalEntry) error
}

// BudgetFilter defines filtering options for budget queries
type BudgetFilter struct {
	shared.Filter
	FiscalYear *int
	PeriodID   *uuid.UUID
	Status     *BudgetStatus
}

// BudgetRepository defines the interface for budget persistence
type BudgetRepository interface {
	// FindByIDForSchool finds a budget by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Budget, error)

	// FindByPeriod finds the budget for a period, if any
	FindByPeriod(ctx context.Context, schoolID, periodID uuid.UUID) (*Budget, error)

	// FindAllForSchool lists budgets for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter BudgetFilter) ([]Budget, error)

	// CountForSchool counts budgets matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter BudgetFilter) (int64, error)

	// Save creates or updates a budget with its lines and revisions
	Save(ctx context.Context, budget *Budget) error

	// DeleteForSchool deletes a draft budget within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}
