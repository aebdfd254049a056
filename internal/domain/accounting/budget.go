package accounting

import (
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus represents the lifecycle status of a budget
type BudgetStatus string

const (
	BudgetStatusDraft  BudgetStatus = "DRAFT"
	BudgetStatusActive BudgetStatus = "ACTIVE"
)

var budgetTransitions = shared.TransitionTable[BudgetStatus]{
	BudgetStatusDraft: {BudgetStatusActive},
}

// BudgetLine is a per-account planned amount within a budget.
//
// ActualAmount is intentionally absent: actuals are a reporting-time join
// over posted journal lines for the account within the budget period,
// computed by the budget variance service, never stored.
type BudgetLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode    string          `gorm:"type:varchar(20);not null"`
	AccountType    AccountType     `gorm:"type:varchar(20);not null"`
	BudgetedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes          string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BudgetLine) TableName() string {
	return "budget_lines"
}

// BudgetRevision records one amendment to a budget line amount
type BudgetRevision struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null"`
	PreviousAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason         string          `gorm:"type:varchar(500);not null"`
	RevisedAt      time.Time       `gorm:"not null"`
	RevisedBy      uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (BudgetRevision) TableName() string {
	return "budget_revisions"
}

// Budget is a per-period plan of revenue and expense amounts by GL account
type Budget struct {
	shared.SchoolAggregateRoot
	Name       string           `gorm:"type:varchar(200);not null"`
	PeriodID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	FiscalYear int              `gorm:"not null;index"`
	Status     BudgetStatus     `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	Lines      []BudgetLine     `gorm:"foreignKey:BudgetID;references:ID"`
	Revisions  []BudgetRevision `gorm:"foreignKey:BudgetID;references:ID"`
	ApprovedAt *time.Time
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Budget) TableName() string {
	return "budgets"
}

// NewBudget creates a new draft budget for a period
func NewBudget(schoolID uuid.UUID, name string, periodID uuid.UUID, fiscalYear int) (*Budget, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_BUDGET_NAME", "Budget name cannot be empty")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Budget period is required")
	}

	return &Budget{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		PeriodID:            periodID,
		FiscalYear:          fiscalYear,
		Status:              BudgetStatusDraft,
		Lines:               make([]BudgetLine, 0),
		Revisions:           make([]BudgetRevision, 0),
	}, nil
}

// AddLine adds a planned amount for an account. Only one line per account
// is allowed and only revenue or expense accounts can be budgeted.
func (b *Budget) AddLine(account *ChartOfAccount, amount valueobject.Money, notes string) error {
	if b.Status != BudgetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be added to a draft budget")
	}
	if account == nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account is required")
	}
	if account.SchoolID != b.SchoolID {
		return shared.ErrTenantMismatch
	}
	if account.Type != AccountTypeRevenue && account.Type != AccountTypeExpense {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Only revenue and expense accounts can be budgeted")
	}
	if !account.IsPostable() {
		return shared.NewDomainError("ACCOUNT_NOT_POSTABLE", "Header and inactive accounts cannot be budgeted")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Budgeted amount cannot be negative")
	}
	for _, l := range b.Lines {
		if l.AccountID == account.ID {
			return shared.NewDomainError("DUPLICATE_LINE", "Account already has a budget line")
		}
	}

	b.Lines = append(b.Lines, BudgetLine{
		ID:             uuid.New(),
		BudgetID:       b.ID,
		AccountID:      account.ID,
		AccountCode:    account.Code,
		AccountType:    account.Type,
		BudgetedAmount: amount.Amount(),
		Notes:          notes,
	})
	b.Touch()
	return nil
}

// ReviseLine amends the planned amount for an account and records the
// amendment in the revision trail. Active budgets can be revised; the
// trail is the audit record.
func (b *Budget) ReviseLine(accountID uuid.UUID, newAmount valueobject.Money, reason string, revisedBy uuid.UUID) error {
	if newAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Budgeted amount cannot be negative")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Revision reason is required")
	}
	if revisedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Revising user ID is required")
	}

	for i := range b.Lines {
		if b.Lines[i].AccountID != accountID {
			continue
		}
		b.Revisions = append(b.Revisions, BudgetRevision{
			ID:             uuid.New(),
			BudgetID:       b.ID,
			AccountID:      accountID,
			PreviousAmount: b.Lines[i].BudgetedAmount,
			NewAmount:      newAmount.Amount(),
			Reason:         reason,
			RevisedAt:      time.Now(),
			RevisedBy:      revisedBy,
		})
		b.Lines[i].BudgetedAmount = newAmount.Amount()
		b.Touch()
		b.IncrementVersion()
		return nil
	}
	return shared.NewDomainError("NOT_FOUND", "No budget line for the given account")
}

// Approve activates a draft budget
func (b *Budget) Approve(approvedBy uuid.UUID) error {
	if err := budgetTransitions.Guard(b.Status, BudgetStatusActive); err != nil {
		return err
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}
	if len(b.Lines) == 0 {
		return shared.NewDomainError("EMPTY_BUDGET", "Budget must have at least one line before approval")
	}

	now := time.Now()
	b.Status = BudgetStatusActive
	b.ApprovedAt = &now
	b.ApprovedBy = &approvedBy
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBudgetApprovedEvent(b))

	return nil
}

// TotalRevenue returns the sum of budgeted amounts over revenue lines
func (b *Budget) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		if l.AccountType == AccountTypeRevenue {
			total = total.Add(l.BudgetedAmount)
		}
	}
	return total
}

// TotalExpense returns the sum of budgeted amounts over expense lines
func (b *Budget) TotalExpense() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		if l.AccountType == AccountTypeExpense {
			total = total.Add(l.BudgetedAmount)
		}
	}
	return total
}

// Variance is the budget-vs-actual position of one line at reporting time
type Variance struct {
	AccountID       uuid.UUID       `json:"account_id"`
	AccountCode     string          `json:"account_code"`
	BudgetedAmount  decimal.Decimal `json:"budgeted_amount"`
	ActualAmount    decimal.Decimal `json:"actual_amount"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
}

// ComputeVariance builds the variance for a line given the actual amount
// summed from posted journal lines. The percentage is zero when nothing
// was budgeted, guarding the divide.
func (l *BudgetLine) ComputeVariance(actual decimal.Decimal) Variance {
	variance := l.BudgetedAmount.Sub(actual)
	percent := decimal.Zero
	if !l.BudgetedAmount.IsZero() {
		percent = variance.Div(l.BudgetedAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return Variance{
		AccountID:       l.AccountID,
		AccountCode:     l.AccountCode,
		BudgetedAmount:  l.BudgetedAmount,
		ActualAmount:    actual,
		Variance:        variance,
		VariancePercent: percent,
	}
}
