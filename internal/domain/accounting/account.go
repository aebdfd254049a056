package accounting

import (
	"fmt"
	"regexp"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType classifies a GL account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// NormalBalance returns the side on which accounts of this type increase
func (t AccountType) NormalBalance() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// BalanceSide is one of the two sides of a double-entry posting
type BalanceSide string

const (
	SideDebit  BalanceSide = "DEBIT"
	SideCredit BalanceSide = "CREDIT"
)

// IsValid checks if the side is valid
func (s BalanceSide) IsValid() bool {
	return s == SideDebit || s == SideCredit
}

// Opposite returns the other side
func (s BalanceSide) Opposite() BalanceSide {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// String returns the string representation
func (s BalanceSide) String() string {
	return string(s)
}

var accountCodePattern = regexp.MustCompile(`^[0-9]{3,6}(-[0-9]{1,4})?$`)

// ChartOfAccount represents a GL account aggregate root.
//
// Accounts form a hierarchy through ParentID. Header accounts group child
// accounts for reporting and are never postable: no journal line may target
// them. Balances are not stored on the account - they are computed from
// posted journal lines (optionally through the balance cache).
type ChartOfAccount struct {
	shared.SchoolAggregateRoot
	Code          string      `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_school_code,priority:2"`
	Name          string      `gorm:"type:varchar(200);not null"`
	Type          AccountType `gorm:"type:varchar(20);not null;index"`
	NormalBalance BalanceSide `gorm:"type:varchar(10);not null"`
	ParentID      *uuid.UUID  `gorm:"type:uuid;index"`
	IsHeader      bool        `gorm:"not null;default:false"`
	Active        bool        `gorm:"not null;default:true"`
	Description   string      `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ChartOfAccount) TableName() string {
	return "chart_of_accounts"
}

// NewChartOfAccount creates a new GL account
func NewChartOfAccount(schoolID uuid.UUID, code, name string, accountType AccountType, isHeader bool) (*ChartOfAccount, error) {
	if !accountCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE",
			fmt.Sprintf("account code %q must be numeric, e.g. 1000 or 1000-01", code))
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 200 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE",
			fmt.Sprintf("%q is not a valid account type", accountType))
	}

	acc := &ChartOfAccount{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		NormalBalance:       accountType.NormalBalance(),
		IsHeader:            isHeader,
		Active:              true,
	}

	acc.AddDomainEvent(NewAccountCreatedEvent(acc))

	return acc, nil
}

// SetParent places the account under a parent in the hierarchy.
// The parent must be a header account of the same type.
func (a *ChartOfAccount) SetParent(parent *ChartOfAccount) error {
	if parent == nil {
		a.ParentID = nil
		a.Touch()
		return nil
	}
	if !parent.IsHeader {
		return shared.NewDomainError("INVALID_PARENT", "Parent account must be a header account")
	}
	if parent.Type != a.Type {
		return shared.NewDomainError("INVALID_PARENT",
			fmt.Sprintf("Parent type %s does not match account type %s", parent.Type, a.Type))
	}
	if parent.SchoolID != a.SchoolID {
		return shared.ErrTenantMismatch
	}
	if parent.ID == a.ID {
		return shared.NewDomainError("INVALID_PARENT", "Account cannot be its own parent")
	}
	a.ParentID = &parent.ID
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Rename updates the account name and description
func (a *ChartOfAccount) Rename(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Description = description
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Deactivate retires the account. Deactivated accounts keep their posted
// history but reject new journal lines.
func (a *ChartOfAccount) Deactivate() error {
	if !a.Active {
		return shared.NewDomainError("INVALID_STATE", "Account is already inactive")
	}
	a.Active = false
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Activate re-enables a deactivated account
func (a *ChartOfAccount) Activate() {
	a.Active = true
	a.Touch()
	a.IncrementVersion()
}

// IsPostable reports whether journal lines may target this account
func (a *ChartOfAccount) IsPostable() bool {
	return !a.IsHeader && a.Active
}
