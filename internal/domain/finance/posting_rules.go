package finance

import (
	"encoding/json"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PostingRuleSet names the GL account codes each finance workflow posts
// against. Every school gets the seeded defaults on registration and can
// remap codes to its own chart of accounts.
type PostingRuleSet struct {
	shared.SchoolAggregateRoot
	CashAccount          string `gorm:"type:varchar(20);not null"` // Debited on confirmed payments
	ReceivableAccount    string `gorm:"type:varchar(20);not null"` // Debited on invoice issue
	TuitionRevenue       string `gorm:"type:varchar(20);not null"` // Credited on invoice issue
	TaxPayableAccount    string `gorm:"type:varchar(20);not null"` // Credited with invoice VAT
	PayableAccount       string `gorm:"type:varchar(20);not null"` // Credited on expense approval
	DefaultExpense       string `gorm:"type:varchar(20);not null"` // Debited on expense approval without override
	ExpenseTaxAccount    string `gorm:"type:varchar(20);not null"` // Debited with expense VAT
	CategoryOverridesRaw string `gorm:"type:text"`                 // JSON map of ExpenseCategory -> account code
}

// TableName returns the table name for GORM
func (PostingRuleSet) TableName() string {
	return "posting_rule_sets"
}

// DefaultPostingRules returns the seeded rule set wired to the default
// chart of accounts created for a new school
func DefaultPostingRules(schoolID uuid.UUID) *PostingRuleSet {
	return &PostingRuleSet{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		CashAccount:         "1100",
		ReceivableAccount:   "1200",
		TuitionRevenue:      "4100",
		TaxPayableAccount:   "2200",
		PayableAccount:      "2100",
		DefaultExpense:      "5900",
		ExpenseTaxAccount:   "1300",
	}
}

// ExpenseAccountFor resolves the expense account code for a category,
// falling back to the default expense account
func (r *PostingRuleSet) ExpenseAccountFor(category ExpenseCategory) string {
	if r.CategoryOverridesRaw != "" {
		overrides := make(map[ExpenseCategory]string)
		if err := json.Unmarshal([]byte(r.CategoryOverridesRaw), &overrides); err == nil {
			if code, ok := overrides[category]; ok && code != "" {
				return code
			}
		}
	}
	return r.DefaultExpense
}

// SetCategoryOverride maps an expense category to a specific account code
func (r *PostingRuleSet) SetCategoryOverride(category ExpenseCategory, accountCode string) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if accountCode == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}

	overrides := make(map[ExpenseCategory]string)
	if r.CategoryOverridesRaw != "" {
		if err := json.Unmarshal([]byte(r.CategoryOverridesRaw), &overrides); err != nil {
			return shared.NewDomainError("INVALID_OVERRIDES", "Stored category overrides are corrupt")
		}
	}
	overrides[category] = accountCode

	raw, err := json.Marshal(overrides)
	if err != nil {
		return shared.NewDomainError("INVALID_OVERRIDES", "Failed to encode category overrides")
	}
	r.CategoryOverridesRaw = string(raw)
	r.Touch()
	r.IncrementVersion()
	return nil
}
