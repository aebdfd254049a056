package persistence

import (
	"context"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantSeeder provisions a new school's accounting defaults: the standard
// chart of accounts and the posting rule set wired to it. Runs once at
// school registration inside a single transaction.
type TenantSeeder struct {
	db *gorm.DB
}

// NewTenantSeeder creates a new TenantSeeder
func NewTenantSeeder(db *gorm.DB) *TenantSeeder {
	return &TenantSeeder{db: db}
}

type accountSeed struct {
	code       string
	name       string
	accType    accounting.AccountType
	isHeader   bool
	parentCode string
}

// defaultChartOfAccounts is the starter chart every school receives. The
// postable codes referenced by DefaultPostingRules (1100, 1200, 1300,
// 2100, 2200, 4100, 5900) must all be present.
var defaultChartOfAccounts = []accountSeed{
	{"1000", "Assets", accounting.AccountTypeAsset, true, ""},
	{"1100", "Cash and Bank", accounting.AccountTypeAsset, false, "1000"},
	{"1200", "Fees Receivable", accounting.AccountTypeAsset, false, "1000"},
	{"1300", "Input VAT", accounting.AccountTypeAsset, false, "1000"},
	{"2000", "Liabilities", accounting.AccountTypeLiability, true, ""},
	{"2100", "Accounts Payable", accounting.AccountTypeLiability, false, "2000"},
	{"2200", "VAT Payable", accounting.AccountTypeLiability, false, "2000"},
	{"3000", "Equity", accounting.AccountTypeEquity, true, ""},
	{"3100", "Retained Earnings", accounting.AccountTypeEquity, false, "3000"},
	{"4000", "Revenue", accounting.AccountTypeRevenue, true, ""},
	{"4100", "Tuition Fees", accounting.AccountTypeRevenue, false, "4000"},
	{"4200", "Other Income", accounting.AccountTypeRevenue, false, "4000"},
	{"5000", "Expenses", accounting.AccountTypeExpense, true, ""},
	{"5100", "Salaries and Wages", accounting.AccountTypeExpense, false, "5000"},
	{"5200", "Utilities", accounting.AccountTypeExpense, false, "5000"},
	{"5300", "Teaching Materials", accounting.AccountTypeExpense, false, "5000"},
	{"5400", "Repairs and Maintenance", accounting.AccountTypeExpense, false, "5000"},
	{"5500", "Transport", accounting.AccountTypeExpense, false, "5000"},
	{"5900", "General Expenses", accounting.AccountTypeExpense, false, "5000"},
}

// SeedDefaults creates the default chart of accounts and posting rules for
// a newly registered school
func (s *TenantSeeder) SeedDefaults(ctx context.Context, schoolID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byCode := make(map[string]*accounting.ChartOfAccount, len(defaultChartOfAccounts))

		for _, seed := range defaultChartOfAccounts {
			account, err := accounting.NewChartOfAccount(schoolID, seed.code, seed.name, seed.accType, seed.isHeader)
			if err != nil {
				return err
			}
			if seed.parentCode != "" {
				if err := account.SetParent(byCode[seed.parentCode]); err != nil {
					return err
				}
			}
			if err := tx.Save(account).Error; err != nil {
				return err
			}
			byCode[seed.code] = account
		}

		return tx.Save(finance.DefaultPostingRules(schoolID)).Error
	})
}
