package finance

import (
	"context"
	"testing"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func glAccount(t *testing.T, schoolID uuid.UUID, code, name string, accountType accounting.AccountType) *accounting.ChartOfAccount {
	t.Helper()
	account, err := accounting.NewChartOfAccount(schoolID, code, name, accountType, false)
	require.NoError(t, err)
	return account
}

func wideOpenPeriod(t *testing.T, schoolID uuid.UUID) *accounting.AccountingPeriod {
	t.Helper()
	period, err := accounting.NewAccountingPeriod(schoolID, 2026, 1, "FY2026",
		time.Now().AddDate(-1, 0, 0), time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)
	return period
}

func submittedExpense(t *testing.T, schoolID uuid.UUID) *finance.Expense {
	t.Helper()
	expense, err := finance.NewExpense(schoolID, "EXP-2026-00007", finance.ExpenseCategoryUtilities,
		"KPLC electricity March", valueobject.NewMoneyKESFromFloat(12000), valueobject.NewMoneyKESFromFloat(1920),
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, expense.Submit(uuid.New()))
	expense.ClearDomainEvents()
	return expense
}

func TestExpenseService_ApproveExpense(t *testing.T) {
	schoolID := uuid.New()
	approver := uuid.New()

	newService := func() (*ExpenseService, *MockExpenseRepository, *MockAccountRepository, *MockJournalRepository, *MockPeriodRepository, *MockPostingRuleSetRepository) {
		expenseRepo := new(MockExpenseRepository)
		accountRepo := new(MockAccountRepository)
		journalRepo := new(MockJournalRepository)
		periodRepo := new(MockPeriodRepository)
		rulesRepo := new(MockPostingRuleSetRepository)
		svc := NewExpenseService(expenseRepo, accountRepo, journalRepo, periodRepo, rulesRepo, noopPublisher{})
		return svc, expenseRepo, accountRepo, journalRepo, periodRepo, rulesRepo
	}

	t.Run("approval posts expense and tax against payables", func(t *testing.T) {
		svc, expenseRepo, accountRepo, journalRepo, periodRepo, rulesRepo := newService()
		expense := submittedExpense(t, schoolID)

		expenseRepo.On("FindByIDForSchool", mock.Anything, schoolID, expense.ID).Return(expense, nil)
		rulesRepo.On("FindForSchool", mock.Anything, schoolID).Return(nil, nil)
		journalRepo.On("GenerateEntryNumber", mock.Anything, schoolID, accounting.JournalTypeSystem).Return("SY-2026-00042", nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "5900").
			Return(glAccount(t, schoolID, "5900", "General Expenses", accounting.AccountTypeExpense), nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "1300").
			Return(glAccount(t, schoolID, "1300", "VAT Receivable", accounting.AccountTypeAsset), nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "2100").
			Return(glAccount(t, schoolID, "2100", "Accounts Payable", accounting.AccountTypeLiability), nil)
		periodRepo.On("FindByDate", mock.Anything, schoolID, mock.AnythingOfType("time.Time")).Return(wideOpenPeriod(t, schoolID), nil)

		var posted *accounting.JournalEntry
		journalRepo.On("Save", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry")).
			Run(func(args mock.Arguments) { posted = args.Get(1).(*accounting.JournalEntry) }).Return(nil)
		expenseRepo.On("Save", mock.Anything, expense).Return(nil)

		resp, err := svc.ApproveExpense(context.Background(), schoolID, expense.ID, approver)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		require.NotNil(t, resp.JournalEntryID)

		require.NotNil(t, posted)
		assert.True(t, posted.IsBalanced())
		require.Len(t, posted.Lines, 3)
		assert.True(t, posted.TotalDebit().Equal(decimal.NewFromInt(13920)))
		assert.Equal(t, "EXPENSE", posted.SourceType)
	})

	t.Run("a GL account override redirects the expense debit", func(t *testing.T) {
		svc, expenseRepo, accountRepo, journalRepo, periodRepo, rulesRepo := newService()
		expense := submittedExpense(t, schoolID)
		override := glAccount(t, schoolID, "5150", "Electricity", accounting.AccountTypeExpense)
		require.NoError(t, expense.SetGLAccount(override.ID))

		expenseRepo.On("FindByIDForSchool", mock.Anything, schoolID, expense.ID).Return(expense, nil)
		rulesRepo.On("FindForSchool", mock.Anything, schoolID).Return(nil, nil)
		accountRepo.On("FindByIDForSchool", mock.Anything, schoolID, override.ID).Return(override, nil)
		journalRepo.On("GenerateEntryNumber", mock.Anything, schoolID, accounting.JournalTypeSystem).Return("SY-2026-00043", nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "5150").Return(override, nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "1300").
			Return(glAccount(t, schoolID, "1300", "VAT Receivable", accounting.AccountTypeAsset), nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "2100").
			Return(glAccount(t, schoolID, "2100", "Accounts Payable", accounting.AccountTypeLiability), nil)
		periodRepo.On("FindByDate", mock.Anything, schoolID, mock.AnythingOfType("time.Time")).Return(wideOpenPeriod(t, schoolID), nil)

		var posted *accounting.JournalEntry
		journalRepo.On("Save", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry")).
			Run(func(args mock.Arguments) { posted = args.Get(1).(*accounting.JournalEntry) }).Return(nil)
		expenseRepo.On("Save", mock.Anything, expense).Return(nil)

		_, err := svc.ApproveExpense(context.Background(), schoolID, expense.ID, approver)
		require.NoError(t, err)
		require.NotNil(t, posted)
		assert.Equal(t, "5150", posted.Lines[0].AccountCode)
	})

	t.Run("only submitted expenses can be approved", func(t *testing.T) {
		svc, expenseRepo, _, _, _, _ := newService()
		draft, err := finance.NewExpense(schoolID, "EXP-2026-00008", finance.ExpenseCategorySupplies,
			"Chalk and exercise books", valueobject.NewMoneyKESFromFloat(3000), valueobject.ZeroKES(), time.Now())
		require.NoError(t, err)
		draft.ClearDomainEvents()

		expenseRepo.On("FindByIDForSchool", mock.Anything, schoolID, draft.ID).Return(draft, nil)

		_, err = svc.ApproveExpense(context.Background(), schoolID, draft.ID, approver)
		require.Error(t, err)
		assert.Equal(t, finance.ExpenseStatusDraft, draft.Status)
	})
}
