package accounting

import (
	"testing"

	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFixture struct {
	schoolID uuid.UUID
	budget   *Budget
	revenue  *ChartOfAccount
	expense  *ChartOfAccount
}

func newBudgetFixture(t *testing.T) *budgetFixture {
	t.Helper()
	schoolID := uuid.New()

	b, err := NewBudget(schoolID, "FY2026 Budget", uuid.New(), 2026)
	require.NoError(t, err)

	revenue, err := NewChartOfAccount(schoolID, "4100", "Tuition Revenue", AccountTypeRevenue, false)
	require.NoError(t, err)
	expense, err := NewChartOfAccount(schoolID, "5100", "Repairs", AccountTypeExpense, false)
	require.NoError(t, err)

	return &budgetFixture{schoolID: schoolID, budget: b, revenue: revenue, expense: expense}
}

func TestBudget_AddLine(t *testing.T) {
	t.Run("adds revenue and expense lines", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(500000), ""))
		require.NoError(t, f.budget.AddLine(f.expense, valueobject.NewMoneyKESFromFloat(120000), "maintenance"))
		assert.Len(t, f.budget.Lines, 2)
		assert.True(t, f.budget.TotalRevenue().Equal(decimal.NewFromInt(500000)))
		assert.True(t, f.budget.TotalExpense().Equal(decimal.NewFromInt(120000)))
	})

	t.Run("rejects asset accounts", func(t *testing.T) {
		f := newBudgetFixture(t)
		cash, err := NewChartOfAccount(f.schoolID, "1100", "Cash", AccountTypeAsset, false)
		require.NoError(t, err)
		require.Error(t, f.budget.AddLine(cash, valueobject.NewMoneyKESFromFloat(100), ""))
	})

	t.Run("rejects duplicate account lines", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(100), ""))
		require.Error(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(200), ""))
	})

	t.Run("rejects lines after approval", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(100), ""))
		require.NoError(t, f.budget.Approve(uuid.New()))
		require.Error(t, f.budget.AddLine(f.expense, valueobject.NewMoneyKESFromFloat(100), ""))
	})
}

func TestBudget_Approve(t *testing.T) {
	userID := uuid.New()

	t.Run("approves draft with lines", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(100), ""))
		require.NoError(t, f.budget.Approve(userID))
		assert.Equal(t, BudgetStatusActive, f.budget.Status)
		require.NotNil(t, f.budget.ApprovedBy)
		assert.Equal(t, userID, *f.budget.ApprovedBy)
		assert.NotNil(t, f.budget.ApprovedAt)
	})

	t.Run("rejects empty budget", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.Error(t, f.budget.Approve(userID))
	})

	t.Run("approve is only legal from draft", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.revenue, valueobject.NewMoneyKESFromFloat(100), ""))
		require.NoError(t, f.budget.Approve(userID))
		require.Error(t, f.budget.Approve(userID))
	})
}

func TestBudget_ReviseLine(t *testing.T) {
	userID := uuid.New()

	t.Run("records the amendment trail", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.expense, valueobject.NewMoneyKESFromFloat(100000), ""))
		require.NoError(t, f.budget.Approve(userID))

		require.NoError(t, f.budget.ReviseLine(f.expense.ID, valueobject.NewMoneyKESFromFloat(150000), "roof repairs", userID))
		require.Len(t, f.budget.Revisions, 1)
		rev := f.budget.Revisions[0]
		assert.True(t, rev.PreviousAmount.Equal(decimal.NewFromInt(100000)))
		assert.True(t, rev.NewAmount.Equal(decimal.NewFromInt(150000)))
		assert.Equal(t, "roof repairs", rev.Reason)
		assert.True(t, f.budget.Lines[0].BudgetedAmount.Equal(decimal.NewFromInt(150000)))
	})

	t.Run("requires reason and known account", func(t *testing.T) {
		f := newBudgetFixture(t)
		require.NoError(t, f.budget.AddLine(f.expense, valueobject.NewMoneyKESFromFloat(100), ""))
		require.Error(t, f.budget.ReviseLine(f.expense.ID, valueobject.NewMoneyKESFromFloat(200), "", userID))
		require.Error(t, f.budget.ReviseLine(uuid.New(), valueobject.NewMoneyKESFromFloat(200), "reason", userID))
	})
}

func TestBudgetLine_ComputeVariance(t *testing.T) {
	line := BudgetLine{
		ID:             uuid.New(),
		AccountID:      uuid.New(),
		AccountCode:    "5100",
		AccountType:    AccountTypeExpense,
		BudgetedAmount: decimal.NewFromInt(1000),
	}

	t.Run("under budget", func(t *testing.T) {
		v := line.ComputeVariance(decimal.NewFromInt(800))
		assert.True(t, v.Variance.Equal(decimal.NewFromInt(200)))
		assert.True(t, v.VariancePercent.Equal(decimal.NewFromInt(20)))
	})

	t.Run("over budget is negative", func(t *testing.T) {
		v := line.ComputeVariance(decimal.NewFromInt(1250))
		assert.True(t, v.Variance.Equal(decimal.NewFromInt(-250)))
		assert.True(t, v.VariancePercent.Equal(decimal.NewFromInt(-25)))
	})

	t.Run("zero budget guards the divide", func(t *testing.T) {
		zero := BudgetLine{BudgetedAmount: decimal.Zero}
		v := zero.ComputeVariance(decimal.NewFromInt(500))
		assert.True(t, v.VariancePercent.IsZero())
		assert.True(t, v.Variance.Equal(decimal.NewFromInt(-500)))
	})
}
