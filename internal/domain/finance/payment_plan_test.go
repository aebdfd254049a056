package finance

import (
	"testing"
	"time"

	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentPlan(t *testing.T) {
	firstDue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("instalments sum exactly to the total", func(t *testing.T) {
		// 10000 / 3 does not divide evenly; the remainder lands on the
		// last instalment.
		plan, err := NewPaymentPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(10000), 3, firstDue)
		require.NoError(t, err)
		require.Len(t, plan.Instalments, 3)

		sum := decimal.Zero
		for _, inst := range plan.Instalments {
			sum = sum.Add(inst.Amount)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(10000)), "sum %s", sum)
		assert.True(t, plan.Instalments[0].Amount.Equal(decimal.NewFromFloat(3333.33)))
		assert.True(t, plan.Instalments[2].Amount.Equal(decimal.NewFromFloat(3333.34)))
	})

	t.Run("due dates are monthly", func(t *testing.T) {
		plan, err := NewPaymentPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(6000), 4, firstDue)
		require.NoError(t, err)
		for i, inst := range plan.Instalments {
			assert.Equal(t, i+1, inst.Sequence)
			assert.Equal(t, firstDue.AddDate(0, i, 0), inst.DueDate)
		}
	})

	t.Run("instalment count bounds", func(t *testing.T) {
		_, err := NewPaymentPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(6000), 1, firstDue)
		require.Error(t, err)

		_, err = NewPaymentPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(6000), 13, firstDue)
		require.Error(t, err)
	})
}

func TestPaymentPlan_Settlement(t *testing.T) {
	firstDue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	newPlan := func(t *testing.T) *PaymentPlan {
		t.Helper()
		plan, err := NewPaymentPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(9000), 3, firstDue)
		require.NoError(t, err)
		return plan
	}

	t.Run("marking paid reduces outstanding", func(t *testing.T) {
		plan := newPlan(t)
		require.NoError(t, plan.MarkInstalmentPaid(1))
		assert.True(t, plan.Outstanding().Equal(decimal.NewFromInt(6000)))

		require.Error(t, plan.MarkInstalmentPaid(1), "double settle")
		require.Error(t, plan.MarkInstalmentPaid(9), "unknown sequence")
	})

	t.Run("overdue flags pending instalments past due", func(t *testing.T) {
		plan := newPlan(t)
		require.NoError(t, plan.MarkInstalmentPaid(1))

		flagged := plan.MarkOverdue(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 1, flagged)
		assert.Equal(t, InstalmentStatusOverdue, plan.Instalments[1].Status)
		assert.Equal(t, InstalmentStatusPending, plan.Instalments[2].Status)

		// Overdue instalments still count as outstanding
		assert.True(t, plan.Outstanding().Equal(decimal.NewFromInt(6000)))
	})
}
