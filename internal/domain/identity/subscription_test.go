package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrial(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewTrialSubscription(uuid.New(), PlanStandard, decimal.NewFromInt(5000), 30)
	require.NoError(t, err)
	return sub
}

func TestNewTrialSubscription(t *testing.T) {
	t.Run("trial window", func(t *testing.T) {
		sub := newTrial(t)
		assert.Equal(t, SubscriptionStatusTrial, sub.Status)
		require.NotNil(t, sub.TrialEndsAt)
		assert.Equal(t, sub.PeriodEnd, *sub.TrialEndsAt)
		assert.True(t, sub.IsUsable(time.Now()))
	})

	t.Run("trial length bounds", func(t *testing.T) {
		_, err := NewTrialSubscription(uuid.New(), PlanStandard, decimal.NewFromInt(5000), 0)
		require.Error(t, err)
		_, err = NewTrialSubscription(uuid.New(), PlanStandard, decimal.NewFromInt(5000), 120)
		require.Error(t, err)
	})

	t.Run("unknown plan rejected", func(t *testing.T) {
		_, err := NewTrialSubscription(uuid.New(), SubscriptionPlan("FREE"), decimal.Zero, 30)
		require.Error(t, err)
	})
}

func TestSubscription_Lifecycle(t *testing.T) {
	t.Run("trial converts on payment", func(t *testing.T) {
		sub := newTrial(t)
		require.NoError(t, sub.Activate("MPESA-XK29"))
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
		assert.NotNil(t, sub.LastPaymentAt)
	})

	t.Run("renewal anchors to the period end", func(t *testing.T) {
		sub := newTrial(t)
		require.NoError(t, sub.Activate("MPESA-XK29"))
		end := sub.PeriodEnd

		require.NoError(t, sub.Renew("MPESA-XK30"))
		assert.Equal(t, end, sub.PeriodStart)
		assert.Equal(t, end.AddDate(0, 1, 0), sub.PeriodEnd)
	})

	t.Run("past due recovers on payment", func(t *testing.T) {
		sub := newTrial(t)
		require.NoError(t, sub.Activate("REF-1"))
		require.NoError(t, sub.MarkPastDue())
		assert.True(t, sub.IsUsable(time.Now()), "grace period keeps access")
		require.NoError(t, sub.Activate("REF-2"))
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
	})

	t.Run("trial cannot go past due", func(t *testing.T) {
		sub := newTrial(t)
		require.Error(t, sub.MarkPastDue())
	})

	t.Run("cancellation keeps access to period end", func(t *testing.T) {
		sub := newTrial(t)
		require.NoError(t, sub.Activate("REF-1"))
		require.NoError(t, sub.Cancel("switching providers"))

		assert.True(t, sub.IsUsable(sub.PeriodEnd.Add(-time.Hour)))
		assert.False(t, sub.IsUsable(sub.PeriodEnd.Add(time.Hour)))
		require.Error(t, sub.Activate("REF-2"), "cancelled is terminal")
	})

	t.Run("expiry requires the period to have lapsed", func(t *testing.T) {
		sub := newTrial(t)
		require.Error(t, sub.Expire(time.Now()))
		require.NoError(t, sub.Expire(sub.PeriodEnd.Add(time.Hour)))
		assert.False(t, sub.IsUsable(time.Now()))
	})

	t.Run("plan change only while trial or active", func(t *testing.T) {
		sub := newTrial(t)
		require.NoError(t, sub.ChangePlan(PlanEnterprise, decimal.NewFromInt(12000)))

		require.NoError(t, sub.Activate("REF-1"))
		require.NoError(t, sub.Cancel("done"))
		require.Error(t, sub.ChangePlan(PlanStarter, decimal.NewFromInt(2000)))
	})
}
