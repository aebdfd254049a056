package finance

import (
	"testing"
	"time"

	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(t *testing.T, amount float64) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), "PAY-2026-00001", uuid.New(), uuid.New(),
		valueobject.NewMoneyKESFromFloat(amount), PaymentMethodMpesa, "RKT4X91QZP", time.Now())
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("valid payment starts pending", func(t *testing.T) {
		p := newPendingPayment(t, 15000)
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Equal(t, PaymentMethodMpesa, p.Method)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "PAY-2026-00002", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(100), PaymentMethod("BARTER"), "", time.Now())
		require.Error(t, err)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "PAY-2026-00003", uuid.New(), uuid.New(),
			valueobject.ZeroKES(), PaymentMethodCash, "", time.Now())
		require.Error(t, err)
	})
}

func TestPayment_Confirm(t *testing.T) {
	t.Run("pending payment can be confirmed once", func(t *testing.T) {
		p := newPendingPayment(t, 15000)
		confirmer := uuid.New()

		require.NoError(t, p.Confirm(confirmer))
		assert.Equal(t, PaymentStatusConfirmed, p.Status)
		require.NotNil(t, p.ConfirmedBy)
		assert.Equal(t, confirmer, *p.ConfirmedBy)
		assert.NotNil(t, p.ConfirmedAt)

		require.Error(t, p.Confirm(confirmer), "second confirm")
	})

	t.Run("voided payment cannot be confirmed", func(t *testing.T) {
		p := newPendingPayment(t, 15000)
		require.NoError(t, p.Void("duplicate entry"))
		require.Error(t, p.Confirm(uuid.New()))
	})
}

func TestPayment_Void(t *testing.T) {
	t.Run("void requires a reason", func(t *testing.T) {
		p := newPendingPayment(t, 500)
		require.Error(t, p.Void(""))
	})

	t.Run("confirmed payment cannot be voided", func(t *testing.T) {
		p := newPendingPayment(t, 500)
		require.NoError(t, p.Confirm(uuid.New()))
		require.Error(t, p.Void("too late"))
	})
}

func TestNewCreditNote(t *testing.T) {
	t.Run("valid credit note", func(t *testing.T) {
		cn, err := NewCreditNote(uuid.New(), "CN-2026-00001", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(2500), "Withdrew mid-term", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "Withdrew mid-term", cn.Reason)
	})

	t.Run("reason is required", func(t *testing.T) {
		_, err := NewCreditNote(uuid.New(), "CN-2026-00002", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(2500), "", uuid.New())
		require.Error(t, err)
	})
}
