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

func newDraftInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "INV-2026-00001", uuid.New(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

func issuedInvoice(t *testing.T, amount float64) *Invoice {
	t.Helper()
	inv := newDraftInvoice(t)
	require.NoError(t, inv.AddItem("Term 1 tuition", decimal.NewFromInt(1),
		decimal.NewFromFloat(amount), decimal.Zero, decimal.Zero))
	require.NoError(t, inv.Issue(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	return inv
}

func TestInvoiceItem_Compute(t *testing.T) {
	t.Run("computes net, tax and total", func(t *testing.T) {
		item := InvoiceItem{
			Quantity:  decimal.NewFromInt(3),
			UnitPrice: decimal.NewFromInt(500),
			Discount:  decimal.NewFromInt(100),
			TaxRate:   decimal.NewFromFloat(0.16),
		}
		item.Compute()
		assert.True(t, item.NetAmount.Equal(decimal.NewFromInt(1400)), "net %s", item.NetAmount)
		assert.True(t, item.TaxAmount.Equal(decimal.NewFromInt(224)), "tax %s", item.TaxAmount)
		assert.True(t, item.Total.Equal(decimal.NewFromInt(1624)), "total %s", item.Total)
	})

	t.Run("is idempotent", func(t *testing.T) {
		item := InvoiceItem{
			Quantity:  decimal.NewFromFloat(2.5),
			UnitPrice: decimal.NewFromFloat(333.33),
			Discount:  decimal.NewFromFloat(13.37),
			TaxRate:   decimal.NewFromFloat(0.16),
		}
		item.Compute()
		total, tax, net := item.Total, item.TaxAmount, item.NetAmount
		item.Compute()
		assert.True(t, item.Total.Equal(total))
		assert.True(t, item.TaxAmount.Equal(tax))
		assert.True(t, item.NetAmount.Equal(net))
	})

	t.Run("discount larger than gross floors net at zero", func(t *testing.T) {
		item := InvoiceItem{
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(100),
			Discount:  decimal.NewFromInt(150),
			TaxRate:   decimal.NewFromFloat(0.16),
		}
		item.Compute()
		assert.True(t, item.NetAmount.IsZero())
		assert.True(t, item.Total.IsZero())
	})
}

func TestInvoice_AddItemAndIssue(t *testing.T) {
	t.Run("rolls item totals up to the header", func(t *testing.T) {
		inv := newDraftInvoice(t)
		require.NoError(t, inv.AddItem("Tuition", decimal.NewFromInt(1), decimal.NewFromInt(30000), decimal.Zero, decimal.Zero))
		require.NoError(t, inv.AddItem("Transport", decimal.NewFromInt(1), decimal.NewFromInt(5000), decimal.Zero, decimal.NewFromFloat(0.16)))

		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(35800)), "total %s", inv.TotalAmount)
		assert.True(t, inv.TaxTotal.Equal(decimal.NewFromInt(800)))
	})

	t.Run("cannot issue an empty invoice", func(t *testing.T) {
		inv := newDraftInvoice(t)
		require.Error(t, inv.Issue(time.Now()))
	})

	t.Run("issue transitions draft to issued", func(t *testing.T) {
		inv := issuedInvoice(t, 20000)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.NotNil(t, inv.IssueDate)
		require.Error(t, inv.Issue(time.Now()), "double issue")
	})

	t.Run("items are frozen after issue", func(t *testing.T) {
		inv := issuedInvoice(t, 20000)
		require.Error(t, inv.AddItem("Late fee", decimal.NewFromInt(1), decimal.NewFromInt(500), decimal.Zero, decimal.Zero))
	})
}

func TestInvoice_Payments(t *testing.T) {
	t.Run("partial then full settlement", func(t *testing.T) {
		inv := issuedInvoice(t, 10000)

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(4000)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.AmountDue().Equal(decimal.NewFromInt(6000)))

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(6000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.AmountDue().IsZero())
	})

	t.Run("instalments accumulate across several partial payments", func(t *testing.T) {
		inv := issuedInvoice(t, 10000)

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(4000)))
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(3000)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(7000)))
		assert.True(t, inv.AmountDue().Equal(decimal.NewFromInt(3000)))

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(3000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.AmountDue().IsZero())
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		inv := issuedInvoice(t, 10000)
		require.Error(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(10001)))
	})

	t.Run("rejected payment leaves paid amount untouched", func(t *testing.T) {
		inv := issuedInvoice(t, 10000)
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(4000)))

		require.Error(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(7000)))
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(4000)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("payments require an issued invoice", func(t *testing.T) {
		inv := newDraftInvoice(t)
		require.Error(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(100)))
	})

	t.Run("credit note settles remaining balance", func(t *testing.T) {
		inv := issuedInvoice(t, 10000)
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(7500)))
		require.NoError(t, inv.ApplyCredit(valueobject.NewMoneyKESFromFloat(2500)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("credit larger than balance is rejected", func(t *testing.T) {
		inv := issuedInvoice(t, 1000)
		require.Error(t, inv.ApplyCredit(valueobject.NewMoneyKESFromFloat(1500)))
	})
}

func TestInvoice_Cancel(t *testing.T) {
	t.Run("cancel from draft and issued", func(t *testing.T) {
		draft := newDraftInvoice(t)
		require.NoError(t, draft.Cancel("entered in error"))
		assert.Equal(t, InvoiceStatusCancelled, draft.Status)

		issued := issuedInvoice(t, 1000)
		require.NoError(t, issued.Cancel("student withdrew before term"))
	})

	t.Run("cannot cancel once paid against", func(t *testing.T) {
		inv := issuedInvoice(t, 1000)
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyKESFromFloat(200)))
		require.Error(t, inv.Cancel("too late"))
	})

	t.Run("requires a reason", func(t *testing.T) {
		inv := newDraftInvoice(t)
		require.Error(t, inv.Cancel(""))
	})
}
