package finance

import (
	"context"
	"testing"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func issuedInvoiceFixture(t *testing.T, schoolID uuid.UUID) *finance.Invoice {
	t.Helper()
	invoice, err := finance.NewInvoice(schoolID, "INV-2026-00031", uuid.New(),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, invoice.AddItem("Term 1 tuition", decimal.NewFromInt(1), decimal.NewFromInt(30000), decimal.Zero, decimal.Zero))
	require.NoError(t, invoice.Issue(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	invoice.ClearDomainEvents()
	return invoice
}

func pendingPaymentFixture(t *testing.T, schoolID uuid.UUID, invoice *finance.Invoice, amount int64) *finance.Payment {
	t.Helper()
	payment, err := finance.NewPayment(schoolID, "PAY-2026-00055", invoice.ID, invoice.StudentID,
		valueobject.NewMoneyKES(decimal.NewFromInt(amount)), finance.PaymentMethodMpesa, "RKT4X91QZP",
		time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	payment.ClearDomainEvents()
	return payment
}

func newPaymentService() (*PaymentService, *MockPaymentRepository, *MockInvoiceRepository, *MockCreditNoteRepository, *MockAccountRepository, *MockJournalRepository, *MockPeriodRepository, *MockPostingRuleSetRepository) {
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	creditNoteRepo := new(MockCreditNoteRepository)
	accountRepo := new(MockAccountRepository)
	journalRepo := new(MockJournalRepository)
	periodRepo := new(MockPeriodRepository)
	rulesRepo := new(MockPostingRuleSetRepository)
	svc := NewPaymentService(paymentRepo, invoiceRepo, creditNoteRepo, accountRepo, journalRepo, periodRepo, rulesRepo, noopPublisher{})
	return svc, paymentRepo, invoiceRepo, creditNoteRepo, accountRepo, journalRepo, periodRepo, rulesRepo
}

func expectCashReceivableAccounts(t *testing.T, accountRepo *MockAccountRepository, schoolID uuid.UUID) {
	t.Helper()
	accountRepo.On("FindByCode", mock.Anything, schoolID, "1100").
		Return(glAccount(t, schoolID, "1100", "Cash at Bank", accounting.AccountTypeAsset), nil)
	accountRepo.On("FindByCode", mock.Anything, schoolID, "1200").
		Return(glAccount(t, schoolID, "1200", "Fees Receivable", accounting.AccountTypeAsset), nil)
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	schoolID := uuid.New()
	teller := uuid.New()

	t.Run("confirmation applies to invoice and posts cash", func(t *testing.T) {
		svc, paymentRepo, invoiceRepo, _, accountRepo, journalRepo, periodRepo, rulesRepo := newPaymentService()
		invoice := issuedInvoiceFixture(t, schoolID)
		payment := pendingPaymentFixture(t, schoolID, invoice, 10000)

		paymentRepo.On("FindByIDForSchool", mock.Anything, schoolID, payment.ID).Return(payment, nil)
		invoiceRepo.On("FindByIDForSchool", mock.Anything, schoolID, invoice.ID).Return(invoice, nil)
		rulesRepo.On("FindForSchool", mock.Anything, schoolID).Return(nil, nil)
		journalRepo.On("GenerateEntryNumber", mock.Anything, schoolID, accounting.JournalTypeSystem).Return("SY-2026-00088", nil)
		expectCashReceivableAccounts(t, accountRepo, schoolID)
		periodRepo.On("FindByDate", mock.Anything, schoolID, payment.ReceivedAt).Return(wideOpenPeriod(t, schoolID), nil)

		var posted *accounting.JournalEntry
		journalRepo.On("Save", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry")).
			Run(func(args mock.Arguments) { posted = args.Get(1).(*accounting.JournalEntry) }).Return(nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		paymentRepo.On("Save", mock.Anything, payment).Return(nil)

		resp, err := svc.ConfirmPayment(context.Background(), schoolID, payment.ID, teller)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Status)
		assert.Equal(t, finance.InvoiceStatusPartiallyPaid, invoice.Status)
		assert.True(t, invoice.AmountDue().Equal(decimal.NewFromInt(20000)))

		require.NotNil(t, posted)
		assert.True(t, posted.IsBalanced())
		assert.Equal(t, "PAYMENT", posted.SourceType)
		assert.Equal(t, "1100", posted.Lines[0].AccountCode)
		assert.Equal(t, accounting.SideDebit, posted.Lines[0].Side)
	})

	t.Run("overpayment leaves the payment unconfirmed in storage", func(t *testing.T) {
		svc, paymentRepo, invoiceRepo, _, _, _, _, _ := newPaymentService()
		invoice := issuedInvoiceFixture(t, schoolID)
		payment := pendingPaymentFixture(t, schoolID, invoice, 50000)

		paymentRepo.On("FindByIDForSchool", mock.Anything, schoolID, payment.ID).Return(payment, nil)
		invoiceRepo.On("FindByIDForSchool", mock.Anything, schoolID, invoice.ID).Return(invoice, nil)

		_, err := svc.ConfirmPayment(context.Background(), schoolID, payment.ID, teller)
		require.Error(t, err)
		assert.Equal(t, "OVERPAYMENT", err.(*shared.DomainError).Code)
		paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("a confirmed payment cannot be confirmed again", func(t *testing.T) {
		svc, paymentRepo, invoiceRepo, _, _, _, _, _ := newPaymentService()
		invoice := issuedInvoiceFixture(t, schoolID)
		payment := pendingPaymentFixture(t, schoolID, invoice, 10000)
		require.NoError(t, payment.Confirm(teller))
		payment.ClearDomainEvents()

		paymentRepo.On("FindByIDForSchool", mock.Anything, schoolID, payment.ID).Return(payment, nil)
		invoiceRepo.On("FindByIDForSchool", mock.Anything, schoolID, invoice.ID).Return(invoice, nil)

		_, err := svc.ConfirmPayment(context.Background(), schoolID, payment.ID, teller)
		require.Error(t, err)
	})
}

func TestPaymentService_IssueCreditNote(t *testing.T) {
	schoolID := uuid.New()
	bursar := uuid.New()

	t.Run("credit reduces the balance and reverses revenue", func(t *testing.T) {
		svc, _, invoiceRepo, creditNoteRepo, accountRepo, journalRepo, periodRepo, rulesRepo := newPaymentService()
		invoice := issuedInvoiceFixture(t, schoolID)

		invoiceRepo.On("FindByIDForSchool", mock.Anything, schoolID, invoice.ID).Return(invoice, nil)
		creditNoteRepo.On("GenerateCreditNoteNumber", mock.Anything, schoolID).Return("CN-2026-00003", nil)
		rulesRepo.On("FindForSchool", mock.Anything, schoolID).Return(nil, nil)
		journalRepo.On("GenerateEntryNumber", mock.Anything, schoolID, accounting.JournalTypeSystem).Return("SY-2026-00090", nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "4100").
			Return(glAccount(t, schoolID, "4100", "Tuition Revenue", accounting.AccountTypeRevenue), nil)
		accountRepo.On("FindByCode", mock.Anything, schoolID, "1200").
			Return(glAccount(t, schoolID, "1200", "Fees Receivable", accounting.AccountTypeAsset), nil)
		periodRepo.On("FindByDate", mock.Anything, schoolID, mock.AnythingOfType("time.Time")).Return(wideOpenPeriod(t, schoolID), nil)

		var posted *accounting.JournalEntry
		journalRepo.On("Save", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry")).
			Run(func(args mock.Arguments) { posted = args.Get(1).(*accounting.JournalEntry) }).Return(nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
		creditNoteRepo.On("Save", mock.Anything, mock.AnythingOfType("*finance.CreditNote")).Return(nil)

		resp, err := svc.IssueCreditNote(context.Background(), schoolID, bursar, IssueCreditNoteRequest{
			InvoiceID: invoice.ID,
			Amount:    decimal.NewFromInt(5000),
			Reason:    "bursary award",
		})
		require.NoError(t, err)
		assert.Equal(t, "CN-2026-00003", resp.CreditNoteNumber)
		assert.True(t, invoice.AmountDue().Equal(decimal.NewFromInt(25000)))

		require.NotNil(t, posted)
		assert.Equal(t, "4100", posted.Lines[0].AccountCode)
		assert.Equal(t, accounting.SideDebit, posted.Lines[0].Side)
	})

	t.Run("credit beyond the amount due is rejected", func(t *testing.T) {
		svc, _, invoiceRepo, _, _, _, _, _ := newPaymentService()
		invoice := issuedInvoiceFixture(t, schoolID)
		invoiceRepo.On("FindByIDForSchool", mock.Anything, schoolID, invoice.ID).Return(invoice, nil)

		_, err := svc.IssueCreditNote(context.Background(), schoolID, bursar, IssueCreditNoteRequest{
			InvoiceID: invoice.ID,
			Amount:    decimal.NewFromInt(31000),
			Reason:    "too much",
		})
		require.Error(t, err)
		assert.Equal(t, "OVERCREDIT", err.(*shared.DomainError).Code)
	})
}
