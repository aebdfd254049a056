package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/school"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByExpenseNumber(ctx context.Context, schoolID uuid.UUID, expenseNumber string) (*finance.Expense, error) {
	args := m.Called(ctx, schoolID, expenseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) GenerateExpenseNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	args := m.Called(ctx, schoolID)
	return args.String(0), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	args := m.Called(ctx, schoolID, id)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, schoolID uuid.UUID, invoiceNumber string) (*finance.Invoice, error) {
	args := m.Called(ctx, schoolID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStudent(ctx context.Context, schoolID, studentID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	args := m.Called(ctx, schoolID, studentID, filter)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	args := m.Called(ctx, schoolID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, schoolID uuid.UUID, reference string) (*finance.Payment, error) {
	args := m.Called(ctx, schoolID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	args := m.Called(ctx, schoolID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) ([]finance.CreditNote, error) {
	args := m.Called(ctx, schoolID, invoiceID)
	return args.Get(0).([]finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) GenerateCreditNoteNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	args := m.Called(ctx, schoolID)
	return args.String(0), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

type MockPostingRuleSetRepository struct {
	mock.Mock
}

func (m *MockPostingRuleSetRepository) FindForSchool(ctx context.Context, schoolID uuid.UUID) (*finance.PostingRuleSet, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PostingRuleSet), args.Error(1)
}

func (m *MockPostingRuleSetRepository) Save(ctx context.Context, rules *finance.PostingRuleSet) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

type MockStudentDiscountRepository struct {
	mock.Mock
}

func (m *MockStudentDiscountRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.StudentDiscount, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.StudentDiscount), args.Error(1)
}

func (m *MockStudentDiscountRepository) FindActiveByStudent(ctx context.Context, schoolID, studentID uuid.UUID) ([]finance.StudentDiscount, error) {
	args := m.Called(ctx, schoolID, studentID)
	return args.Get(0).([]finance.StudentDiscount), args.Error(1)
}

func (m *MockStudentDiscountRepository) Save(ctx context.Context, discount *finance.StudentDiscount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*school.Student, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByAdmissionNumber(ctx context.Context, schoolID uuid.UUID, admissionNumber string) (*school.Student, error) {
	args := m.Called(ctx, schoolID, admissionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter school.StudentFilter) ([]school.Student, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]school.Student), args.Error(1)
}

func (m *MockStudentRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter school.StudentFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) Save(ctx context.Context, student *school.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	args := m.Called(ctx, schoolID, id)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.ChartOfAccount, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ChartOfAccount), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*accounting.ChartOfAccount, error) {
	args := m.Called(ctx, schoolID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.ChartOfAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.AccountFilter) ([]accounting.ChartOfAccount, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]accounting.ChartOfAccount), args.Error(1)
}

func (m *MockAccountRepository) FindChildren(ctx context.Context, schoolID, parentID uuid.UUID) ([]accounting.ChartOfAccount, error) {
	args := m.Called(ctx, schoolID, parentID)
	return args.Get(0).([]accounting.ChartOfAccount), args.Error(1)
}

func (m *MockAccountRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.AccountFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *accounting.ChartOfAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	args := m.Called(ctx, schoolID, id)
	return args.Error(0)
}

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindByEntryNumber(ctx context.Context, schoolID uuid.UUID, entryNumber string) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, schoolID, entryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindBySource(ctx context.Context, schoolID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, schoolID, sourceType, sourceID)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindReversalOf(ctx context.Context, schoolID, journalID uuid.UUID) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, schoolID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.JournalFilter) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.JournalFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) SumPostedByAccount(ctx context.Context, schoolID uuid.UUID, accountIDs []uuid.UUID, from, to time.Time) ([]accounting.AccountBalance, error) {
	args := m.Called(ctx, schoolID, accountIDs, from, to)
	return args.Get(0).([]accounting.AccountBalance), args.Error(1)
}

func (m *MockJournalRepository) GenerateEntryNumber(ctx context.Context, schoolID uuid.UUID, journalType accounting.JournalType) (string, error) {
	args := m.Called(ctx, schoolID, journalType)
	return args.String(0), args.Error(1)
}

func (m *MockJournalRepository) Save(ctx context.Context, entry *accounting.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveWithLock(ctx context.Context, entry *accounting.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.AccountingPeriod, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindByDate(ctx context.Context, schoolID uuid.UUID, date time.Time) (*accounting.AccountingPeriod, error) {
	args := m.Called(ctx, schoolID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindByYearAndNumber(ctx context.Context, schoolID uuid.UUID, fiscalYear, periodNumber int) (*accounting.AccountingPeriod, error) {
	args := m.Called(ctx, schoolID, fiscalYear, periodNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.PeriodFilter) ([]accounting.AccountingPeriod, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).([]accounting.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.PeriodFilter) (int64, error) {
	args := m.Called(ctx, schoolID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPeriodRepository) Save(ctx context.Context, period *accounting.AccountingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

// noopPublisher swallows events in tests
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return nil
}
