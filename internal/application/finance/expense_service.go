package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense workflow use cases
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
	accountRepo accounting.ChartOfAccountRepository
	poster      *glPoster
	eventBus    shared.EventPublisher
}

// NewExpenseService creates a new expense service
func NewExpenseService(
	expenseRepo finance.ExpenseRepository,
	accountRepo accounting.ChartOfAccountRepository,
	journalRepo accounting.JournalEntryRepository,
	periodRepo accounting.AccountingPeriodRepository,
	rulesRepo finance.PostingRuleSetRepository,
	eventBus shared.EventPublisher,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
		poster:      newGLPoster(accountRepo, journalRepo, periodRepo, rulesRepo),
		eventBus:    eventBus,
	}
}

// ExpenseResponse represents expense data returned to clients
type ExpenseResponse struct {
	ID             uuid.UUID       `json:"id"`
	SchoolID       uuid.UUID       `json:"school_id"`
	ExpenseNumber  string          `json:"expense_number"`
	Category       string          `json:"category"`
	GLAccountID    *uuid.UUID      `json:"gl_account_id,omitempty"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	IncurredAt     time.Time       `json:"incurred_at"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID      `json:"journal_entry_id,omitempty"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	RejectedAt     *time.Time      `json:"rejected_at,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Version        int             `json:"version"`
}

// CreateExpenseRequest represents a request to capture an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	IncurredAt  time.Time       `json:"incurred_at" binding:"required"`
	GLAccountID *uuid.UUID      `json:"gl_account_id"`
	Notes       string          `json:"notes"`
}

// RejectExpenseRequest carries the mandatory rejection reason
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	Category string     `form:"category"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// CreateExpense captures a new draft expense
func (s *ExpenseService) CreateExpense(ctx context.Context, schoolID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	expenseNumber, err := s.expenseRepo.GenerateExpenseNumber(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyKES(req.Amount)
	tax := valueobject.NewMoneyKES(req.TaxAmount)

	expense, err := finance.NewExpense(schoolID, expenseNumber, finance.ExpenseCategory(req.Category), req.Description, amount, tax, req.IncurredAt)
	if err != nil {
		return nil, err
	}

	if req.GLAccountID != nil {
		account, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, *req.GLAccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "GL account not found")
		}
		if err := expense.SetGLAccount(account.ID); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		expense.SetNotes(req.Notes)
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense.GetDomainEvents())
	expense.ClearDomainEvents()

	return toExpenseResponse(expense), nil
}

// GetExpenseByID retrieves an expense by ID
func (s *ExpenseService) GetExpenseByID(ctx context.Context, schoolID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// SubmitExpense moves a draft expense into the approval queue
func (s *ExpenseService) SubmitExpense(ctx context.Context, schoolID, id, submittedBy uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Submit(submittedBy); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense.GetDomainEvents())
	expense.ClearDomainEvents()
	return toExpenseResponse(expense), nil
}

// ApproveExpense approves a submitted expense and recognizes it in the
// ledger: the expense account (category override or default) and any
// recoverable tax are debited, accounts payable is credited.
func (s *ExpenseService) ApproveExpense(ctx context.Context, schoolID, id, approvedBy uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Approve(approvedBy); err != nil {
		return nil, err
	}

	rules, err := s.poster.rulesFor(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	expenseCode := rules.ExpenseAccountFor(expense.Category)
	if expense.GLAccountID != nil {
		account, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, *expense.GLAccountID)
		if err != nil {
			return nil, err
		}
		if account != nil {
			expenseCode = account.Code
		}
	}

	amount := valueobject.NewMoneyKES(expense.Amount)
	tax := valueobject.NewMoneyKES(expense.TaxAmount)
	total := valueobject.NewMoneyKES(expense.TotalAmount())

	entry, err := s.poster.post(ctx, schoolID, approvedBy, expense.ApprovedAt.UTC(),
		"Expense "+expense.ExpenseNumber+" approved", sourceTypeExpense, expense.ID,
		[]glLine{
			{accountCode: expenseCode, side: accounting.SideDebit, amount: amount, memo: expense.Description},
			{accountCode: rules.ExpenseTaxAccount, side: accounting.SideDebit, amount: tax, memo: "Input VAT"},
			{accountCode: rules.PayableAccount, side: accounting.SideCredit, amount: total, memo: expense.ExpenseNumber},
		})
	if err != nil {
		return nil, err
	}
	expense.LinkJournalEntry(entry.ID)

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense.GetDomainEvents())
	expense.ClearDomainEvents()
	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toExpenseResponse(expense), nil
}

// RejectExpense rejects a submitted expense with a reason
func (s *ExpenseService) RejectExpense(ctx context.Context, schoolID, id, rejectedBy uuid.UUID, req RejectExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Reject(rejectedBy, req.Reason); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense.GetDomainEvents())
	expense.ClearDomainEvents()
	return toExpenseResponse(expense), nil
}

// PayExpense settles an approved expense: cash is credited and the
// payable raised at approval is cleared.
func (s *ExpenseService) PayExpense(ctx context.Context, schoolID, id, paidBy uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.MarkPaid(paidBy); err != nil {
		return nil, err
	}

	rules, err := s.poster.rulesFor(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	total := valueobject.NewMoneyKES(expense.TotalAmount())

	entry, err := s.poster.post(ctx, schoolID, paidBy, expense.PaidAt.UTC(),
		"Expense "+expense.ExpenseNumber+" paid", sourceTypeExpense, expense.ID,
		[]glLine{
			{accountCode: rules.PayableAccount, side: accounting.SideDebit, amount: total, memo: expense.ExpenseNumber},
			{accountCode: rules.CashAccount, side: accounting.SideCredit, amount: total, memo: expense.ExpenseNumber},
		})
	if err != nil {
		return nil, err
	}
	expense.LinkJournalEntry(entry.ID)

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense.GetDomainEvents())
	expense.ClearDomainEvents()
	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toExpenseResponse(expense), nil
}

// ListExpenses lists expenses with filtering
func (s *ExpenseService) ListExpenses(ctx context.Context, schoolID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := finance.ExpenseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.Category != "" {
		c := finance.ExpenseCategory(filter.Category)
		domainFilter.Category = &c
	}
	if filter.Status != "" {
		st := finance.ExpenseStatus(filter.Status)
		domainFilter.Status = &st
	}

	expenses, err := s.expenseRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, *toExpenseResponse(&expenses[i]))
	}
	return responses, total, nil
}

func (s *ExpenseService) findExpense(ctx context.Context, schoolID, id uuid.UUID) (*finance.Expense, error) {
	expense, err := s.expenseRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "expense not found")
	}
	return expense, nil
}

func (s *ExpenseService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toExpenseResponse(e *finance.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:             e.ID,
		SchoolID:       e.SchoolID,
		ExpenseNumber:  e.ExpenseNumber,
		Category:       string(e.Category),
		GLAccountID:    e.GLAccountID,
		Description:    e.Description,
		Amount:         e.Amount,
		TaxAmount:      e.TaxAmount,
		TotalAmount:    e.TotalAmount(),
		IncurredAt:     e.IncurredAt,
		Status:         string(e.Status),
		Notes:          e.Notes,
		JournalEntryID: e.JournalEntryID,
		SubmittedAt:    e.SubmittedAt,
		ApprovedAt:     e.ApprovedAt,
		RejectedAt:     e.RejectedAt,
		PaidAt:         e.PaidAt,
		CreatedAt:      e.CreatedAt,
		Version:        e.Version,
	}
}
