package accounting

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetService provides budget planning and variance reporting
type BudgetService struct {
	budgetRepo  accounting.BudgetRepository
	accountRepo accounting.ChartOfAccountRepository
	periodRepo  accounting.AccountingPeriodRepository
	journalRepo accounting.JournalEntryRepository
	eventBus    shared.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo accounting.BudgetRepository,
	accountRepo accounting.ChartOfAccountRepository,
	periodRepo accounting.AccountingPeriodRepository,
	journalRepo accounting.JournalEntryRepository,
	eventBus shared.EventPublisher,
) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		journalRepo: journalRepo,
		eventBus:    eventBus,
	}
}

// BudgetLineResponse represents a budget line in API responses
type BudgetLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	AccountType    string          `json:"account_type"`
	BudgetedAmount decimal.Decimal `json:"budgeted_amount"`
	Notes          string          `json:"notes,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID           uuid.UUID            `json:"id"`
	SchoolID     uuid.UUID            `json:"school_id"`
	Name         string               `json:"name"`
	PeriodID     uuid.UUID            `json:"period_id"`
	FiscalYear   int                  `json:"fiscal_year"`
	Status       string               `json:"status"`
	Lines        []BudgetLineResponse `json:"lines"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TotalExpense decimal.Decimal      `json:"total_expense"`
	ApprovedAt   *time.Time           `json:"approved_at,omitempty"`
	ApprovedBy   *uuid.UUID           `json:"approved_by,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	Version      int                  `json:"version"`
}

// VarianceReportResponse is the reporting-time budget-vs-actual position
type VarianceReportResponse struct {
	BudgetID   uuid.UUID             `json:"budget_id"`
	BudgetName string                `json:"budget_name"`
	PeriodID   uuid.UUID             `json:"period_id"`
	AsOf       time.Time             `json:"as_of"`
	Lines      []accounting.Variance `json:"lines"`
}

// CreateBudgetRequest represents a request to create a draft budget
type CreateBudgetRequest struct {
	Name       string    `json:"name" binding:"required"`
	PeriodID   uuid.UUID `json:"period_id" binding:"required"`
	FiscalYear int       `json:"fiscal_year" binding:"required"`
}

// BudgetLineRequest adds one planned amount to a budget
type BudgetLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Notes     string          `json:"notes"`
}

// ReviseBudgetLineRequest amends a line on an active budget
type ReviseBudgetLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
}

// BudgetListFilter defines filtering options for budget list queries
type BudgetListFilter struct {
	FiscalYear *int   `form:"fiscal_year"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreateBudget creates a draft budget for a period. One budget per period.
func (s *BudgetService) CreateBudget(ctx context.Context, schoolID uuid.UUID, req CreateBudgetRequest) (*BudgetResponse, error) {
	period, err := s.periodRepo.FindByIDForSchool(ctx, schoolID, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Accounting period not found")
	}

	existing, err := s.budgetRepo.FindByPeriod(ctx, schoolID, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_BUDGET", "The period already has a budget")
	}

	budget, err := accounting.NewBudget(schoolID, req.Name, req.PeriodID, req.FiscalYear)
	if err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, budget); err != nil {
		return nil, err
	}

	return toBudgetResponse(budget), nil
}

// GetBudgetByID gets a budget by ID
func (s *BudgetService) GetBudgetByID(ctx context.Context, schoolID, id uuid.UUID) (*BudgetResponse, error) {
	budget, err := s.findBudget(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(budget), nil
}

// AddBudgetLine adds a planned amount for an account to a draft budget
func (s *BudgetService) AddBudgetLine(ctx context.Context, schoolID, id uuid.UUID, req BudgetLineRequest) (*BudgetResponse, error) {
	budget, err := s.findBudget(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Account not found")
	}

	if err := budget.AddLine(account, valueobject.NewMoneyKES(req.Amount), req.Notes); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, budget); err != nil {
		return nil, err
	}

	return toBudgetResponse(budget), nil
}

// ApproveBudget activates a draft budget
func (s *BudgetService) ApproveBudget(ctx context.Context, schoolID, id, approvedBy uuid.UUID) (*BudgetResponse, error) {
	budget, err := s.findBudget(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := budget.Approve(approvedBy); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, budget); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, budget.GetDomainEvents())
	budget.ClearDomainEvents()

	return toBudgetResponse(budget), nil
}

// ReviseBudgetLine amends a line amount, recording the revision trail
func (s *BudgetService) ReviseBudgetLine(ctx context.Context, schoolID, id, revisedBy uuid.UUID, req ReviseBudgetLineRequest) (*BudgetResponse, error) {
	budget, err := s.findBudget(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := budget.ReviseLine(req.AccountID, valueobject.NewMoneyKES(req.Amount), req.Reason, revisedBy); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, budget); err != nil {
		return nil, err
	}

	return toBudgetResponse(budget), nil
}

// GetVarianceReport computes budget vs actual for every line. Actuals are
// summed from posted journal lines within the budget's period at request
// time; nothing is stored.
func (s *BudgetService) GetVarianceReport(ctx context.Context, schoolID, id uuid.UUID) (*VarianceReportResponse, error) {
	budget, err := s.findBudget(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByIDForSchool(ctx, schoolID, budget.PeriodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Budget period not found")
	}

	accountIDs := make([]uuid.UUID, 0, len(budget.Lines))
	for _, l := range budget.Lines {
		accountIDs = append(accountIDs, l.AccountID)
	}

	balances, err := s.journalRepo.SumPostedByAccount(ctx, schoolID, accountIDs, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	byAccount := make(map[uuid.UUID]accounting.AccountBalance, len(balances))
	for _, b := range balances {
		byAccount[b.AccountID] = b
	}

	variances := make([]accounting.Variance, 0, len(budget.Lines))
	for i := range budget.Lines {
		line := &budget.Lines[i]
		actual := decimal.Zero
		if balance, ok := byAccount[line.AccountID]; ok {
			// Actuals are read on the account's normal side, so revenue
			// actuals come from credits and expense actuals from debits.
			actual = balance.Net(line.AccountType.NormalBalance())
		}
		variances = append(variances, line.ComputeVariance(actual))
	}

	return &VarianceReportResponse{
		BudgetID:   budget.ID,
		BudgetName: budget.Name,
		PeriodID:   budget.PeriodID,
		AsOf:       time.Now(),
		Lines:      variances,
	}, nil
}

// ListBudgets lists budgets with filtering
func (s *BudgetService) ListBudgets(ctx context.Context, schoolID uuid.UUID, filter BudgetListFilter) ([]BudgetResponse, int64, error) {
	domainFilter := accounting.BudgetFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		FiscalYear: filter.FiscalYear,
	}
	if filter.Status != "" {
		st := accounting.BudgetStatus(filter.Status)
		domainFilter.Status = &st
	}

	budgets, err := s.budgetRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.budgetRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		responses = append(responses, *toBudgetResponse(&budgets[i]))
	}
	return responses, total, nil
}

func (s *BudgetService) findBudget(ctx context.Context, schoolID, id uuid.UUID) (*accounting.Budget, error) {
	budget, err := s.budgetRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Budget not found")
	}
	return budget, nil
}

func (s *BudgetService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toBudgetResponse(b *accounting.Budget) *BudgetResponse {
	lines := make([]BudgetLineResponse, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, BudgetLineResponse{
			ID:             l.ID,
			AccountID:      l.AccountID,
			AccountCode:    l.AccountCode,
			AccountType:    string(l.AccountType),
			BudgetedAmount: l.BudgetedAmount,
			Notes:          l.Notes,
		})
	}
	return &BudgetResponse{
		ID:           b.ID,
		SchoolID:     b.SchoolID,
		Name:         b.Name,
		PeriodID:     b.PeriodID,
		FiscalYear:   b.FiscalYear,
		Status:       string(b.Status),
		Lines:        lines,
		TotalRevenue: b.TotalRevenue(),
		TotalExpense: b.TotalExpense(),
		ApprovedAt:   b.ApprovedAt,
		ApprovedBy:   b.ApprovedBy,
		CreatedAt:    b.CreatedAt,
		Version:      b.Version,
	}
}
