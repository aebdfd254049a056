package accounting

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCache caches computed account balances. Entries are invalidated
// when a journal entry posts against the account.
type BalanceCache interface {
	Get(ctx context.Context, schoolID, accountID uuid.UUID) (*accounting.AccountBalance, bool)
	Set(ctx context.Context, schoolID uuid.UUID, balance accounting.AccountBalance)
	Invalidate(ctx context.Context, schoolID uuid.UUID, accountIDs ...uuid.UUID)
}

// AccountService provides chart of account operations
type AccountService struct {
	accountRepo accounting.ChartOfAccountRepository
	journalRepo accounting.JournalEntryRepository
	cache       BalanceCache
	eventBus    shared.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo accounting.ChartOfAccountRepository,
	journalRepo accounting.JournalEntryRepository,
	cache BalanceCache,
	eventBus shared.EventPublisher,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		cache:       cache,
		eventBus:    eventBus,
	}
}

// AccountResponse represents a GL account in API responses
type AccountResponse struct {
	ID          uuid.UUID  `json:"id"`
	SchoolID    uuid.UUID  `json:"school_id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	IsHeader    bool       `json:"is_header"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// AccountBalanceResponse is an account with its computed posted balance
type AccountBalanceResponse struct {
	AccountResponse
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// CreateAccountRequest represents a request to create a GL account
type CreateAccountRequest struct {
	Code     string     `json:"code" binding:"required"`
	Name     string     `json:"name" binding:"required"`
	Type     string     `json:"type" binding:"required"`
	IsHeader bool       `json:"is_header"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateAccountRequest represents a request to rename an account
type UpdateAccountRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AccountListFilter defines filtering options for account list queries
type AccountListFilter struct {
	Type     string `form:"type"`
	IsHeader *bool  `form:"is_header"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// CreateAccount creates a new GL account, optionally under a header parent
func (s *AccountService) CreateAccount(ctx context.Context, schoolID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	existing, err := s.accountRepo.FindByCode(ctx, schoolID, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "An account with this code already exists")
	}

	account, err := accounting.NewChartOfAccount(schoolID, req.Code, req.Name, accounting.AccountType(req.Type), req.IsHeader)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Parent account not found")
		}
		if err := account.SetParent(parent); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, account.GetDomainEvents())
	account.ClearDomainEvents()

	return toAccountResponse(account), nil
}

// GetAccountByID gets an account by ID
func (s *AccountService) GetAccountByID(ctx context.Context, schoolID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// UpdateAccount renames an account
func (s *AccountService) UpdateAccount(ctx context.Context, schoolID, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := account.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

// DeactivateAccount retires an account from further posting. Accounts with
// posted balances stay queryable for reporting.
func (s *AccountService) DeactivateAccount(ctx context.Context, schoolID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := account.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

// ListAccounts lists accounts with filtering
func (s *AccountService) ListAccounts(ctx context.Context, schoolID uuid.UUID, filter AccountListFilter) ([]AccountResponse, int64, error) {
	domainFilter := accounting.AccountFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		IsHeader: filter.IsHeader,
		Active:   filter.Active,
	}
	if filter.Type != "" {
		t := accounting.AccountType(filter.Type)
		domainFilter.Type = &t
	}

	accounts, err := s.accountRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, *toAccountResponse(&accounts[i]))
	}
	return responses, total, nil
}

// GetAccountBalance computes the posted balance of one account over a date
// range. Whole-history balances are served from cache when available.
func (s *AccountService) GetAccountBalance(ctx context.Context, schoolID, id uuid.UUID, from, to time.Time) (*AccountBalanceResponse, error) {
	account, err := s.findAccount(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	wholeHistory := from.IsZero() && to.IsZero()
	if wholeHistory && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, schoolID, id); ok {
			return toBalanceResponse(account, *cached), nil
		}
	}

	balances, err := s.journalRepo.SumPostedByAccount(ctx, schoolID, []uuid.UUID{id}, from, to)
	if err != nil {
		return nil, err
	}

	balance := accounting.AccountBalance{AccountID: id, AccountCode: account.Code,
		TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	if len(balances) > 0 {
		balance = balances[0]
	}

	if wholeHistory && s.cache != nil {
		s.cache.Set(ctx, schoolID, balance)
	}

	return toBalanceResponse(account, balance), nil
}

// GetTrialBalance computes balances for every postable account as of a date
func (s *AccountService) GetTrialBalance(ctx context.Context, schoolID uuid.UUID, asOf time.Time) ([]AccountBalanceResponse, error) {
	active := true
	header := false
	accounts, err := s.accountRepo.FindAllForSchool(ctx, schoolID, accounting.AccountFilter{
		IsHeader: &header,
		Active:   &active,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}

	balances, err := s.journalRepo.SumPostedByAccount(ctx, schoolID, ids, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}
	byAccount := make(map[uuid.UUID]accounting.AccountBalance, len(balances))
	for _, b := range balances {
		byAccount[b.AccountID] = b
	}

	responses := make([]AccountBalanceResponse, 0, len(accounts))
	for i := range accounts {
		b, ok := byAccount[accounts[i].ID]
		if !ok {
			b = accounting.AccountBalance{AccountID: accounts[i].ID, AccountCode: accounts[i].Code,
				TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
		}
		responses = append(responses, *toBalanceResponse(&accounts[i], b))
	}
	return responses, nil
}

func (s *AccountService) findAccount(ctx context.Context, schoolID, id uuid.UUID) (*accounting.ChartOfAccount, error) {
	account, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Account not found")
	}
	return account, nil
}

func (s *AccountService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toAccountResponse(a *accounting.ChartOfAccount) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		SchoolID:    a.SchoolID,
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		Type:        string(a.Type),
		IsHeader:    a.IsHeader,
		ParentID:    a.ParentID,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Version:     a.Version,
	}
}

func toBalanceResponse(a *accounting.ChartOfAccount, b accounting.AccountBalance) *AccountBalanceResponse {
	return &AccountBalanceResponse{
		AccountResponse: *toAccountResponse(a),
		TotalDebit:      b.TotalDebit,
		TotalCredit:     b.TotalCredit,
		Balance:         b.Net(a.Type.NormalBalance()),
	}
}
