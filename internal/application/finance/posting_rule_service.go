package finance

import (
	"context"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PostingRuleService manages the account codes finance workflows post to
type PostingRuleService struct {
	rulesRepo   finance.PostingRuleSetRepository
	accountRepo accounting.ChartOfAccountRepository
}

// NewPostingRuleService creates a new posting rule service
func NewPostingRuleService(rulesRepo finance.PostingRuleSetRepository, accountRepo accounting.ChartOfAccountRepository) *PostingRuleService {
	return &PostingRuleService{rulesRepo: rulesRepo, accountRepo: accountRepo}
}

// PostingRulesResponse represents the school's posting rules
type PostingRulesResponse struct {
	CashAccount       string            `json:"cash_account"`
	ReceivableAccount string            `json:"receivable_account"`
	TuitionRevenue    string            `json:"tuition_revenue"`
	TaxPayableAccount string            `json:"tax_payable_account"`
	PayableAccount    string            `json:"payable_account"`
	DefaultExpense    string            `json:"default_expense"`
	ExpenseTaxAccount string            `json:"expense_tax_account"`
	CategoryOverrides map[string]string `json:"category_overrides"`
}

// UpdatePostingRulesRequest remaps workflow postings to other accounts.
// Empty fields keep their current value.
type UpdatePostingRulesRequest struct {
	CashAccount       string            `json:"cash_account"`
	ReceivableAccount string            `json:"receivable_account"`
	TuitionRevenue    string            `json:"tuition_revenue"`
	TaxPayableAccount string            `json:"tax_payable_account"`
	PayableAccount    string            `json:"payable_account"`
	DefaultExpense    string            `json:"default_expense"`
	ExpenseTaxAccount string            `json:"expense_tax_account"`
	CategoryOverrides map[string]string `json:"category_overrides"`
}

// GetPostingRules returns the school's rules, seeded defaults if none saved
func (s *PostingRuleService) GetPostingRules(ctx context.Context, schoolID uuid.UUID) (*PostingRulesResponse, error) {
	rules, err := s.loadRules(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return toPostingRulesResponse(rules), nil
}

// UpdatePostingRules remaps posting codes. Every referenced code must be
// a postable account in the school's chart.
func (s *PostingRuleService) UpdatePostingRules(ctx context.Context, schoolID uuid.UUID, req UpdatePostingRulesRequest) (*PostingRulesResponse, error) {
	rules, err := s.loadRules(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	assign := func(target *string, code string) error {
		if code == "" {
			return nil
		}
		if err := s.verifyPostable(ctx, schoolID, code); err != nil {
			return err
		}
		*target = code
		return nil
	}

	if err := assign(&rules.CashAccount, req.CashAccount); err != nil {
		return nil, err
	}
	if err := assign(&rules.ReceivableAccount, req.ReceivableAccount); err != nil {
		return nil, err
	}
	if err := assign(&rules.TuitionRevenue, req.TuitionRevenue); err != nil {
		return nil, err
	}
	if err := assign(&rules.TaxPayableAccount, req.TaxPayableAccount); err != nil {
		return nil, err
	}
	if err := assign(&rules.PayableAccount, req.PayableAccount); err != nil {
		return nil, err
	}
	if err := assign(&rules.DefaultExpense, req.DefaultExpense); err != nil {
		return nil, err
	}
	if err := assign(&rules.ExpenseTaxAccount, req.ExpenseTaxAccount); err != nil {
		return nil, err
	}

	for category, code := range req.CategoryOverrides {
		if err := s.verifyPostable(ctx, schoolID, code); err != nil {
			return nil, err
		}
		if err := rules.SetCategoryOverride(finance.ExpenseCategory(category), code); err != nil {
			return nil, err
		}
	}

	rules.Touch()
	rules.IncrementVersion()
	if err := s.rulesRepo.Save(ctx, rules); err != nil {
		return nil, err
	}
	return toPostingRulesResponse(rules), nil
}

func (s *PostingRuleService) loadRules(ctx context.Context, schoolID uuid.UUID) (*finance.PostingRuleSet, error) {
	rules, err := s.rulesRepo.FindForSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = finance.DefaultPostingRules(schoolID)
	}
	return rules, nil
}

func (s *PostingRuleService) verifyPostable(ctx context.Context, schoolID uuid.UUID, code string) error {
	account, err := s.accountRepo.FindByCode(ctx, schoolID, code)
	if err != nil {
		return err
	}
	if account == nil {
		return shared.NewDomainError("NOT_FOUND", "account "+code+" not found in chart of accounts")
	}
	if !account.IsPostable() {
		return shared.NewDomainError("NOT_POSTABLE", "account "+code+" is a header or inactive account")
	}
	return nil
}

func toPostingRulesResponse(r *finance.PostingRuleSet) *PostingRulesResponse {
	overrides := map[string]string{}
	for _, category := range []finance.ExpenseCategory{
		finance.ExpenseCategorySalaries,
		finance.ExpenseCategoryUtilities,
		finance.ExpenseCategoryMaintenance,
		finance.ExpenseCategorySupplies,
		finance.ExpenseCategoryTransport,
		finance.ExpenseCategoryCatering,
		finance.ExpenseCategoryOther,
	} {
		code := r.ExpenseAccountFor(category)
		if code != r.DefaultExpense {
			overrides[string(category)] = code
		}
	}
	return &PostingRulesResponse{
		CashAccount:       r.CashAccount,
		ReceivableAccount: r.ReceivableAccount,
		TuitionRevenue:    r.TuitionRevenue,
		TaxPayableAccount: r.TaxPayableAccount,
		PayableAccount:    r.PayableAccount,
		DefaultExpense:    r.DefaultExpense,
		ExpenseTaxAccount: r.ExpenseTaxAccount,
		CategoryOverrides: overrides,
	}
}
