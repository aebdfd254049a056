package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Source type labels stamped on synthesized journal entries.
const (
	sourceTypeInvoice    = "INVOICE"
	sourceTypePayment    = "PAYMENT"
	sourceTypeExpense    = "EXPENSE"
	sourceTypeCreditNote = "CREDIT_NOTE"
)

// glLine is one leg of a synthesized journal entry, addressed by account
// code so callers can speak in posting-rule terms.
type glLine struct {
	accountCode string
	side        accounting.BalanceSide
	amount      valueobject.Money
	memo        string
}

// glPoster synthesizes and posts system journal entries on behalf of the
// finance workflows. It resolves posting-rule account codes against the
// school's chart, so a school that remapped its rules posts to its own
// accounts.
type glPoster struct {
	accountRepo accounting.ChartOfAccountRepository
	journalRepo accounting.JournalEntryRepository
	periodRepo  accounting.AccountingPeriodRepository
	rulesRepo   finance.PostingRuleSetRepository
}

func newGLPoster(
	accountRepo accounting.ChartOfAccountRepository,
	journalRepo accounting.JournalEntryRepository,
	periodRepo  accounting.AccountingPeriodRepository,
	rulesRepo finance.PostingRuleSetRepository,
) *glPoster {
	return &glPoster{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		periodRepo:  periodRepo,
		rulesRepo:   rulesRepo,
	}
}

// rulesFor loads the school's posting rules, falling back to the seeded
// defaults when none were persisted yet.
func (g *glPoster) rulesFor(ctx context.Context, schoolID uuid.UUID) (*finance.PostingRuleSet, error) {
	rules, err := g.rulesRepo.FindForSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		return finance.DefaultPostingRules(schoolID), nil
	}
	return rules, nil
}

// post builds, balances, and posts a system journal entry dated entryDate.
// The entry lands in whichever open period contains that date.
func (g *glPoster) post(
	ctx context.Context,
	schoolID, postedBy uuid.UUID,
	entryDate time.Time,
	description, sourceType string,
	sourceID uuid.UUID,
	lines []glLine,
) (*accounting.JournalEntry, error) {
	entryNumber, err := g.journalRepo.GenerateEntryNumber(ctx, schoolID, accounting.JournalTypeSystem)
	if err != nil {
		return nil, err
	}

	entry, err := accounting.NewJournalEntry(schoolID, entryNumber, accounting.JournalTypeSystem, entryDate, description)
	if err != nil {
		return nil, err
	}
	entry.LinkSource(sourceType, sourceID)

	for _, line := range lines {
		if line.amount.IsZero() {
			continue
		}
		account, err := g.accountRepo.FindByCode(ctx, schoolID, line.accountCode)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, shared.NewDomainError("POSTING_ACCOUNT_MISSING",
				fmt.Sprintf("posting rules reference account %s which does not exist in the chart of accounts", line.accountCode))
		}
		if err := entry.AddLine(account, line.side, line.amount, "", line.memo); err != nil {
			return nil, err
		}
	}

	period, err := g.periodRepo.FindByDate(ctx, schoolID, entryDate)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NO_PERIOD", "no accounting period covers the entry date")
	}
	if err := entry.Post(postedBy, period); err != nil {
		return nil, err
	}

	if err := g.journalRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
