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

// JournalService provides journal entry operations: capture, posting and
// reversal
type JournalService struct {
	journalRepo accounting.JournalEntryRepository
	accountRepo accounting.ChartOfAccountRepository
	periodRepo  accounting.AccountingPeriodRepository
	eventBus    shared.EventPublisher
}

// NewJournalService creates a new JournalService
func NewJournalService(
	journalRepo accounting.JournalEntryRepository,
	accountRepo accounting.ChartOfAccountRepository,
	periodRepo accounting.AccountingPeriodRepository,
	eventBus shared.EventPublisher,
) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		eventBus:    eventBus,
	}
}

// JournalLineResponse represents one journal line in API responses
type JournalLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	CostCentre  string          `json:"cost_centre,omitempty"`
	Memo        string          `json:"memo,omitempty"`
}

// JournalResponse represents a journal entry in API responses
type JournalResponse struct {
	ID                uuid.UUID             `json:"id"`
	SchoolID          uuid.UUID             `json:"school_id"`
	EntryNumber       string                `json:"entry_number"`
	Type              string                `json:"type"`
	Status            string                `json:"status"`
	EntryDate         time.Time             `json:"entry_date"`
	Description       string                `json:"description"`
	SourceType        string                `json:"source_type,omitempty"`
	SourceID          *uuid.UUID            `json:"source_id,omitempty"`
	PeriodID          *uuid.UUID            `json:"period_id,omitempty"`
	ReversesJournalID *uuid.UUID            `json:"reverses_journal_id,omitempty"`
	Lines             []JournalLineResponse `json:"lines"`
	TotalDebit        decimal.Decimal       `json:"total_debit"`
	TotalCredit       decimal.Decimal       `json:"total_credit"`
	PostedAt          *time.Time            `json:"posted_at,omitempty"`
	PostedBy          *uuid.UUID            `json:"posted_by,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	Version           int                   `json:"version"`
}

// JournalLineRequest is one line in a create request
type JournalLineRequest struct {
	AccountID  uuid.UUID       `json:"account_id" binding:"required"`
	Side       string          `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	CostCentre string          `json:"cost_centre"`
	Memo       string          `json:"memo"`
}

// CreateJournalRequest represents a request to capture a manual entry
type CreateJournalRequest struct {
	EntryDate   time.Time            `json:"entry_date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2"`
}

// ReverseJournalRequest represents a request to reverse a posted entry
type ReverseJournalRequest struct {
	EntryDate time.Time `json:"entry_date" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}

// JournalListFilter defines filtering options for journal list queries
type JournalListFilter struct {
	Type     string     `form:"type"`
	Status   string     `form:"status"`
	PeriodID *uuid.UUID `form:"period_id"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// CreateJournal captures a manual journal entry in draft status
func (s *JournalService) CreateJournal(ctx context.Context, schoolID uuid.UUID, req CreateJournalRequest) (*JournalResponse, error) {
	entryNumber, err := s.journalRepo.GenerateEntryNumber(ctx, schoolID, accounting.JournalTypeManual)
	if err != nil {
		return nil, err
	}

	entry, err := accounting.NewJournalEntry(schoolID, entryNumber, accounting.JournalTypeManual, req.EntryDate, req.Description)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		account, err := s.accountRepo.FindByIDForSchool(ctx, schoolID, line.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Line account not found")
		}
		if err := entry.AddLine(account, accounting.BalanceSide(line.Side),
			valueobject.NewMoneyKES(line.Amount), line.CostCentre, line.Memo); err != nil {
			return nil, err
		}
	}

	if err := s.journalRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	return toJournalResponse(entry), nil
}

// GetJournalByID gets a journal entry by ID
func (s *JournalService) GetJournalByID(ctx context.Context, schoolID, id uuid.UUID) (*JournalResponse, error) {
	entry, err := s.findJournal(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toJournalResponse(entry), nil
}

// PostJournal posts a draft entry into the period containing its entry
// date. The entry must be balanced and the period open.
func (s *JournalService) PostJournal(ctx context.Context, schoolID, id, postedBy uuid.UUID) (*JournalResponse, error) {
	entry, err := s.findJournal(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByDate(ctx, schoolID, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NO_PERIOD", "No accounting period covers the entry date")
	}

	if err := entry.Post(postedBy, period); err != nil {
		return nil, err
	}

	// Optimistic lock: two concurrent postings of the same draft race on
	// the version column and the loser gets a conflict.
	if err := s.journalRepo.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	return toJournalResponse(entry), nil
}

// ReverseJournal builds, saves and posts the reversal of a posted entry.
// Each entry can be reversed at most once.
func (s *JournalService) ReverseJournal(ctx context.Context, schoolID, id, requestedBy uuid.UUID, req ReverseJournalRequest) (*JournalResponse, error) {
	original, err := s.findJournal(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.journalRepo.FindReversalOf(ctx, schoolID, original.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_REVERSED", "This entry has already been reversed")
	}

	entryNumber, err := s.journalRepo.GenerateEntryNumber(ctx, schoolID, accounting.JournalTypeReversal)
	if err != nil {
		return nil, err
	}

	reversal, err := accounting.NewReversalEntry(original, entryNumber, req.EntryDate, req.Reason)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByDate(ctx, schoolID, reversal.EntryDate)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NO_PERIOD", "No accounting period covers the reversal date")
	}

	if err := reversal.Post(requestedBy, period); err != nil {
		return nil, err
	}

	if err := s.journalRepo.Save(ctx, reversal); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, reversal.GetDomainEvents())
	reversal.ClearDomainEvents()

	return toJournalResponse(reversal), nil
}

// ListJournals lists journal entries with filtering
func (s *JournalService) ListJournals(ctx context.Context, schoolID uuid.UUID, filter JournalListFilter) ([]JournalResponse, int64, error) {
	domainFilter := accounting.JournalFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		PeriodID: filter.PeriodID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.Type != "" {
		t := accounting.JournalType(filter.Type)
		domainFilter.Type = &t
	}
	if filter.Status != "" {
		st := accounting.JournalStatus(filter.Status)
		domainFilter.Status = &st
	}

	entries, err := s.journalRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.journalRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]JournalResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *toJournalResponse(&entries[i]))
	}
	return responses, total, nil
}

func (s *JournalService) findJournal(ctx context.Context, schoolID, id uuid.UUID) (*accounting.JournalEntry, error) {
	entry, err := s.journalRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Journal entry not found")
	}
	return entry, nil
}

func (s *JournalService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toJournalResponse(e *accounting.JournalEntry) *JournalResponse {
	lines := make([]JournalLineResponse, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, JournalLineResponse{
			ID:          l.ID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        string(l.Side),
			Amount:      l.Amount,
			CostCentre:  l.CostCentre,
			Memo:        l.Memo,
		})
	}
	return &JournalResponse{
		ID:                e.ID,
		SchoolID:          e.SchoolID,
		EntryNumber:       e.EntryNumber,
		Type:              string(e.Type),
		Status:            string(e.Status),
		EntryDate:         e.EntryDate,
		Description:       e.Description,
		SourceType:        e.SourceType,
		SourceID:          e.SourceID,
		PeriodID:          e.PeriodID,
		ReversesJournalID: e.ReversesJournalID,
		Lines:             lines,
		TotalDebit:        e.TotalDebit(),
		TotalCredit:       e.TotalCredit(),
		PostedAt:          e.PostedAt,
		PostedBy:          e.PostedBy,
		CreatedAt:         e.CreatedAt,
		Version:           e.Version,
	}
}
