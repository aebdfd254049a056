package accounting

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodService provides accounting period operations
type PeriodService struct {
	periodRepo accounting.AccountingPeriodRepository
	eventBus   shared.EventPublisher
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periodRepo accounting.AccountingPeriodRepository, eventBus shared.EventPublisher) *PeriodService {
	return &PeriodService{periodRepo: periodRepo, eventBus: eventBus}
}

// PeriodResponse represents an accounting period in API responses
type PeriodResponse struct {
	ID           uuid.UUID  `json:"id"`
	SchoolID     uuid.UUID  `json:"school_id"`
	FiscalYear   int        `json:"fiscal_year"`
	PeriodNumber int        `json:"period_number"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	Status       string     `json:"status"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	ClosedBy     *uuid.UUID `json:"closed_by,omitempty"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Version      int        `json:"version"`
}

// CreatePeriodRequest represents a request to open a new period
type CreatePeriodRequest struct {
	FiscalYear   int       `json:"fiscal_year" binding:"required"`
	PeriodNumber int       `json:"period_number" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

// PeriodListFilter defines filtering options for period list queries
type PeriodListFilter struct {
	FiscalYear *int   `form:"fiscal_year"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreatePeriod opens a new accounting period. Periods within a fiscal year
// must not overlap.
func (s *PeriodService) CreatePeriod(ctx context.Context, schoolID uuid.UUID, req CreatePeriodRequest) (*PeriodResponse, error) {
	existing, err := s.periodRepo.FindByYearAndNumber(ctx, schoolID, req.FiscalYear, req.PeriodNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_PERIOD", "A period with this year and number already exists")
	}

	overlapping, err := s.periodRepo.FindByDate(ctx, schoolID, req.StartDate)
	if err != nil {
		return nil, err
	}
	if overlapping != nil {
		return nil, shared.NewDomainError("OVERLAPPING_PERIOD", "The start date falls inside an existing period")
	}

	period, err := accounting.NewAccountingPeriod(schoolID, req.FiscalYear, req.PeriodNumber, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	return toPeriodResponse(period), nil
}

// GetPeriodByID gets a period by ID
func (s *PeriodService) GetPeriodByID(ctx context.Context, schoolID, id uuid.UUID) (*PeriodResponse, error) {
	period, err := s.findPeriod(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// ClosePeriod closes an open period so no further entries can post into it
func (s *PeriodService) ClosePeriod(ctx context.Context, schoolID, id, closedBy uuid.UUID) (*PeriodResponse, error) {
	period, err := s.findPeriod(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := period.Close(closedBy); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, period.GetDomainEvents())
	period.ClearDomainEvents()

	return toPeriodResponse(period), nil
}

// LockPeriod permanently locks a period. Locking an already locked period
// succeeds without change.
func (s *PeriodService) LockPeriod(ctx context.Context, schoolID, id uuid.UUID) (*PeriodResponse, error) {
	period, err := s.findPeriod(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if err := period.Lock(); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, period.GetDomainEvents())
	period.ClearDomainEvents()

	return toPeriodResponse(period), nil
}

// ListPeriods lists periods with filtering
func (s *PeriodService) ListPeriods(ctx context.Context, schoolID uuid.UUID, filter PeriodListFilter) ([]PeriodResponse, int64, error) {
	domainFilter := accounting.PeriodFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		FiscalYear: filter.FiscalYear,
	}
	if filter.Status != "" {
		status := accounting.PeriodStatus(filter.Status)
		domainFilter.Status = &status
	}

	periods, err := s.periodRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.periodRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PeriodResponse, 0, len(periods))
	for i := range periods {
		responses = append(responses, *toPeriodResponse(&periods[i]))
	}
	return responses, total, nil
}

func (s *PeriodService) findPeriod(ctx context.Context, schoolID, id uuid.UUID) (*accounting.AccountingPeriod, error) {
	period, err := s.periodRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Accounting period not found")
	}
	return period, nil
}

func (s *PeriodService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	_ = s.eventBus.Publish(ctx, events...)
}

func toPeriodResponse(p *accounting.AccountingPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:           p.ID,
		SchoolID:     p.SchoolID,
		FiscalYear:   p.FiscalYear,
		PeriodNumber: p.PeriodNumber,
		Name:         p.Name,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       string(p.Status),
		ClosedAt:     p.ClosedAt,
		ClosedBy:     p.ClosedBy,
		LockedAt:     p.LockedAt,
		CreatedAt:    p.CreatedAt,
		Version:      p.Version,
	}
}
