package accounting

import (
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodStatus represents the lifecycle status of an accounting period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// IsValid checks if the period status is valid
func (s PeriodStatus) IsValid() bool {
	return s == PeriodStatusOpen || s == PeriodStatusClosed || s == PeriodStatusLocked
}

// String returns the string representation
func (s PeriodStatus) String() string {
	return string(s)
}

// periodTransitions is the monotonic Open -> Closed -> Locked lifecycle.
// There are no reverse transitions: a locked period is immutable forever.
var periodTransitions = shared.TransitionTable[PeriodStatus]{
	PeriodStatusOpen:   {PeriodStatusClosed, PeriodStatusLocked},
	PeriodStatusClosed: {PeriodStatusLocked},
}

// AccountingPeriod represents a bounded reporting period that journal
// entries are posted into. Posting is only permitted while the period is
// Open. Once Closed, corrections happen via reversal entries in a later
// period; once Locked nothing about the period may change.
type AccountingPeriod struct {
	shared.SchoolAggregateRoot
	FiscalYear   int          `gorm:"not null;uniqueIndex:idx_period_school_year_no,priority:2"`
	PeriodNumber int          `gorm:"not null;uniqueIndex:idx_period_school_year_no,priority:3"`
	Name         string       `gorm:"type:varchar(100);not null"`
	StartDate    time.Time    `gorm:"not null"`
	EndDate      time.Time    `gorm:"not null"`
	Status       PeriodStatus `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	ClosedAt     *time.Time
	ClosedBy     *uuid.UUID `gorm:"type:uuid"`
	LockedAt     *time.Time
}

// TableName returns the table name for GORM
func (AccountingPeriod) TableName() string {
	return "accounting_periods"
}

// NewAccountingPeriod creates a new open accounting period
func NewAccountingPeriod(schoolID uuid.UUID, fiscalYear, periodNumber int, name string, startDate, endDate time.Time) (*AccountingPeriod, error) {
	if fiscalYear < 2000 || fiscalYear > 2200 {
		return nil, shared.NewDomainError("INVALID_FISCAL_YEAR",
			fmt.Sprintf("fiscal year %d is out of range", fiscalYear))
	}
	if periodNumber < 1 || periodNumber > 13 {
		return nil, shared.NewDomainError("INVALID_PERIOD_NUMBER",
			"Period number must be between 1 and 13")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PERIOD_NAME", "Period name cannot be empty")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD_RANGE", "Period dates are required")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_PERIOD_RANGE", "End date must be after start date")
	}

	return &AccountingPeriod{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		FiscalYear:          fiscalYear,
		PeriodNumber:        periodNumber,
		Name:                name,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              PeriodStatusOpen,
	}, nil
}

// IsOpen reports whether the period accepts postings
func (p *AccountingPeriod) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// Contains reports whether the date falls within the period, inclusive on
// both ends. Comparison is by calendar day in each value's own location, so
// bounds stored at local midnight do not shift by the zone offset.
func (p *AccountingPeriod) Contains(date time.Time) bool {
	d := dayOf(date)
	return !d.Before(dayOf(p.StartDate)) && !d.After(dayOf(p.EndDate))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Close closes the period to further postings. Closing an already-Locked
// (or already-Closed) period fails.
func (p *AccountingPeriod) Close(closedBy uuid.UUID) error {
	if err := periodTransitions.Guard(p.Status, PeriodStatusClosed); err != nil {
		return err
	}
	if closedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Closing user ID is required")
	}

	now := time.Now()
	p.Status = PeriodStatusClosed
	p.ClosedAt = &now
	p.ClosedBy = &closedBy
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodClosedEvent(p))

	return nil
}

// Lock permanently locks the period. It succeeds from any status and is
// one-way: there is no reopen. Locking an already-locked period is a no-op.
func (p *AccountingPeriod) Lock() error {
	if p.Status == PeriodStatusLocked {
		return nil
	}
	if err := periodTransitions.Guard(p.Status, PeriodStatusLocked); err != nil {
		return err
	}

	now := time.Now()
	p.Status = PeriodStatusLocked
	p.LockedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodLockedEvent(p))

	return nil
}
