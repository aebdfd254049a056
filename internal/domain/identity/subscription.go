package identity

import (
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionPlan is the commercial tier a school subscribes to
type SubscriptionPlan string

const (
	PlanStarter    SubscriptionPlan = "STARTER"
	PlanStandard   SubscriptionPlan = "STANDARD"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

// IsValid checks if the plan is valid
func (p SubscriptionPlan) IsValid() bool {
	return p == PlanStarter || p == PlanStandard || p == PlanEnterprise
}

// SubscriptionStatus represents the lifecycle status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// subscriptionTransitions: trials convert or expire, active subscriptions
// fall past due when payment fails and recover on payment
var subscriptionTransitions = shared.TransitionTable[SubscriptionStatus]{
	SubscriptionStatusTrial:   {SubscriptionStatusActive, SubscriptionStatusCancelled, SubscriptionStatusExpired},
	SubscriptionStatusActive:  {SubscriptionStatusPastDue, SubscriptionStatusCancelled, SubscriptionStatusExpired},
	SubscriptionStatusPastDue: {SubscriptionStatusActive, SubscriptionStatusCancelled, SubscriptionStatusExpired},
}

// Subscription is a school's commercial standing on the platform. One
// school holds at most one live subscription at a time.
type Subscription struct {
	shared.SchoolAggregateRoot
	Plan             SubscriptionPlan   `gorm:"type:varchar(20);not null"`
	Status           SubscriptionStatus `gorm:"type:varchar(20);not null;index"`
	MonthlyPrice     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PeriodStart      time.Time          `gorm:"not null"`
	PeriodEnd        time.Time          `gorm:"not null"`
	TrialEndsAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
	LastPaymentAt    *time.Time
	PaymentReference string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewTrialSubscription starts a school on a trial period
func NewTrialSubscription(schoolID uuid.UUID, plan SubscriptionPlan, monthlyPrice decimal.Decimal, trialDays int) (*Subscription, error) {
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	}
	if monthlyPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Monthly price cannot be negative")
	}
	if trialDays < 1 || trialDays > 90 {
		return nil, shared.NewDomainError("INVALID_TRIAL", "Trial must run between 1 and 90 days")
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, trialDays)
	return &Subscription{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Plan:                plan,
		Status:              SubscriptionStatusTrial,
		MonthlyPrice:        monthlyPrice,
		PeriodStart:         now,
		PeriodEnd:           trialEnd,
		TrialEndsAt:         &trialEnd,
	}, nil
}

// Activate converts a trial (or recovers a past-due subscription) after a
// successful payment, rolling the billing period forward one month.
func (s *Subscription) Activate(paymentReference string) error {
	if err := subscriptionTransitions.Guard(s.Status, SubscriptionStatusActive); err != nil {
		return err
	}
	if paymentReference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Payment reference is required")
	}

	now := time.Now()
	s.Status = SubscriptionStatusActive
	s.PeriodStart = now
	s.PeriodEnd = now.AddDate(0, 1, 0)
	s.LastPaymentAt = &now
	s.PaymentReference = paymentReference
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// Renew extends an active subscription one month from the current period
// end, keeping billing anchored to the original cycle day.
func (s *Subscription) Renew(paymentReference string) error {
	if s.Status != SubscriptionStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only an active subscription can renew")
	}
	if paymentReference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Payment reference is required")
	}

	now := time.Now()
	s.PeriodStart = s.PeriodEnd
	s.PeriodEnd = s.PeriodEnd.AddDate(0, 1, 0)
	s.LastPaymentAt = &now
	s.PaymentReference = paymentReference
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// MarkPastDue flags a missed payment
func (s *Subscription) MarkPastDue() error {
	if err := subscriptionTransitions.Guard(s.Status, SubscriptionStatusPastDue); err != nil {
		return err
	}
	s.Status = SubscriptionStatusPastDue
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Cancel terminates the subscription at the customer's request. Access
// continues until the period end.
func (s *Subscription) Cancel(reason string) error {
	if err := subscriptionTransitions.Guard(s.Status, SubscriptionStatusCancelled); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	s.Status = SubscriptionStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// Expire ends a subscription whose period has lapsed without payment
func (s *Subscription) Expire(asOf time.Time) error {
	if err := subscriptionTransitions.Guard(s.Status, SubscriptionStatusExpired); err != nil {
		return err
	}
	if asOf.Before(s.PeriodEnd) {
		return shared.NewDomainError("INVALID_STATE", "Subscription period has not ended yet")
	}
	s.Status = SubscriptionStatusExpired
	s.Touch()
	s.IncrementVersion()
	return nil
}

// ChangePlan switches the tier; takes effect immediately with the new price
func (s *Subscription) ChangePlan(plan SubscriptionPlan, monthlyPrice decimal.Decimal) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	}
	if monthlyPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Monthly price cannot be negative")
	}
	if s.Status != SubscriptionStatusTrial && s.Status != SubscriptionStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Plan can only change on a trial or active subscription")
	}
	s.Plan = plan
	s.MonthlyPrice = monthlyPrice
	s.Touch()
	s.IncrementVersion()
	return nil
}

// IsUsable reports whether the school retains platform access
func (s *Subscription) IsUsable(asOf time.Time) bool {
	switch s.Status {
	case SubscriptionStatusTrial, SubscriptionStatusActive, SubscriptionStatusPastDue:
		return true
	case SubscriptionStatusCancelled:
		return asOf.Before(s.PeriodEnd)
	}
	return false
}
