package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionService manages tenant billing subscriptions
type SubscriptionService struct {
	subscriptionRepo identity.SubscriptionRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subscriptionRepo identity.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subscriptionRepo: subscriptionRepo}
}

// SubscriptionResponse represents subscription data returned to clients
type SubscriptionResponse struct {
	ID            uuid.UUID       `json:"id"`
	SchoolID      uuid.UUID       `json:"school_id"`
	Plan          string          `json:"plan"`
	Status        string          `json:"status"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TrialEndsAt   *time.Time      `json:"trial_ends_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	LastPaymentAt *time.Time      `json:"last_payment_at,omitempty"`
}

// PaymentReferenceRequest carries the billing payment reference
type PaymentReferenceRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required,max=100"`
}

// CancelSubscriptionRequest carries the cancellation reason
type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ChangePlanRequest moves the school to another plan
type ChangePlanRequest struct {
	Plan         string          `json:"plan" binding:"required,oneof=STARTER STANDARD ENTERPRISE"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" binding:"required"`
}

// GetCurrentSubscription returns the school's current subscription
func (s *SubscriptionService) GetCurrentSubscription(ctx context.Context, schoolID uuid.UUID) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindCurrentForSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "no subscription for school")
	}
	return toSubscriptionResponse(subscription), nil
}

// ActivateSubscription converts a trial on first payment
func (s *SubscriptionService) ActivateSubscription(ctx context.Context, schoolID, id uuid.UUID, req PaymentReferenceRequest) (*SubscriptionResponse, error) {
	return s.mutate(ctx, schoolID, id, func(sub *identity.Subscription) error {
		return sub.Activate(req.PaymentReference)
	})
}

// RenewSubscription rolls the billing period forward on payment
func (s *SubscriptionService) RenewSubscription(ctx context.Context, schoolID, id uuid.UUID, req PaymentReferenceRequest) (*SubscriptionResponse, error) {
	return s.mutate(ctx, schoolID, id, func(sub *identity.Subscription) error {
		return sub.Renew(req.PaymentReference)
	})
}

// MarkSubscriptionPastDue flags a missed payment
func (s *SubscriptionService) MarkSubscriptionPastDue(ctx context.Context, schoolID, id uuid.UUID) (*SubscriptionResponse, error) {
	return s.mutate(ctx, schoolID, id, (*identity.Subscription).MarkPastDue)
}

// CancelSubscription cancels; access runs to the end of the paid period
func (s *SubscriptionService) CancelSubscription(ctx context.Context, schoolID, id uuid.UUID, req CancelSubscriptionRequest) (*SubscriptionResponse, error) {
	return s.mutate(ctx, schoolID, id, func(sub *identity.Subscription) error {
		return sub.Cancel(req.Reason)
	})
}

// ChangePlan moves the school to another plan mid-cycle
func (s *SubscriptionService) ChangePlan(ctx context.Context, schoolID, id uuid.UUID, req ChangePlanRequest) (*SubscriptionResponse, error) {
	return s.mutate(ctx, schoolID, id, func(sub *identity.Subscription) error {
		return sub.ChangePlan(identity.SubscriptionPlan(req.Plan), req.MonthlyPrice)
	})
}

// ExpireLapsed sweeps subscriptions whose period ended at or before the
// cutoff and expires them. Returns the number expired. Meant to run on a
// schedule.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context, asOf time.Time) (int, error) {
	lapsed, err := s.subscriptionRepo.FindExpiring(ctx, asOf)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range lapsed {
		if err := lapsed[i].Expire(asOf); err != nil {
			continue
		}
		if err := s.subscriptionRepo.Save(ctx, &lapsed[i]); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

func (s *SubscriptionService) mutate(ctx context.Context, schoolID, id uuid.UUID, op func(*identity.Subscription) error) (*SubscriptionResponse, error) {
	subscription, err := s.subscriptionRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "subscription not found")
	}
	if err := op(subscription); err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, err
	}
	return toSubscriptionResponse(subscription), nil
}

func toSubscriptionResponse(sub *identity.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:            sub.ID,
		SchoolID:      sub.SchoolID,
		Plan:          string(sub.Plan),
		Status:        string(sub.Status),
		MonthlyPrice:  sub.MonthlyPrice,
		PeriodStart:   sub.PeriodStart,
		PeriodEnd:     sub.PeriodEnd,
		TrialEndsAt:   sub.TrialEndsAt,
		CancelledAt:   sub.CancelledAt,
		CancelReason:  sub.CancelReason,
		LastPaymentAt: sub.LastPaymentAt,
	}
}
