package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentPlanService handles instalment plan use cases
type PaymentPlanService struct {
	planRepo    finance.PaymentPlanRepository
	invoiceRepo finance.InvoiceRepository
}

// NewPaymentPlanService creates a new payment plan service
func NewPaymentPlanService(planRepo finance.PaymentPlanRepository, invoiceRepo finance.InvoiceRepository) *PaymentPlanService {
	return &PaymentPlanService{planRepo: planRepo, invoiceRepo: invoiceRepo}
}

// InstalmentResponse represents one scheduled instalment
type InstalmentResponse struct {
	Sequence int             `json:"sequence"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  time.Time       `json:"due_date"`
	Status   string          `json:"status"`
	PaidAt   *time.Time      `json:"paid_at,omitempty"`
}

// PaymentPlanResponse represents plan data returned to clients
type PaymentPlanResponse struct {
	ID          uuid.UUID            `json:"id"`
	SchoolID    uuid.UUID            `json:"school_id"`
	InvoiceID   uuid.UUID            `json:"invoice_id"`
	StudentID   uuid.UUID            `json:"student_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Outstanding decimal.Decimal     `json:"outstanding"`
	Instalments []InstalmentResponse `json:"instalments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// CreatePaymentPlanRequest splits an invoice balance into instalments
type CreatePaymentPlanRequest struct {
	InvoiceID    uuid.UUID `json:"invoice_id" binding:"required"`
	Count        int       `json:"count" binding:"required,min=2,max=12"`
	FirstDueDate time.Time `json:"first_due_date" binding:"required"`
}

// CreatePaymentPlan schedules the invoice's outstanding balance across
// monthly instalments. One plan per invoice.
func (s *PaymentPlanService) CreatePaymentPlan(ctx context.Context, schoolID uuid.UUID, req CreatePaymentPlanRequest) (*PaymentPlanResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForSchool(ctx, schoolID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "invoice not found")
	}
	if invoice.Status != finance.InvoiceStatusIssued && invoice.Status != finance.InvoiceStatusPartiallyPaid {
		return nil, shared.NewDomainError("INVALID_STATE", "only open invoices can be placed on a plan")
	}

	existing, err := s.planRepo.FindByInvoice(ctx, schoolID, invoice.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "invoice already has a payment plan")
	}

	total := valueobject.NewMoneyKES(invoice.AmountDue())
	plan, err := finance.NewPaymentPlan(schoolID, invoice.ID, invoice.StudentID, total, req.Count, req.FirstDueDate)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return toPaymentPlanResponse(plan), nil
}

// GetPlanByID retrieves a plan by ID
func (s *PaymentPlanService) GetPlanByID(ctx context.Context, schoolID, id uuid.UUID) (*PaymentPlanResponse, error) {
	plan, err := s.findPlan(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toPaymentPlanResponse(plan), nil
}

// GetPlanForInvoice retrieves the plan attached to an invoice, if any
func (s *PaymentPlanService) GetPlanForInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) (*PaymentPlanResponse, error) {
	plan, err := s.planRepo.FindByInvoice(ctx, schoolID, invoiceID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "no payment plan for invoice")
	}
	return toPaymentPlanResponse(plan), nil
}

// MarkInstalmentPaid records one instalment as settled
func (s *PaymentPlanService) MarkInstalmentPaid(ctx context.Context, schoolID, id uuid.UUID, sequence int) (*PaymentPlanResponse, error) {
	plan, err := s.findPlan(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.MarkInstalmentPaid(sequence); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return toPaymentPlanResponse(plan), nil
}

// SweepOverdue flags pending instalments past their due date across all
// of the school's plans. Returns the number of instalments flagged.
func (s *PaymentPlanService) SweepOverdue(ctx context.Context, schoolID uuid.UUID, asOf time.Time) (int, error) {
	plans, err := s.planRepo.FindAllForSchool(ctx, schoolID, shared.Filter{})
	if err != nil {
		return 0, err
	}
	flagged := 0
	for i := range plans {
		n := plans[i].MarkOverdue(asOf)
		if n == 0 {
			continue
		}
		if err := s.planRepo.Save(ctx, &plans[i]); err != nil {
			return flagged, err
		}
		flagged += n
	}
	return flagged, nil
}

func (s *PaymentPlanService) findPlan(ctx context.Context, schoolID, id uuid.UUID) (*finance.PaymentPlan, error) {
	plan, err := s.planRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "payment plan not found")
	}
	return plan, nil
}

func toPaymentPlanResponse(p *finance.PaymentPlan) *PaymentPlanResponse {
	instalments := make([]InstalmentResponse, 0, len(p.Instalments))
	for _, inst := range p.Instalments {
		instalments = append(instalments, InstalmentResponse{
			Sequence: inst.Sequence,
			Amount:   inst.Amount,
			DueDate:  inst.DueDate,
			Status:   string(inst.Status),
			PaidAt:   inst.PaidAt,
		})
	}
	return &PaymentPlanResponse{
		ID:          p.ID,
		SchoolID:    p.SchoolID,
		InvoiceID:   p.InvoiceID,
		StudentID:   p.StudentID,
		TotalAmount: p.TotalAmount,
		Outstanding: p.Outstanding(),
		Instalments: instalments,
		CreatedAt:   p.CreatedAt,
	}
}
