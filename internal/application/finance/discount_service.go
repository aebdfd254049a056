package finance

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/school"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountService manages student fee discounts
type DiscountService struct {
	discountRepo finance.StudentDiscountRepository
	studentRepo  school.StudentRepository
}

// NewDiscountService creates a new discount service
func NewDiscountService(discountRepo finance.StudentDiscountRepository, studentRepo school.StudentRepository) *DiscountService {
	return &DiscountService{discountRepo: discountRepo, studentRepo: studentRepo}
}

// DiscountResponse represents discount data returned to clients
type DiscountResponse struct {
	ID        uuid.UUID       `json:"id"`
	SchoolID  uuid.UUID       `json:"school_id"`
	StudentID uuid.UUID       `json:"student_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateDiscountRequest grants a student a recurring fee discount
type CreateDiscountRequest struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	Name      string          `json:"name" binding:"required,max=100"`
	Type      string          `json:"type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value     decimal.Decimal `json:"value" binding:"required"`
}

// CreateDiscount grants a discount to a student
func (s *DiscountService) CreateDiscount(ctx context.Context, schoolID uuid.UUID, req CreateDiscountRequest) (*DiscountResponse, error) {
	student, err := s.studentRepo.FindByIDForSchool(ctx, schoolID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "student not found")
	}

	discount, err := finance.NewStudentDiscount(schoolID, req.StudentID, req.Name, finance.DiscountType(req.Type), req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.discountRepo.Save(ctx, discount); err != nil {
		return nil, err
	}
	return toDiscountResponse(discount), nil
}

// ListStudentDiscounts lists a student's active discounts
func (s *DiscountService) ListStudentDiscounts(ctx context.Context, schoolID, studentID uuid.UUID) ([]DiscountResponse, error) {
	discounts, err := s.discountRepo.FindActiveByStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]DiscountResponse, 0, len(discounts))
	for i := range discounts {
		responses = append(responses, *toDiscountResponse(&discounts[i]))
	}
	return responses, nil
}

// DeactivateDiscount retires a discount so future invoices ignore it
func (s *DiscountService) DeactivateDiscount(ctx context.Context, schoolID, id uuid.UUID) (*DiscountResponse, error) {
	discount, err := s.discountRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "discount not found")
	}
	discount.Deactivate()
	if err := s.discountRepo.Save(ctx, discount); err != nil {
		return nil, err
	}
	return toDiscountResponse(discount), nil
}

func toDiscountResponse(d *finance.StudentDiscount) *DiscountResponse {
	return &DiscountResponse{
		ID:        d.ID,
		SchoolID:  d.SchoolID,
		StudentID: d.StudentID,
		Name:      d.Name,
		Type:      string(d.Type),
		Value:     d.Value,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
	}
}
