package finance

import (
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType distinguishes percentage discounts from fixed amounts
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixedAmount
}

// StudentDiscount is a standing fee concession for a student, e.g. a
// sibling discount or a bursary
type StudentDiscount struct {
	shared.SchoolAggregateRoot
	StudentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Type      DiscountType    `gorm:"type:varchar(20);not null"`
	Value     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Percent (0-100) or fixed amount
	Active    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StudentDiscount) TableName() string {
	return "student_discounts"
}

// NewStudentDiscount creates a new discount for a student
func NewStudentDiscount(schoolID, studentID uuid.UUID, name string, discountType DiscountType, value decimal.Decimal) (*StudentDiscount, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_NAME", "Discount name cannot be empty")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be PERCENTAGE or FIXED_AMOUNT")
	}
	if !value.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	return &StudentDiscount{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		StudentID:           studentID,
		Name:                name,
		Type:                discountType,
		Value:               value,
		Active:              true,
	}, nil
}

// ComputeDiscount returns the discount applicable to a fee amount. A fixed
// discount is clamped to the fee so the result never exceeds what is
// charged; a percentage discount is value% of the fee.
func (d *StudentDiscount) ComputeDiscount(fee valueobject.Money) valueobject.Money {
	if !d.Active || !fee.IsPositive() {
		return valueobject.Zero(fee.Currency())
	}
	if d.Type == DiscountTypePercentage {
		return fee.Mul(d.Value.Div(decimal.NewFromInt(100))).Round(2)
	}
	// Fixed amount, clamped to the fee
	clamped, _ := valueobject.NewMoney(decimal.Min(d.Value, fee.Amount()), fee.Currency())
	return clamped
}

// Deactivate retires the discount
func (d *StudentDiscount) Deactivate() {
	d.Active = false
	d.Touch()
	d.IncrementVersion()
}
