package finance

import (
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/elimu/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstalmentStatus tracks settlement of one instalment
type InstalmentStatus string

const (
	InstalmentStatusPending InstalmentStatus = "PENDING"
	InstalmentStatusPaid    InstalmentStatus = "PAID"
	InstalmentStatusOverdue InstalmentStatus = "OVERDUE"
)

// Instalment is one scheduled portion of an invoice under a payment plan
type Instalment struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	PaymentPlanID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Sequence      int              `gorm:"not null"`
	DueDate       time.Time        `gorm:"not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Status        InstalmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (Instalment) TableName() string {
	return "payment_plan_instalments"
}

// PaymentPlan spreads an invoice over equal instalments. Rounding
// remainders land on the last instalment so the schedule always sums to
// the planned total exactly.
type PaymentPlan struct {
	shared.SchoolAggregateRoot
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_plan_school_invoice,priority:2"`
	StudentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Instalments []Instalment    `gorm:"foreignKey:PaymentPlanID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentPlan) TableName() string {
	return "payment_plans"
}

// NewPaymentPlan builds an instalment schedule: count instalments at
// monthly intervals starting from firstDueDate.
func NewPaymentPlan(schoolID uuid.UUID, invoiceID, studentID uuid.UUID, total valueobject.Money, count int, firstDueDate time.Time) (*PaymentPlan, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Plan total must be positive")
	}
	if count < 2 || count > 12 {
		return nil, shared.NewDomainError("INVALID_INSTALMENT_COUNT", "Plan must have between 2 and 12 instalments")
	}
	if firstDueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "First due date is required")
	}

	plan := &PaymentPlan{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		InvoiceID:           invoiceID,
		StudentID:           studentID,
		TotalAmount:         total.Amount(),
		Instalments:         make([]Instalment, 0, count),
	}

	per := total.Amount().Div(decimal.NewFromInt(int64(count))).Round(2)
	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = total.Amount().Sub(allocated)
		}
		allocated = allocated.Add(amount)
		plan.Instalments = append(plan.Instalments, Instalment{
			ID:            uuid.New(),
			PaymentPlanID: plan.ID,
			Sequence:      i + 1,
			DueDate:       firstDueDate.AddDate(0, i, 0),
			Amount:        amount,
			Status:        InstalmentStatusPending,
		})
	}

	return plan, nil
}

// MarkInstalmentPaid settles one instalment by sequence number
func (p *PaymentPlan) MarkInstalmentPaid(sequence int) error {
	for i := range p.Instalments {
		if p.Instalments[i].Sequence != sequence {
			continue
		}
		if p.Instalments[i].Status == InstalmentStatusPaid {
			return shared.NewDomainError("INVALID_STATE", "Instalment is already paid")
		}
		now := time.Now()
		p.Instalments[i].Status = InstalmentStatusPaid
		p.Instalments[i].PaidAt = &now
		p.Touch()
		p.IncrementVersion()
		return nil
	}
	return shared.NewDomainError("NOT_FOUND", "No instalment with the given sequence")
}

// MarkOverdue flags pending instalments whose due date has passed
func (p *PaymentPlan) MarkOverdue(asOf time.Time) int {
	flagged := 0
	for i := range p.Instalments {
		if p.Instalments[i].Status == InstalmentStatusPending && p.Instalments[i].DueDate.Before(asOf) {
			p.Instalments[i].Status = InstalmentStatusOverdue
			flagged++
		}
	}
	if flagged > 0 {
		p.Touch()
	}
	return flagged
}

// Outstanding returns the sum of unpaid instalments
func (p *PaymentPlan) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Instalments {
		if inst.Status != InstalmentStatusPaid {
			total = total.Add(inst.Amount)
		}
	}
	return total
}
