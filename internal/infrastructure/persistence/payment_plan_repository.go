package persistence

import (
	"context"
	"errors"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentPlanRepository implements PaymentPlanRepository using GORM
type GormPaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

func (r *GormPaymentPlanRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.PaymentPlan, error) {
	var plan finance.PaymentPlan
	if err := r.db.WithContext(ctx).
		Preload("Instalments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// FindByInvoice finds the plan attached to an invoice. At most one plan per
// invoice exists, enforced by a unique index.
func (r *GormPaymentPlanRepository) FindByInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID) (*finance.PaymentPlan, error) {
	var plan finance.PaymentPlan
	if err := r.db.WithContext(ctx).
		Preload("Instalments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("school_id = ? AND invoice_id = ?", schoolID, invoiceID).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *GormPaymentPlanRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) ([]finance.PaymentPlan, error) {
	var plans []finance.PaymentPlan
	query := r.db.WithContext(ctx).Model(&finance.PaymentPlan{}).
		Where("school_id = ?", schoolID).
		Preload("Instalments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Order("created_at DESC")
	query = applyPagination(query, filter)

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *GormPaymentPlanRepository) Save(ctx context.Context, plan *finance.PaymentPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Instalments").Save(plan).Error; err != nil {
			return err
		}

		instalmentIDs := make([]uuid.UUID, len(plan.Instalments))
		for i := range plan.Instalments {
			instalmentIDs[i] = plan.Instalments[i].ID
		}
		cleanup := tx.Where("payment_plan_id = ?", plan.ID)
		if len(instalmentIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", instalmentIDs)
		}
		if err := cleanup.Delete(&finance.Instalment{}).Error; err != nil {
			return err
		}

		for i := range plan.Instalments {
			plan.Instalments[i].PaymentPlanID = plan.ID
			if err := tx.Save(&plan.Instalments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormStudentDiscountRepository implements StudentDiscountRepository using GORM
type GormStudentDiscountRepository struct {
	db *gorm.DB
}

// NewGormStudentDiscountRepository creates a new GormStudentDiscountRepository
func NewGormStudentDiscountRepository(db *gorm.DB) *GormStudentDiscountRepository {
	return &GormStudentDiscountRepository{db: db}
}

func (r *GormStudentDiscountRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.StudentDiscount, error) {
	var discount finance.StudentDiscount
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *GormStudentDiscountRepository) FindActiveByStudent(ctx context.Context, schoolID, studentID uuid.UUID) ([]finance.StudentDiscount, error) {
	var discounts []finance.StudentDiscount
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND student_id = ? AND active = ?", schoolID, studentID, true).
		Order("created_at ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *GormStudentDiscountRepository) Save(ctx context.Context, discount *finance.StudentDiscount) error {
	return r.db.WithContext(ctx).Save(discount).Error
}

// GormPostingRuleSetRepository implements PostingRuleSetRepository using GORM
type GormPostingRuleSetRepository struct {
	db *gorm.DB
}

// NewGormPostingRuleSetRepository creates a new GormPostingRuleSetRepository
func NewGormPostingRuleSetRepository(db *gorm.DB) *GormPostingRuleSetRepository {
	return &GormPostingRuleSetRepository{db: db}
}

// FindForSchool returns the school's posting rule set, one row per school
func (r *GormPostingRuleSetRepository) FindForSchool(ctx context.Context, schoolID uuid.UUID) (*finance.PostingRuleSet, error) {
	var rules finance.PostingRuleSet
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		First(&rules).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rules, nil
}

func (r *GormPostingRuleSetRepository) Save(ctx context.Context, rules *finance.PostingRuleSet) error {
	return r.db.WithContext(ctx).Save(rules).Error
}

// Ensure interface compliance
var (
	_ finance.PaymentPlanRepository     = (*GormPaymentPlanRepository)(nil)
	_ finance.StudentDiscountRepository = (*GormStudentDiscountRepository)(nil)
	_ finance.PostingRuleSetRepository  = (*GormPostingRuleSetRepository)(nil)
)
