package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elimu/backend/internal/domain/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

func (r *GormExpenseRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*finance.Expense, error) {
	var expense finance.Expense
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *GormExpenseRepository) FindByExpenseNumber(ctx context.Context, schoolID uuid.UUID, expenseNumber string) (*finance.Expense, error) {
	var expense finance.Expense
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND expense_number = ?", schoolID, expenseNumber).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *GormExpenseRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	var expenses []finance.Expense
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Expense{}).
		Where("school_id = ?", schoolID), filter)
	query = applyOrdering(query, filter.Filter, ExpenseSortFields, "incurred_at DESC, expense_number DESC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *GormExpenseRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter finance.ExpenseFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&finance.Expense{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateExpenseNumber produces the next number in EXP-YYYY-NNNNN format
func (r *GormExpenseRepository) GenerateExpenseNumber(ctx context.Context, schoolID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("EXP-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &finance.Expense{}, "expense_number", schoolID, prefix)
}

func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

// DeleteForSchool removes a draft expense
func (r *GormExpenseRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		Delete(&finance.Expense{}).Error
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("incurred_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("incurred_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("expense_number ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure interface compliance
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
