package persistence

import (
	"context"
	"errors"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBudgetRepository implements BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByIDForSchool finds a budget by ID within a school
func (r *GormBudgetRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.Budget, error) {
	var budget accounting.Budget
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Revisions").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// FindByPeriod finds the budget for a period, if any
func (r *GormBudgetRepository) FindByPeriod(ctx context.Context, schoolID, periodID uuid.UUID) (*accounting.Budget, error) {
	var budget accounting.Budget
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Revisions").
		Where("school_id = ? AND period_id = ?", schoolID, periodID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// FindAllForSchool lists budgets for a school with filtering
func (r *GormBudgetRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.BudgetFilter) ([]accounting.Budget, error) {
	var budgets []accounting.Budget
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.Budget{}).
		Where("school_id = ?", schoolID), filter).
		Preload("Lines").
		Order("fiscal_year DESC, created_at DESC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// CountForSchool counts budgets matching the filter
func (r *GormBudgetRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.BudgetFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.Budget{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a budget with its lines and revisions
func (r *GormBudgetRepository) Save(ctx context.Context, budget *accounting.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Revisions").Save(budget).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(budget.Lines))
		for i := range budget.Lines {
			lineIDs[i] = budget.Lines[i].ID
		}
		cleanup := tx.Where("budget_id = ?", budget.ID)
		if len(lineIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", lineIDs)
		}
		if err := cleanup.Delete(&accounting.BudgetLine{}).Error; err != nil {
			return err
		}
		for i := range budget.Lines {
			budget.Lines[i].BudgetID = budget.ID
			if err := tx.Save(&budget.Lines[i]).Error; err != nil {
				return err
			}
		}

		// Revisions are append-only: never deleted, only new ones saved.
		for i := range budget.Revisions {
			budget.Revisions[i].BudgetID = budget.ID
			if err := tx.Save(&budget.Revisions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteForSchool deletes a draft budget within a school
func (r *GormBudgetRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", id).Delete(&accounting.BudgetLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", id).Delete(&accounting.BudgetRevision{}).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ? AND id = ?", schoolID, id).
			Delete(&accounting.Budget{}).Error
	})
}

func (r *GormBudgetRepository) applyFilter(query *gorm.DB, filter accounting.BudgetFilter) *gorm.DB {
	if filter.FiscalYear != nil {
		query = query.Where("fiscal_year = ?", *filter.FiscalYear)
	}
	if filter.PeriodID != nil {
		query = query.Where("period_id = ?", *filter.PeriodID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure interface compliance
var _ accounting.BudgetRepository = (*GormBudgetRepository)(nil)
