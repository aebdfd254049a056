package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChartOfAccountRepository implements ChartOfAccountRepository using GORM
type GormChartOfAccountRepository struct {
	db *gorm.DB
}

// NewGormChartOfAccountRepository creates a new GormChartOfAccountRepository
func NewGormChartOfAccountRepository(db *gorm.DB) *GormChartOfAccountRepository {
	return &GormChartOfAccountRepository{db: db}
}

// FindByIDForSchool finds an account by ID within a school
func (r *GormChartOfAccountRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.ChartOfAccount, error) {
	var account accounting.ChartOfAccount
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds an account by its code within a school
func (r *GormChartOfAccountRepository) FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*accounting.ChartOfAccount, error) {
	var account accounting.ChartOfAccount
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND code = ?", schoolID, strings.TrimSpace(code)).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindAllForSchool lists accounts for a school with filtering
func (r *GormChartOfAccountRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.AccountFilter) ([]accounting.ChartOfAccount, error) {
	var accounts []accounting.ChartOfAccount
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.ChartOfAccount{}).
		Where("school_id = ?", schoolID), filter, true)

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindChildren lists the direct children of a header account
func (r *GormChartOfAccountRepository) FindChildren(ctx context.Context, schoolID, parentID uuid.UUID) ([]accounting.ChartOfAccount, error) {
	var accounts []accounting.ChartOfAccount
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND parent_id = ?", schoolID, parentID).
		Order("code ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountForSchool counts accounts matching the filter
func (r *GormChartOfAccountRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.AccountFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.ChartOfAccount{}).
		Where("school_id = ?", schoolID), filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an account
func (r *GormChartOfAccountRepository) Save(ctx context.Context, account *accounting.ChartOfAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// DeleteForSchool deletes an account within a school
func (r *GormChartOfAccountRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		Delete(&accounting.ChartOfAccount{}).Error
}

func (r *GormChartOfAccountRepository) applyFilter(query *gorm.DB, filter accounting.AccountFilter, paginate bool) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.IsHeader != nil {
		query = query.Where("is_header = ?", *filter.IsHeader)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if paginate {
		query = applyOrdering(query, filter.Filter, AccountSortFields, "code ASC")
		query = applyPagination(query, filter.Filter)
	}
	return query
}

// Ensure interface compliance
var _ accounting.ChartOfAccountRepository = (*GormChartOfAccountRepository)(nil)
