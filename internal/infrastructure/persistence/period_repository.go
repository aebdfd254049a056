package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/elimu/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountingPeriodRepository implements AccountingPeriodRepository using GORM
type GormAccountingPeriodRepository struct {
	db *gorm.DB
}

// NewGormAccountingPeriodRepository creates a new GormAccountingPeriodRepository
func NewGormAccountingPeriodRepository(db *gorm.DB) *GormAccountingPeriodRepository {
	return &GormAccountingPeriodRepository{db: db}
}

// FindByIDForSchool finds a period by ID within a school
func (r *GormAccountingPeriodRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*accounting.AccountingPeriod, error) {
	var period accounting.AccountingPeriod
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindByDate finds the period containing the given date. Period ranges are
// inclusive on both ends.
func (r *GormAccountingPeriodRepository) FindByDate(ctx context.Context, schoolID uuid.UUID, date time.Time) (*accounting.AccountingPeriod, error) {
	var period accounting.AccountingPeriod
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND start_date <= ? AND end_date >= ?", schoolID, date, date).
		Order("start_date ASC").
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindByYearAndNumber finds a period by fiscal year and period number
func (r *GormAccountingPeriodRepository) FindByYearAndNumber(ctx context.Context, schoolID uuid.UUID, fiscalYear, periodNumber int) (*accounting.AccountingPeriod, error) {
	var period accounting.AccountingPeriod
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND fiscal_year = ? AND period_number = ?", schoolID, fiscalYear, periodNumber).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindAllForSchool lists periods for a school with filtering
func (r *GormAccountingPeriodRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.PeriodFilter) ([]accounting.AccountingPeriod, error) {
	var periods []accounting.AccountingPeriod
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.AccountingPeriod{}).
		Where("school_id = ?", schoolID), filter).
		Order("fiscal_year ASC, period_number ASC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// CountForSchool counts periods matching the filter
func (r *GormAccountingPeriodRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter accounting.PeriodFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.AccountingPeriod{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a period
func (r *GormAccountingPeriodRepository) Save(ctx context.Context, period *accounting.AccountingPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *GormAccountingPeriodRepository) applyFilter(query *gorm.DB, filter accounting.PeriodFilter) *gorm.DB {
	if filter.FiscalYear != nil {
		query = query.Where("fiscal_year = ?", *filter.FiscalYear)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure interface compliance
var _ accounting.AccountingPeriodRepository = (*GormAccountingPeriodRepository)(nil)
