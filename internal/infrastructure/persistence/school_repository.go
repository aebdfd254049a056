package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSchoolRepository implements SchoolRepository using GORM
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewGormSchoolRepository creates a new GormSchoolRepository
func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

func (r *GormSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.School, error) {
	var school identity.School
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &school, nil
}

func (r *GormSchoolRepository) FindBySubdomain(ctx context.Context, subdomain string) (*identity.School, error) {
	var school identity.School
	if err := r.db.WithContext(ctx).
		Where("subdomain = ?", strings.ToLower(strings.TrimSpace(subdomain))).
		First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &school, nil
}

func (r *GormSchoolRepository) FindAll(ctx context.Context, filter identity.SchoolFilter) ([]identity.School, error) {
	var schools []identity.School
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.School{}), filter)
	query = applyOrdering(query, filter.Filter, SchoolSortFields, "name ASC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *GormSchoolRepository) Count(ctx context.Context, filter identity.SchoolFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.School{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSchoolRepository) Save(ctx context.Context, school *identity.School) error {
	return r.db.WithContext(ctx).Save(school).Error
}

func (r *GormSchoolRepository) applyFilter(query *gorm.DB, filter identity.SchoolFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR subdomain ILIKE ?", pattern, pattern)
	}
	return query
}

// GormSubscriptionRepository implements SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*identity.Subscription, error) {
	var sub identity.Subscription
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindCurrentForSchool returns the most recent subscription for a school.
// A school holds at most one live subscription; the latest row by period
// start is authoritative.
func (r *GormSubscriptionRepository) FindCurrentForSchool(ctx context.Context, schoolID uuid.UUID) (*identity.Subscription, error) {
	var sub identity.Subscription
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("period_start DESC").
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubscriptionRepository) FindExpiring(ctx context.Context, cutoff time.Time) ([]identity.Subscription, error) {
	var subs []identity.Subscription
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND period_end < ?",
			[]identity.SubscriptionStatus{identity.SubscriptionStatusTrial, identity.SubscriptionStatusActive},
			cutoff).
		Order("period_end ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *GormSubscriptionRepository) Save(ctx context.Context, subscription *identity.Subscription) error {
	return r.db.WithContext(ctx).Save(subscription).Error
}

// Ensure interface compliance
var (
	_ identity.SchoolRepository       = (*GormSchoolRepository)(nil)
	_ identity.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
)
