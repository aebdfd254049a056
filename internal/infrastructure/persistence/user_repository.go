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

// GormUserRepository implements UserRepository using GORM.
// Role assignments live in the user_roles join table and are loaded onto
// User.RoleIDs explicitly since the field is not GORM-mapped.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter identity.UserFilter) ([]identity.User, error) {
	var users []identity.User
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.User{}).
		Where("school_id = ?", schoolID), filter)
	query = applyOrdering(query, filter.Filter, UserSortFields, "full_name ASC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if err := r.loadRoleIDs(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *GormUserRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter identity.UserFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.User{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).
			Delete(&identity.UserRole{}).Error; err != nil {
			return err
		}
		// Super admins hold no tenant role assignments
		if user.SchoolID == nil {
			return nil
		}
		for _, roleID := range user.RoleIDs {
			assignment := identity.UserRole{
				UserID:    user.ID,
				RoleID:    roleID,
				SchoolID:  *user.SchoolID,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormUserRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).
			Delete(&identity.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ? AND id = ?", schoolID, id).
			Delete(&identity.User{}).Error
	})
}

func (r *GormUserRepository) loadRoleIDs(ctx context.Context, user *identity.User) error {
	var roleIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&identity.UserRole{}).
		Select("role_id").
		Where("user_id = ?", user.ID).
		Scan(&roleIDs).Error; err != nil {
		return err
	}
	user.RoleIDs = roleIDs
	return nil
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter identity.UserFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RoleID != nil {
		query = query.Where(
			"id IN (SELECT user_id FROM user_roles WHERE role_id = ?)", *filter.RoleID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure interface compliance
var _ identity.UserRepository = (*GormUserRepository)(nil)
