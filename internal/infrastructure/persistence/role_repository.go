package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM.
// Permission grants live in the role_permissions join table and are loaded
// onto Role.Permissions explicitly since the field is not GORM-mapped.
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

func (r *GormRoleRepository) FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadPermissions(ctx, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND code = ?", schoolID, code).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadPermissions(ctx, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) FindByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]identity.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var roles []identity.Role
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id IN ?", schoolID, ids).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	for i := range roles {
		if err := r.loadPermissions(ctx, &roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *GormRoleRepository) FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) ([]identity.Role, error) {
	var roles []identity.Role
	query := r.applySearch(r.db.WithContext(ctx).Model(&identity.Role{}).
		Where("school_id = ?", schoolID), filter).
		Order("code ASC")
	query = applyPagination(query, filter)

	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	for i := range roles {
		if err := r.loadPermissions(ctx, &roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *GormRoleRepository) CountForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&identity.Role{}).
		Where("school_id = ?", schoolID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(role).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).
			Delete(&identity.RolePermission{}).Error; err != nil {
			return err
		}
		for _, perm := range role.Permissions {
			grant := identity.RolePermission{
				RoleID:     role.ID,
				Permission: perm,
				CreatedAt:  time.Now(),
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRoleRepository) DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).
			Delete(&identity.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).
			Delete(&identity.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ? AND id = ?", schoolID, id).
			Delete(&identity.Role{}).Error
	})
}

func (r *GormRoleRepository) loadPermissions(ctx context.Context, role *identity.Role) error {
	var permissions []identity.Permission
	if err := r.db.WithContext(ctx).
		Model(&identity.RolePermission{}).
		Select("permission").
		Where("role_id = ?", role.ID).
		Scan(&permissions).Error; err != nil {
		return err
	}
	role.Permissions = permissions
	return nil
}

func (r *GormRoleRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure interface compliance
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
