package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var roleCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,49}$`)

// Role owns a set of permission strings within one school. System roles
// are seeded at school registration and cannot be deleted.
type Role struct {
	shared.SchoolAggregateRoot
	Code        string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_school_code,priority:2"`
	Name        string       `gorm:"type:varchar(100);not null"`
	Description string       `gorm:"type:varchar(500)"`
	IsSystem    bool         `gorm:"not null;default:false"`
	Permissions []Permission `gorm:"-"` // Loaded from role_permissions by the repository
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// RolePermission links a role to one granted permission
type RolePermission struct {
	RoleID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Permission Permission `gorm:"type:varchar(100);primaryKey"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (RolePermission) TableName() string {
	return "role_permissions"
}

// NewRole creates a custom role for a school
func NewRole(schoolID uuid.UUID, code, name string) (*Role, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !roleCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be lowercase letters, digits and underscores")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}

	return &Role{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Permissions:         make([]Permission, 0),
	}, nil
}

// NewSystemRole creates a seeded role that cannot be deleted
func NewSystemRole(schoolID uuid.UUID, code, name string) (*Role, error) {
	role, err := NewRole(schoolID, code, name)
	if err != nil {
		return nil, err
	}
	role.IsSystem = true
	return role, nil
}

// Grant adds a permission to the role. The permission must exist in the
// catalogue.
func (r *Role) Grant(registry *PermissionRegistry, p Permission) error {
	if !registry.Knows(p) {
		return shared.NewDomainError("UNKNOWN_PERMISSION", "Permission is not in the catalogue: "+string(p))
	}
	for _, existing := range r.Permissions {
		if existing == p {
			return shared.NewDomainError("ALREADY_GRANTED", "Role already has this permission")
		}
	}
	r.Permissions = append(r.Permissions, p)
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Revoke removes a permission from the role
func (r *Role) Revoke(p Permission) error {
	kept := make([]Permission, 0, len(r.Permissions))
	found := false
	for _, existing := range r.Permissions {
		if existing == p {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return shared.NewDomainError("NOT_GRANTED", "Role does not have this permission")
	}
	r.Permissions = kept
	r.Touch()
	r.IncrementVersion()
	return nil
}

// SetPermissions replaces the role's grants wholesale
func (r *Role) SetPermissions(registry *PermissionRegistry, perms []Permission) error {
	seen := make(map[Permission]bool, len(perms))
	unique := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if !registry.Knows(p) {
			return shared.NewDomainError("UNKNOWN_PERMISSION", "Permission is not in the catalogue: "+string(p))
		}
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	r.Permissions = unique
	r.Touch()
	r.IncrementVersion()
	return nil
}

// HasPermission checks if the role grants a permission
func (r *Role) HasPermission(p Permission) bool {
	for _, existing := range r.Permissions {
		if existing == p {
			return true
		}
	}
	return false
}

// Update changes the role's display name and description
func (r *Role) Update(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	r.Name = strings.TrimSpace(name)
	r.Description = description
	r.Touch()
	r.IncrementVersion()
	return nil
}

// CanDelete reports whether the role may be removed
func (r *Role) CanDelete() bool {
	return !r.IsSystem
}
