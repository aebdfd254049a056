package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoleService manages roles and their granted permissions
type RoleService struct {
	roleRepo identity.RoleRepository
	registry *identity.PermissionRegistry
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo identity.RoleRepository, registry *identity.PermissionRegistry) *RoleService {
	return &RoleService{roleRepo: roleRepo, registry: registry}
}

// RoleResponse represents role data returned to clients
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	SchoolID    uuid.UUID `json:"school_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// PermissionResponse is one catalogue entry
type PermissionResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreateRoleRequest defines a custom role
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,max=50"`
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest renames a role
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// SetRolePermissionsRequest replaces a role's grants
type SetRolePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// ListPermissionCatalogue returns every permission the system recognises
func (s *RoleService) ListPermissionCatalogue() []PermissionResponse {
	codes := s.registry.All()
	out := make([]PermissionResponse, 0, len(codes))
	for _, code := range codes {
		def, _ := s.registry.Lookup(code)
		out = append(out, PermissionResponse{Code: string(def.Code), Description: def.Description})
	}
	return out
}

// CreateRole creates a custom role with catalogue-validated permissions
func (s *RoleService) CreateRole(ctx context.Context, schoolID uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	existing, err := s.roleRepo.FindByCode(ctx, schoolID, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "role code already in use")
	}

	role, err := identity.NewRole(schoolID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := role.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if len(req.Permissions) > 0 {
		if err := role.SetPermissions(s.registry, toPermissions(req.Permissions)); err != nil {
			return nil, err
		}
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	return toRoleResponse(role), nil
}

// GetRoleByID retrieves a role by ID
func (s *RoleService) GetRoleByID(ctx context.Context, schoolID, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.findRole(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toRoleResponse(role), nil
}

// UpdateRole renames a role
func (s *RoleService) UpdateRole(ctx context.Context, schoolID, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.findRole(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := role.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	return toRoleResponse(role), nil
}

// SetRolePermissions replaces a role's grants with a validated set
func (s *RoleService) SetRolePermissions(ctx context.Context, schoolID, id uuid.UUID, req SetRolePermissionsRequest) (*RoleResponse, error) {
	role, err := s.findRole(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := role.SetPermissions(s.registry, toPermissions(req.Permissions)); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	return toRoleResponse(role), nil
}

// DeleteRole removes a non-system role
func (s *RoleService) DeleteRole(ctx context.Context, schoolID, id uuid.UUID) error {
	role, err := s.findRole(ctx, schoolID, id)
	if err != nil {
		return err
	}
	if !role.CanDelete() {
		return shared.NewDomainError("SYSTEM_ROLE", "system roles cannot be deleted")
	}
	return s.roleRepo.DeleteForSchool(ctx, schoolID, id)
}

// ListRoles lists a school's roles
func (s *RoleService) ListRoles(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) ([]RoleResponse, int64, error) {
	roles, err := s.roleRepo.FindAllForSchool(ctx, schoolID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.roleRepo.CountForSchool(ctx, schoolID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		responses = append(responses, *toRoleResponse(&roles[i]))
	}
	return responses, total, nil
}

func (s *RoleService) findRole(ctx context.Context, schoolID, id uuid.UUID) (*identity.Role, error) {
	role, err := s.roleRepo.FindByIDForSchool(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "role not found")
	}
	return role, nil
}

func toPermissions(codes []string) []identity.Permission {
	perms := make([]identity.Permission, 0, len(codes))
	for _, c := range codes {
		perms = append(perms, identity.Permission(c))
	}
	return perms
}

func toRoleResponse(r *identity.Role) *RoleResponse {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, string(p))
	}
	return &RoleResponse{
		ID:          r.ID,
		SchoolID:    r.SchoolID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
	}
}
