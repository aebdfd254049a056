package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserService manages staff accounts within a school
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, roleRepo identity.RoleRepository) *UserService {
	return &UserService{userRepo: userRepo, roleRepo: roleRepo}
}

// UserResponse represents user data returned to clients
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	SchoolID    *uuid.UUID  `json:"school_id,omitempty"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Status      string      `json:"status"`
	RoleIDs     []uuid.UUID `json:"role_ids"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateUserRequest creates a staff account
type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	FullName string      `json:"full_name" binding:"required,max=200"`
	RoleIDs  []uuid.UUID `json:"role_ids"`
}

// AssignRolesRequest replaces a user's role assignments
type AssignRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids" binding:"required"`
}

// UserListFilter defines filtering options for user list queries
type UserListFilter struct {
	Status   string     `form:"status"`
	RoleID   *uuid.UUID `form:"role_id"`
	Search   string     `form:"search"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// CreateUser creates a staff account with optional role assignments
func (s *UserService) CreateUser(ctx context.Context, schoolID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE", "email already in use")
	}

	user, err := identity.NewUser(schoolID, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.assignRoles(ctx, schoolID, user, req.RoleIDs); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()
	return toUserResponse(user), nil
}

// GetUserByID retrieves a user scoped to the school
func (s *UserService) GetUserByID(ctx context.Context, schoolID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// AssignRoles replaces a user's role assignments
func (s *UserService) AssignRoles(ctx context.Context, schoolID, id uuid.UUID, req AssignRolesRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	for _, roleID := range append([]uuid.UUID{}, user.RoleIDs...) {
		if err := user.RemoveRole(roleID); err != nil {
			return nil, err
		}
	}
	if err := s.assignRoles(ctx, schoolID, user, req.RoleIDs); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// DeactivateUser disables an account
func (s *UserService) DeactivateUser(ctx context.Context, schoolID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UnlockUser clears a login lockout
func (s *UserService) UnlockUser(ctx context.Context, schoolID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := user.Unlock(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ListUsers lists a school's users with filtering
func (s *UserService) ListUsers(ctx context.Context, schoolID uuid.UUID, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := identity.UserFilter{
		Filter: shared.Filter{
			Search:   filter.Search,
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		RoleID: filter.RoleID,
	}
	if filter.Status != "" {
		st := identity.UserStatus(filter.Status)
		domainFilter.Status = &st
	}

	users, err := s.userRepo.FindAllForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.CountForSchool(ctx, schoolID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}
	return responses, total, nil
}

// assignRoles validates each role belongs to the school before assigning
func (s *UserService) assignRoles(ctx context.Context, schoolID uuid.UUID, user *identity.User, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		role, err := s.roleRepo.FindByIDForSchool(ctx, schoolID, roleID)
		if err != nil {
			return err
		}
		if role == nil {
			return shared.NewDomainError("NOT_FOUND", "role not found")
		}
		if err := user.AssignRole(role.ID); err != nil {
			return err
		}
	}
	return nil
}

// findUser resolves a user and rejects cross-tenant access
func (s *UserService) findUser(ctx context.Context, schoolID, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.SchoolID == nil || *user.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "user not found")
	}
	return user, nil
}

func toUserResponse(u *identity.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		SchoolID:    u.SchoolID,
		Email:       u.Email,
		FullName:    u.FullName,
		Status:      string(u.Status),
		RoleIDs:     u.RoleIDs,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
