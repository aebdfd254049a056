package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TokenClaims is what gets baked into an access token
type TokenClaims struct {
	UserID       uuid.UUID
	SchoolID     *uuid.UUID
	Email        string
	IsSuperAdmin bool
	Permissions  []identity.Permission
}

// TokenIssuer mints signed access tokens
type TokenIssuer interface {
	Issue(claims TokenClaims) (token string, expiresAt time.Time, err error)
}

// LockoutPolicy controls failed-login throttling
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultLockoutPolicy locks an account for 15 minutes after 5 failures
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: 5, LockDuration: 15 * time.Minute}
}

// AuthService handles login and password use cases
type AuthService struct {
	userRepo         identity.UserRepository
	roleRepo         identity.RoleRepository
	schoolRepo       identity.SchoolRepository
	subscriptionRepo identity.SubscriptionRepository
	issuer           TokenIssuer
	lockout          LockoutPolicy
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	schoolRepo identity.SchoolRepository,
	subscriptionRepo identity.SubscriptionRepository,
	issuer TokenIssuer,
	lockout LockoutPolicy,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		schoolRepo:       schoolRepo,
		subscriptionRepo: subscriptionRepo,
		issuer:           issuer,
		lockout:          lockout,
	}
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated identity
type LoginResponse struct {
	Token        string     `json:"token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	UserID       uuid.UUID  `json:"user_id"`
	SchoolID     *uuid.UUID `json:"school_id,omitempty"`
	FullName     string     `json:"full_name"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	Permissions  []string   `json:"permissions"`
}

// ChangePasswordRequest rotates the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "invalid email or password")

// Login authenticates a user and issues an access token. Failed attempts
// count toward a temporary lock; the error does not reveal whether the
// email exists.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if user.IsLocked() {
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "account temporarily locked, try again later")
	}
	if !user.CanLogin() {
		return nil, errInvalidCredentials
	}

	if !user.VerifyPassword(req.Password) {
		user.RecordLoginFailure(s.lockout.MaxAttempts, s.lockout.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}
		return nil, errInvalidCredentials
	}

	var permissions []identity.Permission
	if !user.IsSuperAdmin {
		if user.SchoolID == nil {
			return nil, errInvalidCredentials
		}
		if err := s.checkTenantUsable(ctx, *user.SchoolID); err != nil {
			return nil, err
		}
		permissions, err = s.resolvePermissions(ctx, *user.SchoolID, user.RoleIDs)
		if err != nil {
			return nil, err
		}
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(TokenClaims{
		UserID:       user.ID,
		SchoolID:     user.SchoolID,
		Email:        user.Email,
		IsSuperAdmin: user.IsSuperAdmin,
		Permissions:  permissions,
	})
	if err != nil {
		return nil, err
	}

	permStrings := make([]string, 0, len(permissions))
	for _, p := range permissions {
		permStrings = append(permStrings, string(p))
	}

	return &LoginResponse{
		Token:        token,
		ExpiresAt:    expiresAt,
		UserID:       user.ID,
		SchoolID:     user.SchoolID,
		FullName:     user.FullName,
		IsSuperAdmin: user.IsSuperAdmin,
		Permissions:  permStrings,
	}, nil
}

// ChangePassword rotates a user's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewDomainError("NOT_FOUND", "user not found")
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// checkTenantUsable rejects logins into suspended schools or lapsed
// subscriptions. A cancelled subscription keeps access until period end.
func (s *AuthService) checkTenantUsable(ctx context.Context, schoolID uuid.UUID) error {
	school, err := s.schoolRepo.FindByID(ctx, schoolID)
	if err != nil {
		return err
	}
	if school == nil || !school.IsActive() {
		return shared.NewDomainError("SCHOOL_INACTIVE", "school is not active")
	}

	subscription, err := s.subscriptionRepo.FindCurrentForSchool(ctx, schoolID)
	if err != nil {
		return err
	}
	if subscription == nil || !subscription.IsUsable(time.Now()) {
		return shared.NewDomainError("SUBSCRIPTION_LAPSED", "school subscription is not active")
	}
	return nil
}

// resolvePermissions unions the permissions of all the user's roles
func (s *AuthService) resolvePermissions(ctx context.Context, schoolID uuid.UUID, roleIDs []uuid.UUID) ([]identity.Permission, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	roles, err := s.roleRepo.FindByIDs(ctx, schoolID, roleIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[identity.Permission]struct{})
	var permissions []identity.Permission
	for i := range roles {
		for _, p := range roles[i].Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			permissions = append(permissions, p)
		}
	}
	return permissions, nil
}
