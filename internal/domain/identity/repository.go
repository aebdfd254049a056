package identity

import (
	"context"
	"time"

	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SchoolFilter defines filtering options for tenant queries
type SchoolFilter struct {
	shared.Filter
	Status *SchoolStatus
}

// SchoolRepository defines the interface for tenant persistence
type SchoolRepository interface {
	// FindByID finds a school by ID
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)

	// FindBySubdomain finds a school by its subdomain
	FindBySubdomain(ctx context.Context, subdomain string) (*School, error)

	// FindAll lists schools with filtering (super admin only)
	FindAll(ctx context.Context, filter SchoolFilter) ([]School, error)

	// Count counts schools matching the filter
	Count(ctx context.Context, filter SchoolFilter) (int64, error)

	// Save creates or updates a school
	Save(ctx context.Context, school *School) error
}

// UserFilter defines filtering options for user queries
type UserFilter struct {
	shared.Filter
	Status *UserStatus
	RoleID *uuid.UUID
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID with role assignments loaded
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email with role assignments loaded
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAllForSchool lists users for a school with filtering
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter UserFilter) ([]User, error)

	// CountForSchool counts users matching the filter
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter UserFilter) (int64, error)

	// Save creates or updates a user and its role assignments
	Save(ctx context.Context, user *User) error

	// DeleteForSchool deletes a user within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	// FindByIDForSchool finds a role with its permissions loaded
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Role, error)

	// FindByCode finds a role by code within a school
	FindByCode(ctx context.Context, schoolID uuid.UUID, code string) (*Role, error)

	// FindByIDs loads multiple roles with permissions, for building an
	// AuthContext from a user's assignments
	FindByIDs(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]Role, error)

	// FindAllForSchool lists roles for a school
	FindAllForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) ([]Role, error)

	// CountForSchool counts roles for a school
	CountForSchool(ctx context.Context, schoolID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a role and its permission grants
	Save(ctx context.Context, role *Role) error

	// DeleteForSchool deletes a non-system role within a school
	DeleteForSchool(ctx context.Context, schoolID, id uuid.UUID) error
}

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// FindByIDForSchool finds a subscription by ID within a school
	FindByIDForSchool(ctx context.Context, schoolID, id uuid.UUID) (*Subscription, error)

	// FindCurrentForSchool finds the school's live subscription
	FindCurrentForSchool(ctx context.Context, schoolID uuid.UUID) (*Subscription, error)

	// FindExpiring lists trial or active subscriptions whose period ends
	// before the cutoff, for the expiry sweep
	FindExpiring(ctx context.Context, cutoff time.Time) ([]Subscription, error)

	// Save creates or updates a subscription
	Save(ctx context.Context, subscription *Subscription) error
}
