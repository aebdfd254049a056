package identity

import (
	"github.com/elimu/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuthContext is the caller's identity and capabilities, resolved from the
// bearer token once per request and passed explicitly to every service
// method. There is no ambient tenant state.
type AuthContext struct {
	UserID       uuid.UUID
	SchoolID     uuid.UUID
	IsSuperAdmin bool
	Permissions  []Permission
}

// CanAccessSchool checks tenant scoping: super admins reach every school,
// everyone else only their own.
func (a AuthContext) CanAccessSchool(schoolID uuid.UUID) bool {
	if a.IsSuperAdmin {
		return true
	}
	return a.SchoolID == schoolID
}

// RequireSchool returns a TENANT_MISMATCH error when the caller may not
// act on the given school
func (a AuthContext) RequireSchool(schoolID uuid.UUID) error {
	if !a.CanAccessSchool(schoolID) {
		return shared.ErrTenantMismatch
	}
	return nil
}

// HasPermission checks a capability. Super admins implicitly hold all
// permissions.
func (a AuthContext) HasPermission(p Permission) bool {
	if a.IsSuperAdmin {
		return true
	}
	for _, held := range a.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// RequirePermission returns a PERMISSION_DENIED error when the capability
// is missing
func (a AuthContext) RequirePermission(p Permission) error {
	if !a.HasPermission(p) {
		return shared.NewDomainError("PERMISSION_DENIED", "Missing permission: "+string(p))
	}
	return nil
}
