package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *PermissionRegistry {
	t.Helper()
	reg, err := NewPermissionRegistry([]PermissionDefinition{
		{Code: "students.read", Description: "View students"},
		{Code: "students.write", Description: "Manage students"},
		{Code: "accounting.journal.post", Description: "Post journal entries"},
		{Code: "accounting.period.close", Description: "Close accounting periods"},
	})
	require.NoError(t, err)
	return reg
}

func TestNewPermissionRegistry(t *testing.T) {
	t.Run("valid catalogue", func(t *testing.T) {
		reg := testRegistry(t)
		assert.Equal(t, 4, reg.Len())
		assert.True(t, reg.Knows("students.read"))
		assert.False(t, reg.Knows("students.delete"))
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		_, err := NewPermissionRegistry([]PermissionDefinition{{Code: "Students.Read"}})
		require.Error(t, err)
		_, err = NewPermissionRegistry([]PermissionDefinition{{Code: "students"}})
		require.Error(t, err, "needs at least two segments")
	})

	t.Run("rejects duplicates and empty catalogues", func(t *testing.T) {
		_, err := NewPermissionRegistry([]PermissionDefinition{
			{Code: "students.read"}, {Code: "students.read"},
		})
		require.Error(t, err)
		_, err = NewPermissionRegistry(nil)
		require.Error(t, err)
	})

	t.Run("resource and action split", func(t *testing.T) {
		p := Permission("accounting.journal.post")
		assert.Equal(t, "accounting.journal", p.Resource())
		assert.Equal(t, "post", p.Action())
	})
}

func TestRole_Permissions(t *testing.T) {
	reg := testRegistry(t)

	newRole := func(t *testing.T) *Role {
		t.Helper()
		r, err := NewRole(uuid.New(), "bursar", "Bursar")
		require.NoError(t, err)
		return r
	}

	t.Run("grant and revoke", func(t *testing.T) {
		r := newRole(t)
		require.NoError(t, r.Grant(reg, "accounting.journal.post"))
		assert.True(t, r.HasPermission("accounting.journal.post"))

		require.Error(t, r.Grant(reg, "accounting.journal.post"), "double grant")
		require.NoError(t, r.Revoke("accounting.journal.post"))
		assert.False(t, r.HasPermission("accounting.journal.post"))
		require.Error(t, r.Revoke("accounting.journal.post"))
	})

	t.Run("grants outside the catalogue are rejected", func(t *testing.T) {
		r := newRole(t)
		require.Error(t, r.Grant(reg, "payroll.run"))
	})

	t.Run("set permissions deduplicates", func(t *testing.T) {
		r := newRole(t)
		require.NoError(t, r.SetPermissions(reg, []Permission{
			"students.read", "students.read", "students.write",
		}))
		assert.Len(t, r.Permissions, 2)
	})

	t.Run("system roles cannot be deleted", func(t *testing.T) {
		sys, err := NewSystemRole(uuid.New(), "school_admin", "School Administrator")
		require.NoError(t, err)
		assert.False(t, sys.CanDelete())
		assert.True(t, newRole(t).CanDelete())
	})

	t.Run("role code shape", func(t *testing.T) {
		_, err := NewRole(uuid.New(), "Bursar!", "Bursar")
		require.Error(t, err)
	})
}

func TestAuthContext(t *testing.T) {
	schoolID := uuid.New()

	t.Run("tenant scoping", func(t *testing.T) {
		ctx := AuthContext{UserID: uuid.New(), SchoolID: schoolID}
		assert.True(t, ctx.CanAccessSchool(schoolID))
		assert.False(t, ctx.CanAccessSchool(uuid.New()))
		require.Error(t, ctx.RequireSchool(uuid.New()))
	})

	t.Run("super admin bypasses tenant checks", func(t *testing.T) {
		ctx := AuthContext{UserID: uuid.New(), IsSuperAdmin: true}
		assert.True(t, ctx.CanAccessSchool(uuid.New()))
		assert.True(t, ctx.HasPermission("anything.at_all"))
	})

	t.Run("permission checks", func(t *testing.T) {
		ctx := AuthContext{
			UserID:      uuid.New(),
			SchoolID:    schoolID,
			Permissions: []Permission{"students.read"},
		}
		require.NoError(t, ctx.RequirePermission("students.read"))
		require.Error(t, ctx.RequirePermission("students.write"))
	})
}
