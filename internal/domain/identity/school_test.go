package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchool(t *testing.T) {
	t.Run("valid school", func(t *testing.T) {
		s, err := NewSchool("Elimu Primary", "Elimu-Primary", "admin@elimu.ac.ke")
		require.NoError(t, err)
		assert.Equal(t, "elimu-primary", s.Subdomain)
		assert.Equal(t, SchoolStatusActive, s.Status)
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("bad subdomains rejected", func(t *testing.T) {
		for _, sub := range []string{"", "-leading", "trailing-", "has_underscore", "has space"} {
			_, err := NewSchool("X", sub, "a@b.co")
			require.Error(t, err, "subdomain %q", sub)
		}
	})
}

func TestSchool_Lifecycle(t *testing.T) {
	s, err := NewSchool("Elimu Primary", "elimu", "admin@elimu.ac.ke")
	require.NoError(t, err)

	require.NoError(t, s.Suspend())
	assert.False(t, s.IsActive())
	require.NoError(t, s.Reactivate())
	assert.True(t, s.IsActive())

	require.NoError(t, s.Close())
	require.Error(t, s.Suspend(), "closed school")
	require.Error(t, s.Close(), "already closed")
}
