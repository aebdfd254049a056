package school

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveStudent(t *testing.T, level CBCLevel) *Student {
	t.Helper()
	s, err := NewStudent(uuid.New(), "ADM-2026-0042", "wanjiku", "KAMAU",
		time.Date(2018, 5, 12, 0, 0, 0, 0, time.UTC), level)
	require.NoError(t, err)
	return s
}

func TestNewStudent(t *testing.T) {
	t.Run("valid student is active and normalized", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade3)
		assert.Equal(t, StudentStatusActive, s.Status)
		assert.Equal(t, "Wanjiku", s.FirstName)
		assert.Equal(t, "Kamau", s.LastName)
		assert.Equal(t, "Wanjiku Kamau", s.FullName())
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("rejects future date of birth", func(t *testing.T) {
		_, err := NewStudent(uuid.New(), "ADM-1", "A", "B",
			time.Now().AddDate(1, 0, 0), CBCLevelPP1)
		require.Error(t, err)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewStudent(uuid.New(), "ADM-1", "A", "B",
			time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), CBCLevel("FORM_4"))
		require.Error(t, err)
	})
}

func TestStudent_Guardians(t *testing.T) {
	s := newActiveStudent(t, CBCLevelGrade1)

	require.NoError(t, s.AddGuardian("mary KAMAU", "Mother", "+254712345678", "mary@example.com"))
	require.NoError(t, s.AddGuardian("john kamau", "Father", "+254787654321", ""))

	assert.True(t, s.Guardians[0].IsPrimary)
	assert.False(t, s.Guardians[1].IsPrimary)
	assert.Equal(t, "Mary Kamau", s.Guardians[0].FullName)

	require.Error(t, s.AddGuardian("", "Aunt", "+254700000000", ""))
	require.Error(t, s.AddGuardian("Jane", "Aunt", "", ""))
}

func TestStudent_Promote(t *testing.T) {
	t.Run("moves to the next level", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelPP2)
		require.NoError(t, s.Promote())
		assert.Equal(t, CBCLevelGrade1, s.Level)
	})

	t.Run("final level cannot promote", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade12)
		require.Error(t, s.Promote())
	})

	t.Run("suspended student cannot promote", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade4)
		require.NoError(t, s.Suspend())
		require.Error(t, s.Promote())
	})
}

func TestStudent_StatusTransitions(t *testing.T) {
	t.Run("suspend and reinstate", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade5)
		require.NoError(t, s.Suspend())
		assert.Equal(t, StudentStatusSuspended, s.Status)
		require.NoError(t, s.Reinstate())
		assert.Equal(t, StudentStatusActive, s.Status)
	})

	t.Run("graduation is terminal", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade12)
		require.NoError(t, s.Graduate())
		assert.NotNil(t, s.GraduatedAt)
		require.Error(t, s.Suspend())
		require.Error(t, s.Withdraw("moved away"))
	})

	t.Run("withdrawal requires a reason and is terminal", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade2)
		require.Error(t, s.Withdraw(""))
		require.NoError(t, s.Withdraw("family relocated"))
		assert.Equal(t, "family relocated", s.WithdrawReason)
		require.Error(t, s.Reinstate())
	})

	t.Run("suspended student cannot graduate", func(t *testing.T) {
		s := newActiveStudent(t, CBCLevelGrade12)
		require.NoError(t, s.Suspend())
		require.Error(t, s.Graduate())
	})
}
