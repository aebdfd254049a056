package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStatus string

const (
	statusDraft  testStatus = "DRAFT"
	statusActive testStatus = "ACTIVE"
	statusClosed testStatus = "CLOSED"
)

var testTable = TransitionTable[testStatus]{
	statusDraft:  {statusActive},
	statusActive: {statusClosed},
}

func TestTransitionTable_CanTransition(t *testing.T) {
	assert.True(t, testTable.CanTransition(statusDraft, statusActive))
	assert.True(t, testTable.CanTransition(statusActive, statusClosed))
	assert.False(t, testTable.CanTransition(statusDraft, statusClosed))
	assert.False(t, testTable.CanTransition(statusClosed, statusDraft))
	assert.False(t, testTable.CanTransition(statusActive, statusActive))
}

func TestTransitionTable_Guard(t *testing.T) {
	require.NoError(t, testTable.Guard(statusDraft, statusActive))

	err := testTable.Guard(statusClosed, statusActive)
	require.Error(t, err)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Contains(t, domainErr.Message, "CLOSED")
	assert.Contains(t, domainErr.Message, "ACTIVE")
}

func TestTransitionTable_IsTerminal(t *testing.T) {
	assert.False(t, testTable.IsTerminal(statusDraft))
	assert.True(t, testTable.IsTerminal(statusClosed))
}
