package feedback

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusNew.CanTransitionTo(StatusRead))
	assert.True(t, StatusNew.CanTransitionTo(StatusAnswered))
	assert.True(t, StatusRead.CanTransitionTo(StatusAnswered))
	assert.False(t, StatusRead.CanTransitionTo(StatusNew))
	assert.False(t, StatusAnswered.CanTransitionTo(StatusRead))
	assert.False(t, StatusNew.CanTransitionTo(StatusNew))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Read")
	require.NoError(t, err)
	assert.Equal(t, StatusRead, s)

	_, err = ParseStatus("archived")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestValidateMessage(t *testing.T) {
	msg, err := ValidateMessage("  great shop  ")
	require.NoError(t, err)
	assert.Equal(t, "great shop", msg)

	_, err = ValidateMessage(" \n ")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = ValidateMessage(strings.Repeat("a", MaxMessageLength+1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
