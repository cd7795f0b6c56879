package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTerminal(t *testing.T) {
	require.False(t, IsTerminal(ErrBusy))
	require.False(t, IsTerminal(NewCustomError(ErrBusy, "lock timed out")))

	require.True(t, IsTerminal(ErrClubNotFound))
	require.True(t, IsTerminal(ErrCapacityExceeded))
	require.True(t, IsTerminal(ErrAlreadyEnrolled))
	require.True(t, IsTerminal(errors.New("anything else")))
}

func TestCustomErrorUnwrap(t *testing.T) {
	err := NewCustomError(ErrDemotionFailed, "role update refused")

	require.ErrorIs(t, err, ErrDemotionFailed)
	require.Equal(t, "role update refused", err.Error())
}

func TestIsMatchesAnyTarget(t *testing.T) {
	require.True(t, Is(ErrLeaderExists, ErrDuplicateMember, ErrLeaderExists, ErrAlreadyEnrolled))
	require.False(t, Is(ErrClubNotFound, ErrDuplicateMember, ErrLeaderExists))
}
