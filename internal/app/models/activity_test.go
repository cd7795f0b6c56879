package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]ActivityStatus]bool{
		{ActivityStatusPending, ActivityStatusApproved}:   true,
		{ActivityStatusPending, ActivityStatusRejected}:   true,
		{ActivityStatusApproved, ActivityStatusCompleted}: true,
		{ActivityStatusApproved, ActivityStatusCancelled}: true,
	}

	statuses := []ActivityStatus{
		ActivityStatusPending,
		ActivityStatusApproved,
		ActivityStatusRejected,
		ActivityStatusCompleted,
		ActivityStatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]ActivityStatus{from, to}]
			require.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	terminal := []ActivityStatus{
		ActivityStatusRejected,
		ActivityStatusCompleted,
		ActivityStatusCancelled,
	}
	all := []ActivityStatus{
		ActivityStatusPending,
		ActivityStatusApproved,
		ActivityStatusRejected,
		ActivityStatusCompleted,
		ActivityStatusCancelled,
	}

	for _, from := range terminal {
		for _, to := range all {
			require.False(t, CanTransition(from, to), "%s must be terminal", from)
		}
	}
}
