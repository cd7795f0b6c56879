package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

func newTestMembershipService(state *fakeClubState) MembershipService {
	return NewMembershipService(nil, nil, nil, state, 3, zerolog.Nop())
}

func TestRemoveMemberDeletesRow(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestMembershipService(state)
	err := svc.RemoveMember(context.Background(), 11)
	require.NoError(t, err)

	_, ok := state.memberships[11]
	require.False(t, ok)
}

func TestRemoveMemberRefusesLeader(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})

	svc := newTestMembershipService(state)
	err := svc.RemoveMember(context.Background(), 10)
	require.ErrorIs(t, err, apperrors.ErrCannotRemoveLeader)

	require.Contains(t, state.memberships, int64(10))
	require.Equal(t, int64(100), *state.club.LeaderID)
}

func TestRemoveMemberUnknownMembership(t *testing.T) {
	state := newFakeClubState(1)

	svc := newTestMembershipService(state)
	err := svc.RemoveMember(context.Background(), 42)
	require.ErrorIs(t, err, apperrors.ErrMembershipNotFound)
}

func TestRemoveMemberRetriesOnBusy(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	state.busyFirst = 2

	svc := newTestMembershipService(state)
	err := svc.RemoveMember(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, 3, state.txCount)
}

func TestConcurrentRemoveAndPromoteNeverDeleteLeader(t *testing.T) {
	for i := 0; i < 20; i++ {
		state := newFakeClubState(1)
		state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
		state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

		members := newTestMembershipService(state)
		leaders := newTestLeadershipService(state)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = leaders.PromoteToLeader(context.Background(), 1, 11)
		}()
		go func() {
			defer wg.Done()
			_ = members.RemoveMember(context.Background(), 11)
		}()
		wg.Wait()

		// Whichever side committed first, the club must end up with
		// exactly one leader row and a pointer that references it.
		require.NotNil(t, state.club.LeaderID)
		rows := state.leaderRows(1)
		require.Len(t, rows, 1)
		require.Equal(t, rows[0].UserID, *state.club.LeaderID)
	}
}
