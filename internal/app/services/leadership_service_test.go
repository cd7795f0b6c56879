package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// fakeClubState is an in-memory stand-in for the club, membership and user
// tables. InClubTx serializes callers with a mutex the way the row lock
// does in Postgres, and rolls the state back when fn fails.
type fakeClubState struct {
	mu          sync.Mutex
	club        *models.Club
	memberships map[int64]*models.Membership
	userRoles   map[int64]models.RoleType

	// busyFirst makes the first n transactions fail with ErrBusy
	busyFirst int
	// failRoleFor makes SetMembershipRole fail for one membership ID
	failRoleFor int64

	txCount int
}

func newFakeClubState(clubID int64) *fakeClubState {
	return &fakeClubState{
		club:        &models.Club{ID: clubID, Name: "Chess Club"},
		memberships: make(map[int64]*models.Membership),
		userRoles:   make(map[int64]models.RoleType),
	}
}

func (f *fakeClubState) addMembership(m *models.Membership) {
	f.memberships[m.ID] = m
	if _, ok := f.userRoles[m.UserID]; !ok {
		f.userRoles[m.UserID] = models.RoleStudent
	}
	if m.Role == models.MembershipRoleLeader && m.Status == models.MembershipStatusActive {
		f.userRoles[m.UserID] = models.RoleLeader
		if m.ClubID == f.club.ID {
			f.club.LeaderID = &m.UserID
		}
	}
}

func (f *fakeClubState) InClubTx(ctx context.Context, fn func(ctx context.Context, store repositories.LeadershipStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txCount++
	if f.busyFirst > 0 {
		f.busyFirst--
		return apperrors.NewCustomError(apperrors.ErrBusy, "row lock acquisition timed out")
	}

	snapshot := f.snapshot()
	if err := fn(ctx, &fakeClubStore{state: f}); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

type clubSnapshot struct {
	club        models.Club
	memberships map[int64]models.Membership
	userRoles   map[int64]models.RoleType
}

func (f *fakeClubState) snapshot() clubSnapshot {
	s := clubSnapshot{
		club:        *f.club,
		memberships: make(map[int64]models.Membership, len(f.memberships)),
		userRoles:   make(map[int64]models.RoleType, len(f.userRoles)),
	}
	if f.club.LeaderID != nil {
		leaderID := *f.club.LeaderID
		s.club.LeaderID = &leaderID
	}
	for id, m := range f.memberships {
		s.memberships[id] = *m
	}
	for id, role := range f.userRoles {
		s.userRoles[id] = role
	}
	return s
}

func (f *fakeClubState) restore(s clubSnapshot) {
	club := s.club
	f.club = &club
	f.memberships = make(map[int64]*models.Membership, len(s.memberships))
	for id := range s.memberships {
		m := s.memberships[id]
		f.memberships[id] = &m
	}
	f.userRoles = make(map[int64]models.RoleType, len(s.userRoles))
	for id, role := range s.userRoles {
		f.userRoles[id] = role
	}
}

type fakeClubStore struct {
	state *fakeClubState
}

func (s *fakeClubStore) LockClub(_ context.Context, clubID int64) (*models.Club, error) {
	if s.state.club.ID != clubID {
		return nil, apperrors.ErrClubNotFound
	}
	club := *s.state.club
	return &club, nil
}

func (s *fakeClubStore) CurrentLeader(_ context.Context, clubID int64) (*models.Membership, error) {
	for _, m := range s.state.memberships {
		if m.ClubID == clubID && m.Role == models.MembershipRoleLeader && m.Status == models.MembershipStatusActive {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeClubStore) GetMembership(_ context.Context, membershipID int64) (*models.Membership, error) {
	m, ok := s.state.memberships[membershipID]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *fakeClubStore) SetMembershipRole(_ context.Context, membershipID int64, role models.MembershipRole) error {
	if s.state.failRoleFor == membershipID {
		return errors.New("role update refused")
	}
	m, ok := s.state.memberships[membershipID]
	if !ok {
		return apperrors.ErrMembershipNotFound
	}
	m.Role = role
	return nil
}

func (s *fakeClubStore) DeleteMembership(_ context.Context, membershipID int64) error {
	m, ok := s.state.memberships[membershipID]
	if !ok {
		return apperrors.ErrMembershipNotFound
	}
	if m.Role == models.MembershipRoleLeader {
		return apperrors.ErrCannotRemoveLeader
	}
	delete(s.state.memberships, membershipID)
	return nil
}

func (s *fakeClubStore) SetClubLeader(_ context.Context, clubID int64, leaderID *int64) error {
	if s.state.club.ID != clubID {
		return apperrors.ErrClubNotFound
	}
	s.state.club.LeaderID = leaderID
	return nil
}

func (s *fakeClubStore) GrantLeaderRole(_ context.Context, userID int64) error {
	if s.state.userRoles[userID] == models.RoleStudent {
		s.state.userRoles[userID] = models.RoleLeader
	}
	return nil
}

func (s *fakeClubStore) RevokeLeaderRole(_ context.Context, userID int64) error {
	if s.state.userRoles[userID] != models.RoleLeader {
		return nil
	}
	for _, m := range s.state.memberships {
		if m.UserID == userID && m.Role == models.MembershipRoleLeader && m.Status == models.MembershipStatusActive {
			return nil
		}
	}
	s.state.userRoles[userID] = models.RoleStudent
	return nil
}

func (f *fakeClubState) leaderRows(clubID int64) []*models.Membership {
	var rows []*models.Membership
	for _, m := range f.memberships {
		if m.ClubID == clubID && m.Role == models.MembershipRoleLeader {
			rows = append(rows, m)
		}
	}
	return rows
}

func newTestLeadershipService(state *fakeClubState) LeadershipService {
	return NewLeadershipService(state, 3, zerolog.Nop())
}

func TestPromoteToLeaderFirstLeader(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Equal(t, models.MembershipRoleLeader, state.memberships[10].Role)
	require.NotNil(t, state.club.LeaderID)
	require.Equal(t, int64(100), *state.club.LeaderID)
}

func TestPromoteToLeaderReplacesCurrentLeader(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 11)
	require.NoError(t, err)

	require.Equal(t, models.MembershipRoleMember, state.memberships[10].Role)
	require.Equal(t, models.MembershipRoleLeader, state.memberships[11].Role)
	require.Equal(t, int64(101), *state.club.LeaderID)
	require.Len(t, state.leaderRows(1), 1)
}

func TestPromoteToLeaderIdempotent(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Equal(t, models.MembershipRoleLeader, state.memberships[10].Role)
	require.Equal(t, int64(100), *state.club.LeaderID)
	require.Len(t, state.leaderRows(1), 1)
}

func TestPromoteToLeaderSyncsGlobalRoles(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 11)
	require.NoError(t, err)

	// The promoted user gains the global LEADER role, the demoted one
	// falls back to STUDENT, so RoleRequired guards follow the transition.
	require.Equal(t, models.RoleLeader, state.userRoles[101])
	require.Equal(t, models.RoleStudent, state.userRoles[100])
}

func TestPromoteToLeaderKeepsAdminRole(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	state.userRoles[100] = models.RoleAdmin

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Equal(t, models.MembershipRoleLeader, state.memberships[10].Role)
	require.Equal(t, models.RoleAdmin, state.userRoles[100])
}

func TestDemotionKeepsGlobalRoleForMultiClubLeader(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 20, UserID: 100, ClubID: 2, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 11)
	require.NoError(t, err)

	// User 100 still leads club 2, so the global role stays LEADER
	require.Equal(t, models.MembershipRoleMember, state.memberships[10].Role)
	require.Equal(t, models.RoleLeader, state.userRoles[100])
	require.Equal(t, models.RoleLeader, state.userRoles[101])
}

func TestPromoteToLeaderIgnoresDisabledLeaderRow(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusDisabled})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 11)
	require.NoError(t, err)

	// A disabled row never counts as the current leader
	require.Equal(t, models.MembershipRoleLeader, state.memberships[11].Role)
	require.Equal(t, int64(101), *state.club.LeaderID)
}

func TestPromoteToLeaderRepairsStalePointer(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	stale := int64(999)
	state.club.LeaderID = &stale

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Equal(t, int64(100), *state.club.LeaderID)
}

func TestPromoteToLeaderUnknownMembership(t *testing.T) {
	state := newFakeClubState(1)

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 42)
	require.ErrorIs(t, err, apperrors.ErrMembershipNotFound)
}

func TestPromoteToLeaderWrongClub(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 2, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestPromoteToLeaderDisabledMembership(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusDisabled})

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestPromoteToLeaderDemotionFailureAbortsEverything(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})
	state.addMembership(&models.Membership{ID: 11, UserID: 101, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	state.failRoleFor = 10

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 11)
	require.ErrorIs(t, err, apperrors.ErrDemotionFailed)

	// The old leader keeps both the role and the pointer
	require.Equal(t, models.MembershipRoleLeader, state.memberships[10].Role)
	require.Equal(t, models.MembershipRoleMember, state.memberships[11].Role)
	require.Equal(t, int64(100), *state.club.LeaderID)
}

func TestPromoteToLeaderRetriesOnBusy(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	state.busyFirst = 2

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, state.txCount)
	require.Equal(t, models.MembershipRoleLeader, state.memberships[10].Role)
}

func TestPromoteToLeaderGivesUpAfterRetries(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	state.busyFirst = 10

	svc := newTestLeadershipService(state)
	err := svc.PromoteToLeader(context.Background(), 1, 10)
	require.ErrorIs(t, err, apperrors.ErrBusy)
	require.Equal(t, models.MembershipRoleMember, state.memberships[10].Role)
}

func TestConcurrentPromotionsLeaveOneLeader(t *testing.T) {
	state := newFakeClubState(1)
	const contenders = 8
	for i := int64(0); i < contenders; i++ {
		state.addMembership(&models.Membership{ID: 10 + i, UserID: 100 + i, ClubID: 1, Role: models.MembershipRoleMember, Status: models.MembershipStatusActive})
	}

	svc := newTestLeadershipService(state)

	var wg sync.WaitGroup
	for i := int64(0); i < contenders; i++ {
		wg.Add(1)
		go func(membershipID int64) {
			defer wg.Done()
			_ = svc.PromoteToLeader(context.Background(), 1, membershipID)
		}(10 + i)
	}
	wg.Wait()

	leaders := state.leaderRows(1)
	require.Len(t, leaders, 1)
	require.NotNil(t, state.club.LeaderID)
	require.Equal(t, leaders[0].UserID, *state.club.LeaderID)
}

func TestDissolveLeadership(t *testing.T) {
	state := newFakeClubState(1)
	state.addMembership(&models.Membership{ID: 10, UserID: 100, ClubID: 1, Role: models.MembershipRoleLeader, Status: models.MembershipStatusActive})

	svc := newTestLeadershipService(state)
	err := svc.DissolveLeadership(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, models.MembershipRoleMember, state.memberships[10].Role)
	require.Equal(t, models.RoleStudent, state.userRoles[100])
	require.Nil(t, state.club.LeaderID)
}

func TestDissolveLeadershipWithoutLeader(t *testing.T) {
	state := newFakeClubState(1)

	svc := newTestLeadershipService(state)
	err := svc.DissolveLeadership(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, state.club.LeaderID)
}
