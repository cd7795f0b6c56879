package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// fakeActivityState is an in-memory stand-in for the activity and
// enrollment tables. InActivityTx serializes callers like the row lock
// does and rolls back on error.
type fakeActivityState struct {
	mu          sync.Mutex
	activity    *models.Activity
	enrollments map[int64]*models.Enrollment
	notices     int
	nextID      int64

	busyFirst int
	txCount   int
}

func newFakeActivityState(status models.ActivityStatus, maxParticipants int) *fakeActivityState {
	return &fakeActivityState{
		activity: &models.Activity{
			ID:              1,
			ClubID:          1,
			Title:           "Intro Meeting",
			Status:          status,
			MaxParticipants: maxParticipants,
		},
		enrollments: make(map[int64]*models.Enrollment),
		nextID:      1,
	}
}

func (f *fakeActivityState) InActivityTx(ctx context.Context, fn func(ctx context.Context, store repositories.EnrollmentStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txCount++
	if f.busyFirst > 0 {
		f.busyFirst--
		return apperrors.NewCustomError(apperrors.ErrBusy, "row lock acquisition timed out")
	}

	snapshot := f.snapshot()
	if err := fn(ctx, &fakeActivityStore{state: f}); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

type activitySnapshot struct {
	activity    models.Activity
	enrollments map[int64]models.Enrollment
	notices     int
	nextID      int64
}

func (f *fakeActivityState) snapshot() activitySnapshot {
	s := activitySnapshot{activity: *f.activity, enrollments: make(map[int64]models.Enrollment, len(f.enrollments)), notices: f.notices, nextID: f.nextID}
	for id, e := range f.enrollments {
		s.enrollments[id] = *e
	}
	return s
}

func (f *fakeActivityState) restore(s activitySnapshot) {
	activity := s.activity
	f.activity = &activity
	f.enrollments = make(map[int64]*models.Enrollment, len(s.enrollments))
	for id := range s.enrollments {
		e := s.enrollments[id]
		f.enrollments[id] = &e
	}
	f.notices = s.notices
	f.nextID = s.nextID
}

func (f *fakeActivityState) activeCount() int {
	count := 0
	for _, e := range f.enrollments {
		if e.Status == models.EnrollmentStatusActive {
			count++
		}
	}
	return count
}

type fakeActivityStore struct {
	state *fakeActivityState
}

func (s *fakeActivityStore) LockActivity(_ context.Context, activityID int64) (*models.Activity, error) {
	if s.state.activity.ID != activityID {
		return nil, apperrors.ErrActivityNotFound
	}
	activity := *s.state.activity
	return &activity, nil
}

func (s *fakeActivityStore) CountActive(_ context.Context, activityID int64) (int, error) {
	return s.state.activeCount(), nil
}

func (s *fakeActivityStore) ActiveEnrollment(_ context.Context, activityID, userID int64) (*models.Enrollment, error) {
	for _, e := range s.state.enrollments {
		if e.ActivityID == activityID && e.UserID == userID && e.Status == models.EnrollmentStatusActive {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeActivityStore) InsertEnrollment(_ context.Context, activityID, userID int64) (int64, error) {
	id := s.state.nextID
	s.state.nextID++
	s.state.enrollments[id] = &models.Enrollment{
		ID:         id,
		ActivityID: activityID,
		UserID:     userID,
		Status:     models.EnrollmentStatusActive,
	}
	return id, nil
}

func (s *fakeActivityStore) MarkWithdrawn(_ context.Context, enrollmentID int64) error {
	e, ok := s.state.enrollments[enrollmentID]
	if !ok {
		return apperrors.ErrNotEnrolled
	}
	e.Status = models.EnrollmentStatusWithdrawn
	return nil
}

func (s *fakeActivityStore) SetParticipantCount(_ context.Context, activityID int64, count int) error {
	if s.state.activity.ID != activityID {
		return apperrors.ErrActivityNotFound
	}
	s.state.activity.ParticipantCount = count
	return nil
}

func (s *fakeActivityStore) InsertReservationNotice(_ context.Context, activityID, userID int64) error {
	s.state.notices++
	return nil
}

func newTestEnrollmentService(state *fakeActivityState) EnrollmentService {
	return NewEnrollmentService(state, 3, zerolog.Nop())
}

func TestTryEnrollAdmits(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)

	svc := newTestEnrollmentService(state)
	id, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)
	require.NotZero(t, id)

	require.Equal(t, 1, state.activity.ParticipantCount)
	require.Equal(t, 1, state.activeCount())
	require.Equal(t, 1, state.notices)
}

func TestTryEnrollRejectsWhenNotApproved(t *testing.T) {
	for _, status := range []models.ActivityStatus{
		models.ActivityStatusPending,
		models.ActivityStatusRejected,
		models.ActivityStatusCompleted,
		models.ActivityStatusCancelled,
	} {
		state := newFakeActivityState(status, 10)
		svc := newTestEnrollmentService(state)

		_, err := svc.TryEnroll(context.Background(), 1, 100)
		require.ErrorIs(t, err, apperrors.ErrActivityNotOpen, "status %s", status)
		require.Zero(t, state.activeCount())
	}
}

func TestTryEnrollDuplicate(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)

	_, err = svc.TryEnroll(context.Background(), 1, 100)
	require.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	require.Equal(t, 1, state.activeCount())
	require.Equal(t, 1, state.activity.ParticipantCount)
}

func TestTryEnrollCapacityBoundary(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 2)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)
	_, err = svc.TryEnroll(context.Background(), 1, 101)
	require.NoError(t, err)

	// Third user hits the bound exactly
	_, err = svc.TryEnroll(context.Background(), 1, 102)
	require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	require.Equal(t, 2, state.activeCount())
	require.Equal(t, 2, state.activity.ParticipantCount)
}

func TestTryEnrollUnlimitedWhenMaxIsZero(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 0)
	svc := newTestEnrollmentService(state)

	for userID := int64(100); userID < 150; userID++ {
		_, err := svc.TryEnroll(context.Background(), 1, userID)
		require.NoError(t, err)
	}

	require.Equal(t, 50, state.activeCount())
	require.Equal(t, 50, state.activity.ParticipantCount)
}

func TestTryEnrollUnknownActivity(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 99, 100)
	require.ErrorIs(t, err, apperrors.ErrActivityNotFound)
}

func TestConcurrentEnrollmentsRespectCapacity(t *testing.T) {
	const capacity = 5
	const contenders = 20

	state := newFakeActivityState(models.ActivityStatusApproved, capacity)
	svc := newTestEnrollmentService(state)

	var wg sync.WaitGroup
	var admitted int64
	var mu sync.Mutex

	for i := int64(0); i < contenders; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := svc.TryEnroll(context.Background(), 1, userID); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(100 + i)
	}
	wg.Wait()

	require.Equal(t, int64(capacity), admitted)
	require.Equal(t, capacity, state.activeCount())
	require.Equal(t, capacity, state.activity.ParticipantCount)
}

func TestTryWithdraw(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)

	err = svc.TryWithdraw(context.Background(), 1, 100)
	require.NoError(t, err)

	require.Zero(t, state.activeCount())
	require.Zero(t, state.activity.ParticipantCount)

	// The withdrawn row is kept, not deleted
	require.Len(t, state.enrollments, 1)
}

func TestTryWithdrawNotEnrolled(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	err := svc.TryWithdraw(context.Background(), 1, 100)
	require.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestTryWithdrawFloorsCounterAtZero(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)

	// Simulate a counter already driven to zero by an out-of-band recount
	state.activity.ParticipantCount = 0

	err = svc.TryWithdraw(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Equal(t, 0, state.activity.ParticipantCount)
}

func TestWithdrawThenReenroll(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 1)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)

	err = svc.TryWithdraw(context.Background(), 1, 100)
	require.NoError(t, err)

	// The freed slot is usable again, including by the same user
	_, err = svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Equal(t, 1, state.activeCount())
	require.Equal(t, 1, state.activity.ParticipantCount)
}

func TestRecountReconcilesCounter(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)
	_, err = svc.TryEnroll(context.Background(), 1, 101)
	require.NoError(t, err)

	// Drift the cache
	state.activity.ParticipantCount = 7

	count, err := svc.Recount(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, 2, state.activity.ParticipantCount)
}

func TestTryEnrollRetriesOnBusy(t *testing.T) {
	state := newFakeActivityState(models.ActivityStatusApproved, 10)
	state.busyFirst = 2
	svc := newTestEnrollmentService(state)

	_, err := svc.TryEnroll(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Equal(t, 3, state.txCount)
}
