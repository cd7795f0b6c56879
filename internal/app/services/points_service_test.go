package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/mirror"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

type fakePointsState struct {
	mu       sync.Mutex
	balances map[int64]int64
	entries  []*models.PointEntry
	nextID   int64
}

func newFakePointsState() *fakePointsState {
	return &fakePointsState{
		balances: make(map[int64]int64),
		nextID:   1,
	}
}

func (f *fakePointsState) InAccountTx(ctx context.Context, fn func(ctx context.Context, store repositories.PointsStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	balances := make(map[int64]int64, len(f.balances))
	for id, b := range f.balances {
		balances[id] = b
	}
	entryCount := len(f.entries)
	nextID := f.nextID

	if err := fn(ctx, &fakePointsStore{state: f}); err != nil {
		f.balances = balances
		f.entries = f.entries[:entryCount]
		f.nextID = nextID
		return err
	}
	return nil
}

type fakePointsStore struct {
	state *fakePointsState
}

func (s *fakePointsStore) LockAccount(_ context.Context, userID int64) (*models.PointAccount, error) {
	return &models.PointAccount{UserID: userID, Balance: s.state.balances[userID]}, nil
}

func (s *fakePointsStore) SetBalance(_ context.Context, userID, balance int64) error {
	s.state.balances[userID] = balance
	return nil
}

func (s *fakePointsStore) InsertEntry(_ context.Context, entry *models.PointEntry) (int64, error) {
	id := s.state.nextID
	s.state.nextID++
	copied := *entry
	copied.ID = id
	s.state.entries = append(s.state.entries, &copied)
	return id, nil
}

// chanSink delivers mirrored events to the test over a channel
type chanSink struct {
	events chan mirror.Event
}

func (s *chanSink) Publish(_ context.Context, event mirror.Event) error {
	s.events <- event
	return nil
}

func newTestPointsService(state *fakePointsState, publisher *mirror.Publisher) PointsService {
	return NewPointsService(state, nil, publisher, 3, zerolog.Nop())
}

func TestAwardCreditsBalance(t *testing.T) {
	state := newFakePointsState()
	svc := newTestPointsService(state, nil)

	entry, err := svc.Award(context.Background(), 100, 25, 1, "tournament win")
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	require.Equal(t, models.PointEntryAward, entry.Kind)

	require.Equal(t, int64(25), state.balances[100])
	require.Len(t, state.entries, 1)
}

func TestAwardRejectsNonPositiveAmount(t *testing.T) {
	state := newFakePointsState()
	svc := newTestPointsService(state, nil)

	_, err := svc.Award(context.Background(), 100, 0, 1, "nothing")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Award(context.Background(), 100, -5, 1, "negative")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	require.Empty(t, state.entries)
}

func TestRedeemDebitsBalance(t *testing.T) {
	state := newFakePointsState()
	state.balances[100] = 40
	svc := newTestPointsService(state, nil)

	entry, err := svc.Redeem(context.Background(), 100, 15, "sticker pack")
	require.NoError(t, err)
	require.Equal(t, models.PointEntryRedeem, entry.Kind)

	require.Equal(t, int64(25), state.balances[100])
	require.Len(t, state.entries, 1)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	state := newFakePointsState()
	state.balances[100] = 10
	svc := newTestPointsService(state, nil)

	_, err := svc.Redeem(context.Background(), 100, 15, "too expensive")
	require.ErrorIs(t, err, apperrors.ErrInsufficientPoints)

	// Balance untouched, no ledger row written
	require.Equal(t, int64(10), state.balances[100])
	require.Empty(t, state.entries)
}

func TestRedeemExactBalance(t *testing.T) {
	state := newFakePointsState()
	state.balances[100] = 15
	svc := newTestPointsService(state, nil)

	_, err := svc.Redeem(context.Background(), 100, 15, "all in")
	require.NoError(t, err)
	require.Zero(t, state.balances[100])
}

func TestConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	state := newFakePointsState()
	state.balances[100] = 50
	svc := newTestPointsService(state, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Redeem(context.Background(), 100, 10, "swag")
		}()
	}
	wg.Wait()

	require.Zero(t, state.balances[100])
	require.Len(t, state.entries, 5)
}

func TestAwardMirrorsCommittedEntry(t *testing.T) {
	state := newFakePointsState()
	sink := &chanSink{events: make(chan mirror.Event, 1)}
	publisher := mirror.NewPublisher(sink, zerolog.Nop())
	svc := newTestPointsService(state, publisher)

	entry, err := svc.Award(context.Background(), 100, 25, 1, "tournament win")
	require.NoError(t, err)

	select {
	case event := <-sink.events:
		require.Equal(t, entry.ID, event.EntryID)
		require.Equal(t, int64(100), event.UserID)
		require.Equal(t, string(models.PointEntryAward), event.Kind)
		require.Equal(t, int64(25), event.Amount)
	case <-time.After(2 * time.Second):
		t.Fatal("mirror event never arrived")
	}
}

func TestFailedRedeemIsNotMirrored(t *testing.T) {
	state := newFakePointsState()
	sink := &chanSink{events: make(chan mirror.Event, 1)}
	publisher := mirror.NewPublisher(sink, zerolog.Nop())
	svc := newTestPointsService(state, publisher)

	_, err := svc.Redeem(context.Background(), 100, 15, "broke")
	require.ErrorIs(t, err, apperrors.ErrInsufficientPoints)

	select {
	case <-sink.events:
		t.Fatal("rejected redemption must not be mirrored")
	case <-time.After(100 * time.Millisecond):
	}
}
