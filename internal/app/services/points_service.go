package services

import (
	"context"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/mirror"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// PointsService maintains the points ledger. Both mutations hold the
// account's row lock for the balance update and the ledger insert, so the
// balance always equals the sum of the account's entries.
type PointsService interface {
	Award(ctx context.Context, userID, amount, awardedBy int64, reason string) (*models.PointEntry, error)
	Redeem(ctx context.Context, userID, amount int64, reason string) (*models.PointEntry, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ListEntries(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error)
}

type pointsServiceImpl struct {
	tx            repositories.PointsTx
	pointsRepo    *repositories.PointsRepository
	publisher     *mirror.Publisher
	retryAttempts int
	logger        zerolog.Logger
}

// NewPointsService creates a new PointsService
func NewPointsService(
	tx repositories.PointsTx,
	pointsRepo *repositories.PointsRepository,
	publisher *mirror.Publisher,
	retryAttempts int,
	logger zerolog.Logger,
) PointsService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &pointsServiceImpl{
		tx:            tx,
		pointsRepo:    pointsRepo,
		publisher:     publisher,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// Award credits points to a user's account
func (s *pointsServiceImpl) Award(ctx context.Context, userID, amount, awardedBy int64, reason string) (*models.PointEntry, error) {
	if amount <= 0 {
		return nil, apperrors.NewBadRequestError("amount must be positive")
	}

	entry := &models.PointEntry{
		UserID:    userID,
		Kind:      models.PointEntryAward,
		Amount:    amount,
		Reason:    reason,
		CreatedBy: awardedBy,
	}

	err := s.runInAccountTx(ctx, func(ctx context.Context, store repositories.PointsStore) error {
		account, err := store.LockAccount(ctx, userID)
		if err != nil {
			return err
		}

		if err := store.SetBalance(ctx, userID, account.Balance+amount); err != nil {
			return err
		}

		id, err := store.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("userID", userID).
			Int64("amount", amount).
			Msg("Failed to award points")
		return nil, err
	}

	s.offerMirror(entry)
	return entry, nil
}

// Redeem debits points from a user's account. The balance check happens
// under the account lock, so the balance can never go negative.
func (s *pointsServiceImpl) Redeem(ctx context.Context, userID, amount int64, reason string) (*models.PointEntry, error) {
	if amount <= 0 {
		return nil, apperrors.NewBadRequestError("amount must be positive")
	}

	entry := &models.PointEntry{
		UserID:    userID,
		Kind:      models.PointEntryRedeem,
		Amount:    amount,
		Reason:    reason,
		CreatedBy: userID,
	}

	err := s.runInAccountTx(ctx, func(ctx context.Context, store repositories.PointsStore) error {
		account, err := store.LockAccount(ctx, userID)
		if err != nil {
			return err
		}

		if account.Balance < amount {
			return apperrors.ErrInsufficientPoints
		}

		if err := store.SetBalance(ctx, userID, account.Balance-amount); err != nil {
			return err
		}

		id, err := store.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("userID", userID).
			Int64("amount", amount).
			Msg("Failed to redeem points")
		return nil, err
	}

	s.offerMirror(entry)
	return entry, nil
}

// GetBalance returns a user's current balance
func (s *pointsServiceImpl) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.pointsRepo.GetBalance(ctx, userID)
}

// ListEntries returns a user's ledger history, newest first
func (s *pointsServiceImpl) ListEntries(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.pointsRepo.ListEntries(ctx, userID, limit)
}

func (s *pointsServiceImpl) runInAccountTx(ctx context.Context, fn func(ctx context.Context, store repositories.PointsStore) error) error {
	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)

	return retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InAccountTx(ctx, fn)
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
}

// offerMirror hands the committed entry to the mirror sink. The ledger is
// the source of truth; a dropped mirror event is logged, never re-raised.
func (s *pointsServiceImpl) offerMirror(entry *models.PointEntry) {
	if s.publisher == nil {
		return
	}
	s.publisher.Offer(mirror.Event{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Kind:      string(entry.Kind),
		Amount:    entry.Amount,
		CreatedAt: entry.CreatedAt,
	})
}
