package services

import (
	"context"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/observability"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// EnrollmentService wraps signup and withdrawal with capacity enforcement
// and keeps the cached participant_count synchronized with the true count
// of ACTIVE enrollment rows. All mutations for one activity run under that
// activity's row lock, so check-then-insert cannot interleave.
type EnrollmentService interface {
	TryEnroll(ctx context.Context, activityID, userID int64) (int64, error)
	TryWithdraw(ctx context.Context, activityID, userID int64) error
	Recount(ctx context.Context, activityID int64) (int, error)
}

type enrollmentServiceImpl struct {
	tx            repositories.EnrollmentTx
	retryAttempts int
	logger        zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(tx repositories.EnrollmentTx, retryAttempts int, logger zerolog.Logger) EnrollmentService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &enrollmentServiceImpl{
		tx:            tx,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// TryEnroll admits the user if the activity is APPROVED, the user has no
// active enrollment, and capacity allows. MaxParticipants = 0 means
// unlimited. The capacity read happens inside the locked transaction, never
// from a stale cache.
func (s *enrollmentServiceImpl) TryEnroll(ctx context.Context, activityID, userID int64) (int64, error) {
	s.logger.Debug().
		Int64("activityID", activityID).
		Int64("userID", userID).
		Msg("Enrollment attempt")

	var enrollmentID int64

	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InActivityTx(ctx, func(ctx context.Context, store repositories.EnrollmentStore) error {
			activity, err := store.LockActivity(ctx, activityID)
			if err != nil {
				return err
			}

			if activity.Status != models.ActivityStatusApproved {
				return apperrors.ErrActivityNotOpen
			}

			existing, err := store.ActiveEnrollment(ctx, activityID, userID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperrors.ErrAlreadyEnrolled
			}

			count, err := store.CountActive(ctx, activityID)
			if err != nil {
				return err
			}

			if activity.MaxParticipants > 0 && count >= activity.MaxParticipants {
				return apperrors.ErrCapacityExceeded
			}

			id, err := store.InsertEnrollment(ctx, activityID, userID)
			if err != nil {
				return err
			}
			enrollmentID = id

			if err := store.SetParticipantCount(ctx, activityID, count+1); err != nil {
				return err
			}

			return store.InsertReservationNotice(ctx, activityID, userID)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCapacityExceeded) {
			observability.RecordEnrollment("capacity_exceeded")
		} else {
			observability.RecordEnrollment("failed")
		}
		return 0, err
	}

	observability.RecordEnrollment("admitted")
	return enrollmentID, nil
}

// TryWithdraw flips the caller's active enrollment to WITHDRAWN and
// decrements the cached counter by exactly one, floored at zero. The floor
// protects against an admin recount racing a withdrawal; the counter must
// never go negative.
func (s *enrollmentServiceImpl) TryWithdraw(ctx context.Context, activityID, userID int64) error {
	s.logger.Debug().
		Int64("activityID", activityID).
		Int64("userID", userID).
		Msg("Withdrawal attempt")

	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InActivityTx(ctx, func(ctx context.Context, store repositories.EnrollmentStore) error {
			activity, err := store.LockActivity(ctx, activityID)
			if err != nil {
				return err
			}

			enrollment, err := store.ActiveEnrollment(ctx, activityID, userID)
			if err != nil {
				return err
			}
			if enrollment == nil {
				return apperrors.ErrNotEnrolled
			}

			if err := store.MarkWithdrawn(ctx, enrollment.ID); err != nil {
				return err
			}

			newCount := activity.ParticipantCount - 1
			if newCount < 0 {
				newCount = 0
			}

			return store.SetParticipantCount(ctx, activityID, newCount)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	observability.RecordWithdrawal()
	return nil
}

// Recount reconciles the cached counter with the ledger's true count.
func (s *enrollmentServiceImpl) Recount(ctx context.Context, activityID int64) (int, error) {
	var count int

	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InActivityTx(ctx, func(ctx context.Context, store repositories.EnrollmentStore) error {
			if _, err := store.LockActivity(ctx, activityID); err != nil {
				return err
			}

			c, err := store.CountActive(ctx, activityID)
			if err != nil {
				return err
			}
			count = c

			return store.SetParticipantCount(ctx, activityID, c)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Int64("activityID", activityID).
		Int("participantCount", count).
		Msg("Participant counter reconciled")

	return count, nil
}
