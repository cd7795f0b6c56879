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

// LeadershipService is the only entry point allowed to create or move a
// LEADER membership row. It keeps three denormalized locations consistent:
// the memberships table (at most one LEADER row per club), the clubs table
// (leader_id equal to that row's user, or null when there is none), and
// the users table (role_type LEADER while the user leads at least one
// club).
type LeadershipService interface {
	PromoteToLeader(ctx context.Context, clubID, targetMembershipID int64) error
	DissolveLeadership(ctx context.Context, clubID int64) error
}

type leadershipServiceImpl struct {
	tx            repositories.LeadershipTx
	retryAttempts int
	logger        zerolog.Logger
}

// NewLeadershipService creates a new LeadershipService
func NewLeadershipService(tx repositories.LeadershipTx, retryAttempts int, logger zerolog.Logger) LeadershipService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &leadershipServiceImpl{
		tx:            tx,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// PromoteToLeader makes the target membership the club's single leader.
//
// The whole transition runs inside one transaction holding the club's row
// lock: demote the previous leader (if any), set the target's role, repoint
// clubs.leader_id. The transaction is all-or-nothing, so a demotion without
// a matching promotion can never be observed. Calling it again with the
// same target is a no-op.
func (s *leadershipServiceImpl) PromoteToLeader(ctx context.Context, clubID, targetMembershipID int64) error {
	s.logger.Debug().
		Int64("clubID", clubID).
		Int64("membershipID", targetMembershipID).
		Msg("Promoting membership to club leader")

	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)

	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InClubTx(ctx, func(ctx context.Context, store repositories.LeadershipStore) error {
			return s.promoteInTx(ctx, store, clubID, targetMembershipID)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("clubID", clubID).
			Int64("membershipID", targetMembershipID).
			Msg("Leadership promotion failed")
		return err
	}

	observability.RecordPromotion()
	return nil
}

func (s *leadershipServiceImpl) promoteInTx(ctx context.Context, store repositories.LeadershipStore, clubID, targetMembershipID int64) error {
	club, err := store.LockClub(ctx, clubID)
	if err != nil {
		return err
	}

	target, err := store.GetMembership(ctx, targetMembershipID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.ErrMembershipNotFound
	}
	if target.ClubID != clubID {
		return apperrors.NewBadRequestError("membership does not belong to this club")
	}
	if target.Status != models.MembershipStatusActive {
		return apperrors.NewBadRequestError("membership is disabled")
	}

	current, err := store.CurrentLeader(ctx, clubID)
	if err != nil {
		return err
	}

	// Idempotent case: target already leads. Repair the pointer and the
	// global role if some earlier partial write left them stale.
	if current != nil && current.ID == target.ID {
		if err := store.GrantLeaderRole(ctx, target.UserID); err != nil {
			return err
		}
		if club.LeaderID == nil || *club.LeaderID != target.UserID {
			return store.SetClubLeader(ctx, clubID, &target.UserID)
		}
		return nil
	}

	if current != nil {
		if err := store.SetMembershipRole(ctx, current.ID, models.MembershipRoleMember); err != nil {
			return apperrors.NewCustomError(apperrors.ErrDemotionFailed, err.Error())
		}
		if err := store.RevokeLeaderRole(ctx, current.UserID); err != nil {
			return err
		}
	}

	if err := store.SetMembershipRole(ctx, target.ID, models.MembershipRoleLeader); err != nil {
		return err
	}
	if err := store.GrantLeaderRole(ctx, target.UserID); err != nil {
		return err
	}

	return store.SetClubLeader(ctx, clubID, &target.UserID)
}

// DissolveLeadership demotes the club's leader and nulls the leader
// pointer atomically. A leaderless club is only a legal terminal state for
// a club being dissolved, so this runs solely from the dissolution path.
func (s *leadershipServiceImpl) DissolveLeadership(ctx context.Context, clubID int64) error {
	s.logger.Debug().
		Int64("clubID", clubID).
		Msg("Dissolving club leadership")

	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)

	return retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InClubTx(ctx, func(ctx context.Context, store repositories.LeadershipStore) error {
			if _, err := store.LockClub(ctx, clubID); err != nil {
				return err
			}

			current, err := store.CurrentLeader(ctx, clubID)
			if err != nil {
				return err
			}

			if current != nil {
				if err := store.SetMembershipRole(ctx, current.ID, models.MembershipRoleMember); err != nil {
					return apperrors.NewCustomError(apperrors.ErrDemotionFailed, err.Error())
				}
				if err := store.RevokeLeaderRole(ctx, current.UserID); err != nil {
					return err
				}
			}

			return store.SetClubLeader(ctx, clubID, nil)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
}
