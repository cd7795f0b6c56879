package services

import (
	"context"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
	"github.com/oguzk/campusclub/internal/pkg/dberrors"
)

// MembershipService covers plain membership administration. Leadership
// changes are not handled here; they go through LeadershipService.
type MembershipService interface {
	AddMember(ctx context.Context, clubID, userID int64, role models.MembershipRole) (int64, error)
	RemoveMember(ctx context.Context, membershipID int64) error
	SetRole(ctx context.Context, membershipID int64, role models.MembershipRole) error
	ListMembers(ctx context.Context, clubID int64) ([]*models.Membership, error)
	GetMember(ctx context.Context, membershipID int64) (*models.Membership, error)
}

type membershipServiceImpl struct {
	membershipRepo *repositories.MembershipRepository
	clubRepo       *repositories.ClubRepository
	userRepo       *repositories.UserRepository
	tx             repositories.LeadershipTx
	retryAttempts  int
	logger         zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	membershipRepo *repositories.MembershipRepository,
	clubRepo *repositories.ClubRepository,
	userRepo *repositories.UserRepository,
	tx repositories.LeadershipTx,
	retryAttempts int,
	logger zerolog.Logger,
) MembershipService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &membershipServiceImpl{
		membershipRepo: membershipRepo,
		clubRepo:       clubRepo,
		userRepo:       userRepo,
		tx:             tx,
		retryAttempts:  retryAttempts,
		logger:         logger,
	}
}

// AddMember adds a user to a club with a non-leader role. Direct insertion
// of a LEADER row is refused to protect leader uniqueness; promotions go
// through the coordinator.
func (s *membershipServiceImpl) AddMember(ctx context.Context, clubID, userID int64, role models.MembershipRole) (int64, error) {
	if role == models.MembershipRoleLeader {
		return 0, apperrors.ErrLeaderExists
	}
	if role == "" {
		role = models.MembershipRoleMember
	}

	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return 0, err
	}
	if club == nil {
		return 0, apperrors.ErrClubNotFound
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, apperrors.ErrUserNotFound
	}

	existing, err := s.membershipRepo.GetActiveByUserAndClub(ctx, userID, clubID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperrors.ErrDuplicateMember
	}

	membership := &models.Membership{
		UserID:   userID,
		ClubID:   clubID,
		Role:     role,
		Status:   models.MembershipStatusActive,
		JoinDate: time.Now(),
	}

	id, err := s.membershipRepo.Insert(ctx, membership)
	if err != nil {
		// The partial unique index backstops the pre-check under races
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrDuplicateMember
		}
		s.logger.Error().Err(err).
			Int64("clubID", clubID).
			Int64("userID", userID).
			Msg("Failed to insert membership")
		return 0, err
	}

	return id, nil
}

// RemoveMember deletes a membership row. The current leader cannot be
// removed while holding the LEADER role; a replacement must be promoted
// first, or the club dissolved.
//
// The role check and the delete run inside the club-scoped transaction
// under the club's row lock. Checking on the pool and deleting in a second
// statement would let a concurrent promotion slip between the two and
// delete the freshly promoted leader.
func (s *membershipServiceImpl) RemoveMember(ctx context.Context, membershipID int64) error {
	retrier := retry.NewRetrier(s.retryAttempts, 50*time.Millisecond, 500*time.Millisecond)

	return retrier.RunContext(ctx, func(ctx context.Context) error {
		err := s.tx.InClubTx(ctx, func(ctx context.Context, store repositories.LeadershipStore) error {
			membership, err := store.GetMembership(ctx, membershipID)
			if err != nil {
				return err
			}
			if membership == nil {
				return apperrors.ErrMembershipNotFound
			}

			if _, err := store.LockClub(ctx, membership.ClubID); err != nil {
				return err
			}

			// Re-read under the lock; a promotion that committed while we
			// waited for it may have changed the role.
			membership, err = store.GetMembership(ctx, membershipID)
			if err != nil {
				return err
			}
			if membership == nil {
				return apperrors.ErrMembershipNotFound
			}
			if membership.Role == models.MembershipRoleLeader {
				return apperrors.ErrCannotRemoveLeader
			}

			return store.DeleteMembership(ctx, membershipID)
		})
		if err != nil && apperrors.IsTerminal(err) {
			return retry.Stop(err)
		}
		return err
	})
}

// SetRole changes a member's role between MEMBER and VICE_LEADER
func (s *membershipServiceImpl) SetRole(ctx context.Context, membershipID int64, role models.MembershipRole) error {
	if role == models.MembershipRoleLeader {
		return apperrors.NewBadRequestError("leader role is assigned through the promote endpoint")
	}

	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperrors.ErrMembershipNotFound
	}

	if membership.Role == models.MembershipRoleLeader {
		return apperrors.NewBadRequestError("current leader must be replaced through the promote endpoint")
	}

	return s.membershipRepo.SetRole(ctx, membershipID, role)
}

// ListMembers retrieves a club's active memberships with user details
func (s *membershipServiceImpl) ListMembers(ctx context.Context, clubID int64) ([]*models.Membership, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, apperrors.ErrClubNotFound
	}

	members, err := s.membershipRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		user, err := s.userRepo.FindByID(ctx, m.UserID)
		if err == nil && user != nil {
			m.User = user
		}
	}

	return members, nil
}

// GetMember retrieves one membership row
func (s *membershipServiceImpl) GetMember(ctx context.Context, membershipID int64) (*models.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.ErrMembershipNotFound
	}
	return membership, nil
}
