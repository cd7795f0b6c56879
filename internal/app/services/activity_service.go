package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// ActivityService covers activity creation and the approval workflow.
// Status transitions are validated against the explicit transition table;
// there is no other writer of the status column.
type ActivityService interface {
	CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	GetActivityByID(ctx context.Context, id int64) (*models.Activity, error)
	ListActivitiesByClub(ctx context.Context, clubID int64) ([]*models.Activity, error)
	Transition(ctx context.Context, activityID int64, to models.ActivityStatus, reason string) error
}

type activityServiceImpl struct {
	activityRepo     *repositories.ActivityRepository
	clubRepo         *repositories.ClubRepository
	notificationRepo *repositories.NotificationRepository
	logger           zerolog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	activityRepo *repositories.ActivityRepository,
	clubRepo *repositories.ClubRepository,
	notificationRepo *repositories.NotificationRepository,
	logger zerolog.Logger,
) ActivityService {
	return &activityServiceImpl{
		activityRepo:     activityRepo,
		clubRepo:         clubRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// CreateActivity creates an activity in PENDING status
func (s *activityServiceImpl) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	club, err := s.clubRepo.GetByID(ctx, activity.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, apperrors.ErrClubNotFound
	}

	if activity.MaxParticipants < 0 {
		return nil, apperrors.NewBadRequestError("maxParticipants cannot be negative")
	}

	id, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("clubID", activity.ClubID).
			Msg("Failed to create activity")
		return nil, err
	}

	created, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetActivityByID retrieves an activity
func (s *activityServiceImpl) GetActivityByID(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apperrors.ErrActivityNotFound
	}
	return activity, nil
}

// ListActivitiesByClub retrieves a club's activities
func (s *activityServiceImpl) ListActivitiesByClub(ctx context.Context, clubID int64) ([]*models.Activity, error) {
	return s.activityRepo.ListByClub(ctx, clubID)
}

// Transition moves an activity along the approval state machine. A
// transition to REJECTED additionally records a rejection notice for the
// club's leader; reason is required for that edge.
func (s *activityServiceImpl) Transition(ctx context.Context, activityID int64, to models.ActivityStatus, reason string) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return err
	}
	if activity == nil {
		return apperrors.ErrActivityNotFound
	}

	if !models.CanTransition(activity.Status, to) {
		return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			"cannot transition from "+string(activity.Status)+" to "+string(to))
	}

	if to == models.ActivityStatusRejected && reason == "" {
		return apperrors.NewBadRequestError("rejection requires a reason")
	}

	// The WHERE status guard makes concurrent transitions lose cleanly
	if err := s.activityRepo.UpdateStatus(ctx, activityID, activity.Status, to); err != nil {
		return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			"activity status changed concurrently")
	}

	if to == models.ActivityStatusRejected {
		if _, err := s.notificationRepo.InsertRejectionNotice(ctx, activityID, activity.ClubID, reason); err != nil {
			s.logger.Error().Err(err).
				Int64("activityID", activityID).
				Msg("Failed to record rejection notice")
			return err
		}
	}

	s.logger.Info().
		Int64("activityID", activityID).
		Str("from", string(activity.Status)).
		Str("to", string(to)).
		Msg("Activity status transitioned")

	return nil
}
