package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
)

// NotificationService assembles the unified feed: a user's own reservation
// notices merged with rejection notices for clubs the user currently leads.
type NotificationService interface {
	GetFeed(ctx context.Context, userID int64) ([]*models.Notice, error)
	MarkRead(ctx context.Context, kind models.NoticeKind, ids []int64) error
}

type notificationServiceImpl struct {
	notificationRepo *repositories.NotificationRepository
	clubRepo         *repositories.ClubRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo *repositories.NotificationRepository,
	clubRepo *repositories.ClubRepository,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		clubRepo:         clubRepo,
		logger:           logger,
	}
}

// GetFeed returns the merged feed, newest first. Items keep their source
// table's ID together with a Kind tag, so MarkRead can route the ID back
// to the right table.
func (s *notificationServiceImpl) GetFeed(ctx context.Context, userID int64) ([]*models.Notice, error) {
	reservations, err := s.notificationRepo.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledClubIDs, err := s.clubRepo.GetClubIDsLedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	rejections, err := s.notificationRepo.ListRejectionsByClubs(ctx, ledClubIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]*models.Notice, 0, len(reservations)+len(rejections))
	for _, n := range reservations {
		feed = append(feed, &models.Notice{
			Kind:      models.NoticeKindReservation,
			ID:        n.ID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			Payload:   n,
		})
	}
	for _, n := range rejections {
		feed = append(feed, &models.Notice{
			Kind:      models.NoticeKindRejection,
			ID:        n.ID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			Payload:   n,
		})
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})

	return feed, nil
}

// MarkRead flips is_read on notices of one kind
func (s *notificationServiceImpl) MarkRead(ctx context.Context, kind models.NoticeKind, ids []int64) error {
	return s.notificationRepo.MarkRead(ctx, kind, ids)
}
