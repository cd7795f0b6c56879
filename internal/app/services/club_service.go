package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/models/dto"
	"github.com/oguzk/campusclub/internal/app/repositories"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// ClubService defines the interface for club operations
type ClubService interface {
	GetAllClubs(ctx context.Context, search *string, page, pageSize int) (*dto.ClubListResponse, error)
	GetClubByID(ctx context.Context, id int64) (*dto.ClubResponse, error)
	CreateClub(ctx context.Context, req *dto.CreateClubRequest) (*dto.ClubResponse, error)
	DissolveClub(ctx context.Context, id int64) error
}

type clubServiceImpl struct {
	clubRepo          *repositories.ClubRepository
	userRepo          *repositories.UserRepository
	membershipService MembershipService
	leadershipService LeadershipService
	logger            zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(
	clubRepo *repositories.ClubRepository,
	userRepo *repositories.UserRepository,
	membershipService MembershipService,
	leadershipService LeadershipService,
	logger zerolog.Logger,
) ClubService {
	return &clubServiceImpl{
		clubRepo:          clubRepo,
		userRepo:          userRepo,
		membershipService: membershipService,
		leadershipService: leadershipService,
		logger:            logger,
	}
}

// GetAllClubs retrieves clubs with pagination and member counts
func (s *clubServiceImpl) GetAllClubs(ctx context.Context, search *string, page, pageSize int) (*dto.ClubListResponse, error) {
	clubs, total, err := s.clubRepo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get clubs from repository")
		return nil, err
	}

	clubIDs := make([]int64, 0, len(clubs))
	for _, club := range clubs {
		clubIDs = append(clubIDs, club.ID)
	}

	counts, err := s.clubRepo.GetMemberCountsByClubIDs(ctx, clubIDs)
	if err != nil {
		counts = map[int64]int{}
	}

	clubResponses := make([]dto.ClubResponse, 0, len(clubs))
	for _, club := range clubs {
		clubResponses = append(clubResponses, s.mapClub(ctx, &club, counts[club.ID]))
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return &dto.ClubListResponse{
		Clubs: clubResponses,
		PaginationInfo: dto.PaginationInfo{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  totalPages,
		},
	}, nil
}

// GetClubByID retrieves a club by ID
func (s *clubServiceImpl) GetClubByID(ctx context.Context, id int64) (*dto.ClubResponse, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, apperrors.ErrClubNotFound
	}

	counts, err := s.clubRepo.GetMemberCountsByClubIDs(ctx, []int64{id})
	if err != nil {
		counts = map[int64]int{}
	}

	resp := s.mapClub(ctx, club, counts[id])
	return &resp, nil
}

// CreateClub creates a club; when an initial leader is named, the user is
// added as a member and then promoted through the coordinator so the
// leader invariants hold from the start.
func (s *clubServiceImpl) CreateClub(ctx context.Context, req *dto.CreateClubRequest) (*dto.ClubResponse, error) {
	clubID, err := s.clubRepo.Create(ctx, &models.Club{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create club")
		return nil, err
	}

	if req.LeaderUserID != nil {
		membershipID, err := s.membershipService.AddMember(ctx, clubID, *req.LeaderUserID, models.MembershipRoleMember)
		if err != nil {
			return nil, err
		}

		if err := s.leadershipService.PromoteToLeader(ctx, clubID, membershipID); err != nil {
			return nil, err
		}
	}

	return s.GetClubByID(ctx, clubID)
}

// DissolveClub demotes the leader atomically and deletes the club.
// Memberships and activities cascade in the schema.
func (s *clubServiceImpl) DissolveClub(ctx context.Context, id int64) error {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if club == nil {
		return apperrors.ErrClubNotFound
	}

	if err := s.leadershipService.DissolveLeadership(ctx, id); err != nil {
		return err
	}

	if err := s.clubRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("clubID", id).Msg("Failed to delete club")
		return err
	}

	s.logger.Info().Int64("clubID", id).Msg("Club dissolved")
	return nil
}

func (s *clubServiceImpl) mapClub(ctx context.Context, club *models.Club, memberCount int) dto.ClubResponse {
	var leaderResponse *dto.UserBasicResponse
	if club.LeaderID != nil {
		leader, err := s.userRepo.FindByID(ctx, *club.LeaderID)
		if err == nil && leader != nil {
			leaderResponse = &dto.UserBasicResponse{
				ID:        leader.ID,
				FirstName: leader.FirstName,
				LastName:  leader.LastName,
				Email:     leader.Email,
			}
		}
	}

	return dto.ClubResponse{
		ID:          club.ID,
		Name:        club.Name,
		Description: club.Description,
		LeaderID:    club.LeaderID,
		Leader:      leaderResponse,
		MemberCount: memberCount,
		CreatedAt:   club.CreatedAt,
	}
}
