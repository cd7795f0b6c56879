package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/models/dto"
	"github.com/oguzk/campusclub/internal/app/services"
	"github.com/oguzk/campusclub/internal/middleware"
)

// MembershipController handles club membership operations, including the
// leader promotion endpoint.
type MembershipController struct {
	membershipService services.MembershipService
	leadershipService services.LeadershipService
}

// NewMembershipController creates a new MembershipController
func NewMembershipController(
	membershipService services.MembershipService,
	leadershipService services.LeadershipService,
) *MembershipController {
	return &MembershipController{
		membershipService: membershipService,
		leadershipService: leadershipService,
	}
}

// ListMembers retrieves a club's active memberships
func (c *MembershipController) ListMembers(ctx *gin.Context) {
	clubID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	members, err := c.membershipService.ListMembers(ctx, clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.MembershipResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, toMembershipResponse(m))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// AddMember adds a user to a club
func (c *MembershipController) AddMember(ctx *gin.Context) {
	clubID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid member data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	membershipID, err := c.membershipService.AddMember(ctx, clubID, req.UserID, models.MembershipRole(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	membership, err := c.membershipService.GetMember(ctx, membershipID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toMembershipResponse(membership)))
}

// RemoveMember removes a non-leader member from a club
func (c *MembershipController) RemoveMember(ctx *gin.Context) {
	membershipID, ok := parseIDParam(ctx, "membershipId")
	if !ok {
		return
	}

	if err := c.membershipService.RemoveMember(ctx, membershipID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// SetRole changes a member's role between MEMBER and VICE_LEADER
func (c *MembershipController) SetRole(ctx *gin.Context) {
	membershipID, ok := parseIDParam(ctx, "membershipId")
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid role data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.membershipService.SetRole(ctx, membershipID, models.MembershipRole(req.Role)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// PromoteLeader makes the named membership the club's leader
func (c *MembershipController) PromoteLeader(ctx *gin.Context) {
	clubID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.PromoteLeaderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid promotion data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.leadershipService.PromoteToLeader(ctx, clubID, req.MembershipID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

func toMembershipResponse(m *models.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		ClubID:   m.ClubID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinDate: m.JoinDate,
	}
}
