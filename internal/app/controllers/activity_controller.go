package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/models/dto"
	"github.com/oguzk/campusclub/internal/app/services"
	"github.com/oguzk/campusclub/internal/middleware"
)

// ActivityController handles activity lifecycle and enrollment operations
type ActivityController struct {
	activityService   services.ActivityService
	enrollmentService services.EnrollmentService
}

// NewActivityController creates a new ActivityController
func NewActivityController(
	activityService services.ActivityService,
	enrollmentService services.EnrollmentService,
) *ActivityController {
	return &ActivityController{
		activityService:   activityService,
		enrollmentService: enrollmentService,
	}
}

// CreateActivity creates an activity in PENDING status
func (c *ActivityController) CreateActivity(ctx *gin.Context) {
	var req dto.CreateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid activity data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, _ := middleware.GetUserID(ctx)

	activity := &models.Activity{
		ClubID:          req.ClubID,
		Title:           req.Title,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		StartsAt:        req.StartsAt,
		CreatedBy:       userID,
	}

	created, err := c.activityService.CreateActivity(ctx, activity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toActivityResponse(created)))
}

// GetActivityByID retrieves an activity by ID
func (c *ActivityController) GetActivityByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	activity, err := c.activityService.GetActivityByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(toActivityResponse(activity)))
}

// ListActivitiesByClub retrieves a club's activities
func (c *ActivityController) ListActivitiesByClub(ctx *gin.Context) {
	clubID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	activities, err := c.activityService.ListActivitiesByClub(ctx, clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, toActivityResponse(a))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// Transition moves an activity along the approval state machine
func (c *ActivityController) Transition(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transition data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	err := c.activityService.Transition(ctx, id, models.ActivityStatus(req.Status), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// Enroll signs the authenticated user up for an activity
func (c *ActivityController) Enroll(ctx *gin.Context) {
	activityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	enrollmentID, err := c.enrollmentService.TryEnroll(ctx, activityID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(gin.H{"enrollmentId": enrollmentID}))
}

// Withdraw cancels the authenticated user's enrollment
func (c *ActivityController) Withdraw(ctx *gin.Context) {
	activityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.enrollmentService.TryWithdraw(ctx, activityID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// Recount reconciles the cached participant counter against the
// enrollment rows
func (c *ActivityController) Recount(ctx *gin.Context) {
	activityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	count, err := c.enrollmentService.Recount(ctx, activityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RecountResponse{
		ActivityID:       activityID,
		ParticipantCount: count,
	}))
}

func toActivityResponse(a *models.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:               a.ID,
		ClubID:           a.ClubID,
		Title:            a.Title,
		Description:      a.Description,
		Status:           string(a.Status),
		MaxParticipants:  a.MaxParticipants,
		ParticipantCount: a.ParticipantCount,
		StartsAt:         a.StartsAt,
		CreatedAt:        a.CreatedAt,
	}
}
