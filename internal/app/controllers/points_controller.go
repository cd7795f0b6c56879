package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/models/dto"
	"github.com/oguzk/campusclub/internal/app/services"
	"github.com/oguzk/campusclub/internal/middleware"
)

// PointsController handles the points ledger endpoints
type PointsController struct {
	pointsService services.PointsService
}

// NewPointsController creates a new PointsController
func NewPointsController(pointsService services.PointsService) *PointsController {
	return &PointsController{pointsService: pointsService}
}

// Award credits points to a user. Admin only.
func (c *PointsController) Award(ctx *gin.Context) {
	var req dto.AwardPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid award data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	adminID, _ := middleware.GetUserID(ctx)

	entry, err := c.pointsService.Award(ctx, req.UserID, req.Amount, adminID, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toPointEntryResponse(entry)))
}

// Redeem debits points from the caller's balance
func (c *PointsController) Redeem(ctx *gin.Context) {
	var req dto.RedeemPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid redemption data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	entry, err := c.pointsService.Redeem(ctx, userID, req.Amount, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toPointEntryResponse(entry)))
}

// GetBalance reports the caller's current balance
func (c *PointsController) GetBalance(ctx *gin.Context) {
	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	balance, err := c.pointsService.GetBalance(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PointBalanceResponse{
		UserID:  userID,
		Balance: balance,
	}))
}

// ListEntries returns the caller's ledger history
func (c *PointsController) ListEntries(ctx *gin.Context) {
	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	entries, err := c.pointsService.ListEntries(ctx, userID, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.PointEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toPointEntryResponse(e))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

func toPointEntryResponse(e *models.PointEntry) dto.PointEntryResponse {
	return dto.PointEntryResponse{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Amount:    e.Amount,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}
