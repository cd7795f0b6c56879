package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/models/dto"
	"github.com/oguzk/campusclub/internal/app/services"
	"github.com/oguzk/campusclub/internal/middleware"
)

// NotificationController serves the unified notification feed
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetFeed returns the caller's merged notification feed
func (c *NotificationController) GetFeed(ctx *gin.Context) {
	userID, exists := middleware.GetUserID(ctx)
	if !exists {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	feed, err := c.notificationService.GetFeed(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(feed))
}

// MarkRead marks feed items of one kind as read
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	var req dto.MarkNoticesReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid mark-read data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	err := c.notificationService.MarkRead(ctx, models.NoticeKind(req.Kind), req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}
