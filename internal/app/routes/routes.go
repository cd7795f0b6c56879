package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/oguzk/campusclub/internal/app/controllers"
	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	clubController *controllers.ClubController,
	membershipController *controllers.MembershipController,
	activityController *controllers.ActivityController,
	pointsController *controllers.PointsController,
	notificationController *controllers.NotificationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		clubs := authenticated.Group("/clubs")
		{
			clubs.GET("", clubController.GetAllClubs)
			clubs.GET("/:id", clubController.GetClubByID)
			clubs.GET("/:id/members", membershipController.ListMembers)
			clubs.GET("/:id/activities", activityController.ListActivitiesByClub)

			// Leadership and membership management is restricted to admins
			// and club leaders
			clubsManaged := clubs.Group("")
			clubsManaged.Use(authMiddleware.RoleRequired(string(models.RoleAdmin), string(models.RoleLeader)))
			{
				clubsManaged.POST("/:id/members", membershipController.AddMember)
				clubsManaged.POST("/:id/leader", membershipController.PromoteLeader)
			}

			clubsAdmin := clubs.Group("")
			clubsAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				clubsAdmin.POST("", clubController.CreateClub)
				clubsAdmin.DELETE("/:id", clubController.DissolveClub)
			}
		}

		memberships := authenticated.Group("/memberships")
		memberships.Use(authMiddleware.RoleRequired(string(models.RoleAdmin), string(models.RoleLeader)))
		{
			memberships.DELETE("/:membershipId", membershipController.RemoveMember)
			memberships.PUT("/:membershipId/role", membershipController.SetRole)
		}

		activities := authenticated.Group("/activities")
		{
			activities.GET("/:id", activityController.GetActivityByID)
			activities.POST("/:id/enroll", activityController.Enroll)
			activities.DELETE("/:id/enroll", activityController.Withdraw)

			activitiesManaged := activities.Group("")
			activitiesManaged.Use(authMiddleware.RoleRequired(string(models.RoleAdmin), string(models.RoleLeader)))
			{
				activitiesManaged.POST("", activityController.CreateActivity)
			}

			// Approval decisions and counter reconciliation are admin-only
			activitiesAdmin := activities.Group("")
			activitiesAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				activitiesAdmin.POST("/:id/transition", activityController.Transition)
				activitiesAdmin.POST("/:id/recount", activityController.Recount)
			}
		}

		points := authenticated.Group("/points")
		{
			points.GET("/balance", pointsController.GetBalance)
			points.GET("/entries", pointsController.ListEntries)
			points.POST("/redeem", pointsController.Redeem)

			pointsAdmin := points.Group("")
			pointsAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				pointsAdmin.POST("/award", pointsController.Award)
			}
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.GetFeed)
			notifications.POST("/read", notificationController.MarkRead)
		}
	}
}
