package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/services"
	"github.com/skillswap/swap-service/internal/utils"
)

// HandlerManager wires handlers and middleware into the router.
type HandlerManager struct {
	userHandler         *UserHandler
	skillHandler        *SkillHandler
	swapHandler         *SwapHandler
	feedbackHandler     *FeedbackHandler
	notificationHandler *NotificationHandler
	reportHandler       *ReportHandler

	authMiddleware *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier IdentityVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:         NewUserHandler(serviceManager.User(), logger),
		skillHandler:        NewSkillHandler(serviceManager.Skill(), logger),
		swapHandler:         NewSwapHandler(serviceManager.Swap(), logger),
		feedbackHandler:     NewFeedbackHandler(serviceManager.Feedback(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		reportHandler:       NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:      NewAuthMiddleware(verifier, serviceManager.User()),
	}
}

// SetupRoutes registers all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Users
	users := v1.Group("/users")
	{
		users.POST("", hm.authMiddleware.RequireIdentity(), hm.userHandler.Register)
		users.GET("", hm.authMiddleware.OptionalAuth(), hm.userHandler.ListUsers)
		users.GET("/search", hm.authMiddleware.OptionalAuth(), hm.userHandler.SearchBySkill)
		users.GET("/me", hm.authMiddleware.RequireAuth(), hm.userHandler.GetMe)
		users.GET("/:id", hm.authMiddleware.OptionalAuth(), hm.userHandler.GetUser)
		users.PUT("/:id", hm.authMiddleware.RequireAuth(), hm.userHandler.UpdateUser)
		users.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.userHandler.DeleteUser)
		users.POST("/:id/profile-picture", hm.authMiddleware.RequireAuth(), hm.userHandler.UploadProfilePicture)
		users.GET("/:id/feedback", hm.feedbackHandler.GetUserFeedback)
		users.GET("/:id/feedback/summary", hm.feedbackHandler.GetUserFeedbackSummary)
	}

	// Skills
	skills := v1.Group("/skills")
	{
		skills.GET("", hm.skillHandler.ListSkills)
		skills.GET("/search", hm.skillHandler.SearchSkills)
		skills.GET("/:id", hm.skillHandler.GetSkill)
		skills.POST("", hm.authMiddleware.RequireAuth(), hm.skillHandler.CreateSkill)
		skills.PUT("/:id", hm.authMiddleware.RequireAuth(), hm.skillHandler.UpdateSkill)
		skills.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.skillHandler.DeleteSkill)
	}

	// Swap requests
	swaps := v1.Group("/swaps")
	{
		swaps.GET("/public", hm.swapHandler.ListPublicSwaps)
		swaps.Use(hm.authMiddleware.RequireAuth())
		swaps.POST("", hm.swapHandler.CreateSwap)
		swaps.GET("", hm.swapHandler.ListSwaps)
		swaps.GET("/:id", hm.swapHandler.GetSwap)
		swaps.DELETE("/:id", hm.swapHandler.DeleteSwap)
		swaps.POST("/:id/accept", hm.swapHandler.AcceptSwap)
		swaps.POST("/:id/reject", hm.swapHandler.RejectSwap)
		swaps.POST("/:id/cancel", hm.swapHandler.CancelSwap)
		swaps.POST("/:id/complete", hm.swapHandler.CompleteSwap)
	}

	// Feedback
	feedback := v1.Group("/feedback")
	{
		feedback.GET("/:id", hm.feedbackHandler.GetFeedback)
		feedback.POST("", hm.authMiddleware.RequireAuth(), hm.feedbackHandler.CreateFeedback)
		feedback.PUT("/:id", hm.authMiddleware.RequireAuth(), hm.feedbackHandler.UpdateFeedback)
		feedback.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.feedbackHandler.DeleteFeedback)
	}

	// Notifications
	notifications := v1.Group("/notifications")
	notifications.Use(hm.authMiddleware.RequireAuth())
	{
		notifications.GET("", hm.notificationHandler.ListNotifications)
		notifications.GET("/unread-count", hm.notificationHandler.UnreadCount)
		notifications.POST("/mark-all-read", hm.notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", hm.notificationHandler.MarkRead)
		notifications.DELETE("/:id", hm.notificationHandler.DeleteNotification)
	}

	// Admin
	admin := v1.Group("/admin")
	admin.Use(hm.authMiddleware.RequireAuth(), hm.authMiddleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/users/:id/ban", hm.userHandler.BanUser)
		admin.POST("/users/:id/unban", hm.userHandler.UnbanUser)
		admin.PUT("/users/:id/role", hm.userHandler.ChangeUserRole)

		admin.GET("/skills/pending", hm.skillHandler.GetPendingSkills)
		admin.POST("/skills/:id/approve", hm.skillHandler.ApproveSkill)
		admin.POST("/skills/:id/reject", hm.skillHandler.RejectSkill)

		admin.GET("/swaps", hm.swapHandler.ListAllSwaps)
		admin.GET("/feedback", hm.feedbackHandler.ListAllFeedback)

		admin.GET("/notifications", hm.notificationHandler.ListAllNotifications)
		admin.POST("/notifications", hm.notificationHandler.CreateNotification)
		admin.PATCH("/notifications/:id", hm.notificationHandler.UpdateNotification)
		admin.POST("/notifications/bulk-delete", hm.notificationHandler.BulkDeleteNotifications)
		admin.GET("/notifications/stats", hm.notificationHandler.NotificationStats)

		admin.POST("/reports", hm.reportHandler.GenerateReport)
		admin.GET("/reports", hm.reportHandler.ListReports)
		admin.GET("/reports/:id", hm.reportHandler.GetReport)
		admin.GET("/stats", hm.reportHandler.PlatformStats)
		admin.GET("/exports/users", hm.reportHandler.ExportUsers)
		admin.GET("/exports/swaps", hm.reportHandler.ExportSwaps)
	}

	// Health check endpoint, also exposed under the versioned prefix for
	// gateways that only route /api/v1.
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "swap-service",
		})
	}
	router.GET("/health", health)
	v1.GET("/health", health)
}
