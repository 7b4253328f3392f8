package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/services"
	"github.com/skillswap/swap-service/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

// CreateNotification creates a targeted or platform-wide notification.
// Admin only; user-facing notifications are produced by swap and feedback
// flows.
// @Summary Create notification
// @Tags admin
// @Accept json
// @Produce json
// @Param notification body services.CreateNotificationRequest true "Notification data"
// @Success 201 {object} models.Notification
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/notifications [post]
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	h.LogRequest(c, "Creating notification")

	var req services.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, notification)
}

// ListNotifications lists the authenticated user's notifications, including
// platform-wide broadcasts.
// @Summary List own notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} services.NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notifications, err := h.notificationService.GetForUser(c.Request.Context(), actor, h.parseNotificationFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns the number of unread notifications.
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead marks one notification as read.
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path uint true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification of the actor as read.
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /notifications/mark-all-read [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification removes a notification. Recipient or admin.
// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Param id path uint true "Notification ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAllNotifications lists every notification. Admin only.
// @Summary List all notifications
// @Tags admin
// @Produce json
// @Success 200 {object} services.NotificationListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/notifications [get]
func (h *NotificationHandler) ListAllNotifications(c *gin.Context) {
	h.LogRequest(c, "Listing all notifications")

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), h.parseNotificationFilters(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// UpdateNotification edits a notification's content or state. Admin only.
// @Summary Update notification
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Notification ID"
// @Param notification body services.UpdateNotificationRequest true "Notification changes"
// @Success 200 {object} models.Notification
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/notifications/{id} [patch]
func (h *NotificationHandler) UpdateNotification(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating notification", "notification_id", id)

	var req services.UpdateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notification, err := h.notificationService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// BulkDeleteNotifications removes a batch of notifications. Admin only.
// @Summary Bulk delete notifications
// @Tags admin
// @Accept json
// @Produce json
// @Param ids body object true "IDs to delete"
// @Success 200 {object} map[string]int64
// @Failure 403 {object} ErrorResponse
// @Router /admin/notifications/bulk-delete [post]
func (h *NotificationHandler) BulkDeleteNotifications(c *gin.Context) {
	h.LogRequest(c, "Bulk deleting notifications")

	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	deleted, err := h.notificationService.BulkDelete(c.Request.Context(), req.IDs, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// NotificationStats returns delivery statistics. Admin only.
// @Summary Notification statistics
// @Tags admin
// @Produce json
// @Success 200 {object} repositories.NotificationStats
// @Failure 403 {object} ErrorResponse
// @Router /admin/notifications/stats [get]
func (h *NotificationHandler) NotificationStats(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.notificationService.Stats(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== HELPER METHODS =====

func (h *NotificationHandler) parseNotificationFilters(c *gin.Context) repositories.NotificationFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.NotificationFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		notificationType := models.NotificationType(typeStr)
		filters.Type = &notificationType
	}

	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := models.NotificationPriority(priorityStr)
		filters.Priority = &priority
	}

	if unreadStr := c.Query("unread"); unreadStr != "" {
		unread := unreadStr == "true"
		filters.IsActive = &unread
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filters.Search = &q
	}

	return filters
}
