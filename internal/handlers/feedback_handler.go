package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/services"
	"github.com/skillswap/swap-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// CreateFeedback leaves feedback for a completed swap partner.
// @Summary Create feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param feedback body services.CreateFeedbackRequest true "Feedback data"
// @Success 201 {object} services.FeedbackResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /feedback [post]
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	h.LogRequest(c, "Creating feedback")

	var req services.CreateFeedbackRequest
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

	feedback, err := h.feedbackService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

// GetFeedback retrieves one feedback entry.
// @Summary Get feedback by ID
// @Tags feedback
// @Produce json
// @Param id path uint true "Feedback ID"
// @Success 200 {object} services.FeedbackResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback/{id} [get]
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	feedback, err := h.feedbackService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// UpdateFeedback edits a feedback entry. Reviewer only.
// @Summary Update feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Param id path uint true "Feedback ID"
// @Param feedback body services.UpdateFeedbackRequest true "Feedback changes"
// @Success 200 {object} services.FeedbackResponse
// @Failure 403 {object} ErrorResponse
// @Router /feedback/{id} [put]
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating feedback", "feedback_id", id)

	var req services.UpdateFeedbackRequest
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

	feedback, err := h.feedbackService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// DeleteFeedback removes a feedback entry. Reviewer or admin.
// @Summary Delete feedback
// @Tags feedback
// @Produce json
// @Param id path uint true "Feedback ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Router /feedback/{id} [delete]
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting feedback", "feedback_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserFeedback lists feedback received by a user.
// @Summary List feedback for a user
// @Tags feedback
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} services.FeedbackListResponse
// @Router /users/{id}/feedback [get]
func (h *FeedbackHandler) GetUserFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	feedback, err := h.feedbackService.GetForUser(c.Request.Context(), id, h.parseFeedbackFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// GetUserFeedbackSummary returns the aggregate rating for a user.
// @Summary Get feedback summary for a user
// @Tags feedback
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} repositories.FeedbackSummary
// @Router /users/{id}/feedback/summary [get]
func (h *FeedbackHandler) GetUserFeedbackSummary(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	summary, err := h.feedbackService.SummaryForUser(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListAllFeedback lists every feedback entry. Admin only.
// @Summary List all feedback
// @Tags admin
// @Produce json
// @Success 200 {object} services.FeedbackListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/feedback [get]
func (h *FeedbackHandler) ListAllFeedback(c *gin.Context) {
	h.LogRequest(c, "Listing all feedback")

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	feedback, err := h.feedbackService.List(c.Request.Context(), h.parseFeedbackFilters(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// ===== HELPER METHODS =====

func (h *FeedbackHandler) parseFeedbackFilters(c *gin.Context) repositories.FeedbackFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.FeedbackFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if ratingStr := c.Query("rating"); ratingStr != "" {
		if rating, err := strconv.Atoi(ratingStr); err == nil && rating >= 1 && rating <= 5 {
			filters.Rating = &rating
		}
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filters.Search = &q
	}

	return filters
}
