package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/services"
	"github.com/skillswap/swap-service/internal/utils"
)

type SwapHandler struct {
	BaseHandler
	swapService services.SwapService
}

func NewSwapHandler(swapService services.SwapService, logger utils.Logger) *SwapHandler {
	return &SwapHandler{
		BaseHandler: NewBaseHandler(logger),
		swapService: swapService,
	}
}

// CreateSwap opens a swap request towards another user.
// @Summary Create swap request
// @Tags swaps
// @Accept json
// @Produce json
// @Param swap body services.CreateSwapRequest true "Swap request data"
// @Success 201 {object} services.SwapResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps [post]
func (h *SwapHandler) CreateSwap(c *gin.Context) {
	h.LogRequest(c, "Creating swap request")

	var req services.CreateSwapRequest
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

	swap, err := h.swapService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, swap)
}

// ListSwaps lists the authenticated user's swap requests.
// @Summary List own swap requests
// @Tags swaps
// @Produce json
// @Param status query string false "Filter by status"
// @Param direction query string false "sent or received"
// @Success 200 {object} services.SwapListResponse
// @Router /swaps [get]
func (h *SwapHandler) ListSwaps(c *gin.Context) {
	h.LogRequest(c, "Listing swap requests")

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	swaps, err := h.swapService.ListForUser(c.Request.Context(), actor, h.parseSwapFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, swaps)
}

// ListPublicSwaps lists pending swap requests from public profiles.
// @Summary Browse public swap requests
// @Tags swaps
// @Produce json
// @Param skill_id query uint false "Filter by skill on either side"
// @Success 200 {object} services.SwapListResponse
// @Router /swaps/public [get]
func (h *SwapHandler) ListPublicSwaps(c *gin.Context) {
	h.LogRequest(c, "Listing public swap requests")

	swaps, err := h.swapService.GetPublic(c.Request.Context(), h.parseSwapFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, swaps)
}

// GetSwap retrieves a swap request visible to the actor.
// @Summary Get swap request by ID
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 200 {object} services.SwapResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /swaps/{id} [get]
func (h *SwapHandler) GetSwap(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	swap, err := h.swapService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, swap)
}

// AcceptSwap accepts a pending swap request. Receiver only.
// @Summary Accept swap request
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 200 {object} services.SwapResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps/{id}/accept [post]
func (h *SwapHandler) AcceptSwap(c *gin.Context) {
	h.transition(c, "Accepting swap request", h.swapService.Accept)
}

// RejectSwap rejects a pending swap request. Receiver only.
// @Summary Reject swap request
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 200 {object} services.SwapResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps/{id}/reject [post]
func (h *SwapHandler) RejectSwap(c *gin.Context) {
	h.transition(c, "Rejecting swap request", h.swapService.Reject)
}

// CancelSwap withdraws a pending swap request. Requester only.
// @Summary Cancel swap request
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 200 {object} services.SwapResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps/{id}/cancel [post]
func (h *SwapHandler) CancelSwap(c *gin.Context) {
	h.transition(c, "Cancelling swap request", h.swapService.Cancel)
}

// CompleteSwap marks an accepted swap as completed. Either party.
// @Summary Complete swap request
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 200 {object} services.SwapResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps/{id}/complete [post]
func (h *SwapHandler) CompleteSwap(c *gin.Context) {
	h.transition(c, "Completing swap request", h.swapService.Complete)
}

// DeleteSwap removes an unanswered swap request. Requester only.
// @Summary Delete swap request
// @Tags swaps
// @Produce json
// @Param id path uint true "Swap request ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /swaps/{id} [delete]
func (h *SwapHandler) DeleteSwap(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting swap request", "swap_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.swapService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAllSwaps lists every swap request. Admin only.
// @Summary List all swap requests
// @Tags admin
// @Produce json
// @Success 200 {object} services.SwapListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/swaps [get]
func (h *SwapHandler) ListAllSwaps(c *gin.Context) {
	h.LogRequest(c, "Listing all swap requests")

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	swaps, err := h.swapService.List(c.Request.Context(), h.parseSwapFilters(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, swaps)
}

// ===== HELPER METHODS =====

type transitionFunc func(ctx context.Context, id uint, actor *models.User) (*services.SwapResponse, error)

func (h *SwapHandler) transition(c *gin.Context, logMsg string, fn transitionFunc) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, logMsg, "swap_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	swap, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) parseSwapFilters(c *gin.Context) repositories.SwapRequestFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.SwapRequestFilters{
		Direction: c.Query("direction"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.SwapStatus(statusStr)
		filters.Status = &status
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filters.Search = &q
	}

	if skillIDStr := c.Query("skill_id"); skillIDStr != "" {
		if skillID, err := strconv.ParseUint(skillIDStr, 10, 64); err == nil && skillID > 0 {
			id := uint(skillID)
			filters.SkillID = &id
		}
	}

	return filters
}
