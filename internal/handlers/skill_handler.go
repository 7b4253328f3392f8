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

type SkillHandler struct {
	BaseHandler
	skillService services.SkillService
}

func NewSkillHandler(skillService services.SkillService, logger utils.Logger) *SkillHandler {
	return &SkillHandler{
		BaseHandler:  NewBaseHandler(logger),
		skillService: skillService,
	}
}

// CreateSkill creates a skill entry. Non-admin submissions stay pending
// until approved.
// @Summary Create skill
// @Tags skills
// @Accept json
// @Produce json
// @Param skill body services.CreateSkillRequest true "Skill data"
// @Success 201 {object} services.SkillResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /skills [post]
func (h *SkillHandler) CreateSkill(c *gin.Context) {
	h.LogRequest(c, "Creating skill")

	var req services.CreateSkillRequest
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

	skill, err := h.skillService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// ListSkills lists skills with optional filtering.
// @Summary List skills
// @Tags skills
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Name search"
// @Success 200 {object} services.SkillListResponse
// @Router /skills [get]
func (h *SkillHandler) ListSkills(c *gin.Context) {
	h.LogRequest(c, "Listing skills")

	skills, err := h.skillService.List(c.Request.Context(), h.parseSkillFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

// SearchSkills returns skills matching a name prefix, for autocomplete.
// @Summary Search skills
// @Tags skills
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results (default: 10)"
// @Success 200 {array} services.SkillResponse
// @Failure 400 {object} ErrorResponse
// @Router /skills/search [get]
func (h *SkillHandler) SearchSkills(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	skills, err := h.skillService.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

// GetSkill retrieves a skill by ID.
// @Summary Get skill by ID
// @Tags skills
// @Produce json
// @Param id path uint true "Skill ID"
// @Success 200 {object} services.SkillResponse
// @Failure 404 {object} ErrorResponse
// @Router /skills/{id} [get]
func (h *SkillHandler) GetSkill(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	skill, err := h.skillService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// UpdateSkill updates a skill entry.
// @Summary Update skill
// @Tags skills
// @Accept json
// @Produce json
// @Param id path uint true "Skill ID"
// @Param skill body services.UpdateSkillRequest true "Skill changes"
// @Success 200 {object} services.SkillResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /skills/{id} [put]
func (h *SkillHandler) UpdateSkill(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating skill", "skill_id", id)

	var req services.UpdateSkillRequest
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

	skill, err := h.skillService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// DeleteSkill removes a skill not referenced by any user.
// @Summary Delete skill
// @Tags skills
// @Produce json
// @Param id path uint true "Skill ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /skills/{id} [delete]
func (h *SkillHandler) DeleteSkill(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting skill", "skill_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.skillService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPendingSkills lists skills awaiting moderation. Admin only.
// @Summary List pending skills
// @Tags admin
// @Produce json
// @Success 200 {object} services.SkillListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/skills/pending [get]
func (h *SkillHandler) GetPendingSkills(c *gin.Context) {
	h.LogRequest(c, "Listing pending skills")

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	skills, err := h.skillService.GetPending(c.Request.Context(), h.parseSkillFilters(c), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

// ApproveSkill promotes a pending skill to the global catalog. Admin only.
// @Summary Approve skill
// @Tags admin
// @Produce json
// @Param id path uint true "Skill ID"
// @Success 200 {object} services.SkillResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/skills/{id}/approve [post]
func (h *SkillHandler) ApproveSkill(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Approving skill", "skill_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	skill, err := h.skillService.Approve(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// RejectSkill removes a pending skill from the catalog. Admin only.
// @Summary Reject skill
// @Tags admin
// @Produce json
// @Param id path uint true "Skill ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/skills/{id}/reject [post]
func (h *SkillHandler) RejectSkill(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Rejecting skill", "skill_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.skillService.Reject(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== HELPER METHODS =====

func (h *SkillHandler) parseSkillFilters(c *gin.Context) repositories.SkillFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.SkillFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filters.Query = &q
	}

	if globalStr := c.Query("global"); globalStr != "" {
		global := globalStr == "true"
		filters.IsGlobal = &global
	}

	return filters
}
