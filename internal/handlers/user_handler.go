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

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// Register creates a profile for the verified external identity.
// @Summary Register a user profile
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "Profile data"
// @Success 201 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Registering user")

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	// The subject comes from the verified token, never from the body.
	req.ExternalID = c.GetString("external_id")

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers lists public user profiles.
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or location)"
// @Success 200 {object} services.UserListResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)

	users, err := h.userService.List(c.Request.Context(), filters, actorOrNil(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// SearchBySkill finds users offering or wanting the named skills.
// @Summary Search users by skill
// @Tags users
// @Produce json
// @Param q query string true "Comma-separated skill names"
// @Param type query string false "offered, wanted or both (default: both)"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchBySkill(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	h.LogRequest(c, "Searching users by skill", "query", query)

	var skillNames []string
	for _, name := range strings.Split(query, ",") {
		if name = strings.TrimSpace(name); name != "" {
			skillNames = append(skillNames, name)
		}
	}

	filters := h.parseUserFilters(c)
	// The q parameter names skills here, not users.
	filters.Query = nil

	users, err := h.userService.SearchBySkill(c.Request.Context(), skillNames, c.DefaultQuery("type", "both"), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser retrieves a user profile by ID.
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting user", "user_id", id)

	user, err := h.userService.GetByID(c.Request.Context(), id, actorOrNil(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetMe returns the profile of the authenticated user.
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} services.UserResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.ID, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser updates a user profile.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param user body services.UpdateUserRequest true "Profile changes"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating user", "user_id", id)

	var req services.UpdateUserRequest
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

	user, err := h.userService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user profile and its dependent records.
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting user", "user_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadProfilePicture replaces the profile picture from a multipart form.
// @Summary Upload profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "User ID"
// @Param file formData file true "Image file"
// @Success 200 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/profile-picture [post]
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Uploading profile picture", "user_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Image file is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateProfilePicture(c.Request.Context(), id, actor, fileHeader.Filename, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// BanUser marks a user as banned. Admin only.
// @Summary Ban user
// @Tags admin
// @Produce json
// @Param id path uint true "User ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{id}/ban [post]
func (h *UserHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true, "Banning user")
}

// UnbanUser lifts a ban. Admin only.
// @Summary Unban user
// @Tags admin
// @Produce json
// @Param id path uint true "User ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{id}/unban [post]
func (h *UserHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false, "Unbanning user")
}

// ChangeUserRole switches a user between the user and admin roles. Admin only.
// @Summary Change user role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param role body validator.UserRoleUpdateRequest true "New role"
// @Success 204 "No content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) ChangeUserRole(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Changing user role", "user_id", id, "role", req.Role)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.userService.ChangeRole(c.Request.Context(), id, req.Role, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) setBanned(c *gin.Context, banned bool, logMsg string) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, logMsg, "user_id", id)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.userService.SetBanned(c.Request.Context(), id, banned, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.UserFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filters.Query = &q
	}

	// Role and ban filters only take effect for admins; the service layer
	// enforces visibility for everyone else.
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}

	if bannedStr := c.Query("banned"); bannedStr != "" {
		banned := bannedStr == "true"
		filters.IsBanned = &banned
	}

	return filters
}
