package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/task-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/task-platform-auth/internal/usecase"
)

// UserHandler exposes self-service profile endpoints.
type UserHandler struct {
	users *usecase.UserService
	auth  *usecase.AuthService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService, auth *usecase.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// RegisterRoutes binds profile routes behind the required-auth middleware.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireAuth(h.auth))
	r.GET("/me", h.me)
	r.PATCH("/me", h.updateMe)
	r.DELETE("/me", h.deactivateMe)
}

// Me godoc
// @Summary Get the caller's profile
// @Tags User
// @Produce json
// @Success 200 {object} UserSummary
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/user/me [get]
func (h *UserHandler) me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), current.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// UpdateMe godoc
// @Summary Update the caller's profile
// @Tags User
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/user/me [patch]
func (h *UserHandler) updateMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), current.ID, usecase.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "invalid email address"},
			{Err: usecase.ErrInvalidUsername, Status: http.StatusBadRequest, Message: "invalid username"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// DeactivateMe godoc
// @Summary Deactivate the caller's account
// @Description Logically deletes the account. Outstanding refresh tokens keep working until they expire.
// @Tags User
// @Produce json
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/user/me [delete]
func (h *UserHandler) deactivateMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.users.Deactivate(c.Request.Context(), current.ID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to deactivate account")
		return
	}

	c.Status(http.StatusNoContent)
}
