package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/shortlinks/internal/config"
	"github.com/SergeiKhy/shortlinks/internal/middleware"
	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService service.AuthService
	userService service.UserService
	sessionCfg  config.SessionConfig
	logger      *zap.Logger
}

func NewUserHandler(
	authService service.AuthService,
	userService service.UserService,
	sessionCfg config.SessionConfig,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		sessionCfg:  sessionCfg,
		logger:      logger,
	}
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type UpdateUsernameRequest struct {
	NewUsername string `json:"new_username" binding:"required,min=3,max=32"`
}

// Register godoc
// @Summary Register a new account
// @Tags users
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Registration request"
// @Success 201 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewUserProfile(user))
}

// Login godoc
// @Summary Log in to an account
// @Tags users
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Login request"
// @Success 200 {object} models.Identity
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	token, identity, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetCookie(
		h.sessionCfg.CookieName,
		token,
		int(h.sessionCfg.TTL.Seconds()),
		"/",
		"",
		false,
		true, // httpOnly
	)

	c.JSON(http.StatusOK, identity)
}

// Logout godoc
// @Summary Log out of the current session
// @Tags users
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if token, ok := middleware.GetSessionToken(c); ok {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}

	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ListUsers godoc
// @Summary List public user profiles
// @Tags users
// @Produce json
// @Success 200 {array} models.UserProfile
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	profiles, err := h.userService.ListProfiles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfile godoc
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{username} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateUsername godoc
// @Summary Change a user's username
// @Description Allowed for the user themselves and admins
// @Tags users
// @Accept json
// @Produce json
// @Param username path string true "Current username"
// @Param request body UpdateUsernameRequest true "New username"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{username}/username [put]
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	var req UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	target, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	identity := middleware.GetIdentity(c)
	if err := h.userService.UpdateUsername(c.Request.Context(), identity, target.ID, req.NewUsername); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Username updated"})
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	var storageErr *service.StorageError
	if errors.As(err, &storageErr) {
		h.logger.Error("Storage error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: storageErr.Message,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid username or password",
		})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Operation not permitted",
		})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "username_taken",
			Message: "Username already taken",
		})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Unexpected error",
		})
	}
}
