package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/middleware"
	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service service.LinkService
	baseURL string
	logger  *zap.Logger
}

func NewLinkHandler(service service.LinkService, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

type ShortenRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type ShortenResponse struct {
	LinkID      string    `json:"link_id"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Shorten godoc
// @Summary Create a short link
// @Description Create a new shortened URL for the authenticated user
// @Tags links
// @Accept json
// @Produce json
// @Param request body ShortenRequest true "Link creation request"
// @Success 201 {object} ShortenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	identity := middleware.GetIdentity(c)
	link, err := h.service.Shorten(c.Request.Context(), identity, req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ShortenResponse{
		LinkID:      link.LinkID,
		ShortURL:    h.baseURL + "/" + link.LinkID,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	})
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by link id, counting the visit
// @Tags links
// @Produce json
// @Param code path string true "Link id"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	linkID := c.Param("code")
	if linkID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_code",
			Message: "Link id is required",
		})
		return
	}

	link, err := h.service.Resolve(c.Request.Context(), linkID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// ListUserLinks godoc
// @Summary List a user's links
// @Description List links owned by a user; visit counters are visible to the owner and admins only
// @Tags links
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.LinkView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{username}/links [get]
func (h *LinkHandler) ListUserLinks(c *gin.Context) {
	username := c.Param("username")

	identity := middleware.GetIdentity(c)
	views, err := h.service.ListForUser(c.Request.Context(), identity, username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// DeleteLink godoc
// @Summary Delete a short link
// @Description Delete a link; allowed for its owner and admins
// @Tags links
// @Produce json
// @Param code path string true "Link id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	linkID := c.Param("code")

	identity := middleware.GetIdentity(c)
	if err := h.service.Delete(c.Request.Context(), identity, linkID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

// respondError переводит типизированные ошибки сервиса в HTTP статусы
func (h *LinkHandler) respondError(c *gin.Context, err error) {
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
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "quota_exceeded",
			Message: "Link quota exceeded for this account",
		})
	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Link not found",
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
