package handler

import (
	"net/http"

	"github.com/SergeiKhy/shortlinks/internal/config"
	"github.com/SergeiKhy/shortlinks/internal/middleware"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	linkService service.LinkService,
	authService service.AuthService,
	userService service.UserService,
	sessionRepo repository.SessionRepository,
	cfg *config.Config,
	rateLimiter *middleware.RateLimiter,
	loginLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Rate limiting для всех запросов
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	// Восстановление личности из сессионной cookie
	router.Use(middleware.Session(middleware.SessionConfig{
		CookieName:  cfg.Session.CookieName,
		SessionRepo: sessionRepo,
		Logger:      logger,
	}))

	linkHandler := NewLinkHandler(linkService, cfg.App.BaseURL, logger)
	userHandler := NewUserHandler(authService, userService, cfg.Session, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		// Более строгий лимит на регистрацию и вход (подбор паролей)
		authRoutes := v1.Group("")
		if loginLimiter != nil {
			authRoutes.Use(loginLimiter.MiddlewareWithKey(func(c *gin.Context) string {
				return c.ClientIP()
			}))
		}
		authRoutes.POST("/users", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)

		v1.POST("/logout", userHandler.Logout)

		v1.GET("/users", userHandler.ListUsers)
		v1.GET("/users/:username", userHandler.GetProfile)
		v1.GET("/users/:username/links", linkHandler.ListUserLinks)
		v1.PUT("/users/:username/username", middleware.RequireAuth(), userHandler.UpdateUsername)

		v1.POST("/links", middleware.RequireAuth(), linkHandler.Shorten)
		// Без RequireAuth: аноним получает 403 от политики, а не 401
		v1.DELETE("/links/:code", linkHandler.DeleteLink)
	}

	// Редирект (корневой путь) — доступен анониму
	router.GET("/:code", linkHandler.Redirect)

	return router
}

// HealthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
