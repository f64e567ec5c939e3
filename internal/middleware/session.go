package middleware

import (
	"net/http"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключи контекста gin
const (
	identityKey     = "identity"
	sessionTokenKey = "session_token"
)

// SessionConfig конфигурация session middleware
type SessionConfig struct {
	CookieName  string
	SessionRepo repository.SessionRepository
	Logger      *zap.Logger
}

// Session middleware восстанавливает личность запрашивающего из сессионной cookie.
// Запросы без валидной сессии проходят дальше как анонимные.
func Session(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		identity, err := cfg.SessionRepo.Get(c.Request.Context(), token)
		if err != nil {
			// Истёкшая или неизвестная сессия равносильна анонимному запросу
			if cfg.Logger != nil {
				cfg.Logger.Debug("Session lookup failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// RequireAuth прерывает запрос без аутентифицированной личности
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity извлекает личность запрашивающего из контекста, nil для анонима
func GetIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetSessionToken извлекает токен текущей сессии из контекста
func GetSessionToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(sessionTokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
