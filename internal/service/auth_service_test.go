package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/SergeiKhy/shortlinks/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAuthService создаёт тестовое окружение для сервиса аутентификации
func setupAuthService() (service.AuthService, *mocks.MockUserRepository, *mocks.MockSessionRepository) {
	userRepo := mocks.NewMockUserRepository()
	sessionRepo := mocks.NewMockSessionRepository()
	logger, _ := zap.NewDevelopment()
	authService := service.NewAuthService(userRepo, sessionRepo, 8*time.Hour, logger)
	return authService, userRepo, sessionRepo
}

// TestAuthService_Register_Success проверяет успешную регистрацию
func TestAuthService_Register_Success(t *testing.T) {
	authService, userRepo, _ := setupAuthService()

	ctx := context.Background()
	user, err := authService.Register(ctx, "alice", "correct horse battery")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsPro)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash, "пароль не хранится открытым текстом")

	stored, err := userRepo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

// TestAuthService_Register_UsernameTaken проверяет конфликт имён
func TestAuthService_Register_UsernameTaken(t *testing.T) {
	authService, _, _ := setupAuthService()

	ctx := context.Background()
	_, err := authService.Register(ctx, "alice", "password-one")
	require.NoError(t, err)

	_, err = authService.Register(ctx, "alice", "password-two")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

// TestAuthService_Login_Success проверяет вход и открытие сессии
func TestAuthService_Login_Success(t *testing.T) {
	authService, _, sessionRepo := setupAuthService()

	ctx := context.Background()
	user, err := authService.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)

	token, identity, err := authService.Login(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)

	// Сессия открыта и восстанавливает ту же личность
	restored, err := sessionRepo.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, restored.UserID)
}

// TestAuthService_Login_WrongPassword проверяет неверный пароль
func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _, _ := setupAuthService()

	ctx := context.Background()
	_, err := authService.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)

	token, identity, err := authService.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, identity)
}

// TestAuthService_Login_UnknownUser проверяет, что неизвестное имя неотличимо от неверного пароля
func TestAuthService_Login_UnknownUser(t *testing.T) {
	authService, _, _ := setupAuthService()

	_, _, err := authService.Login(context.Background(), "nobody", "whatever-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// TestAuthService_Logout проверяет закрытие сессии
func TestAuthService_Logout(t *testing.T) {
	authService, _, sessionRepo := setupAuthService()

	ctx := context.Background()
	_, err := authService.Register(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	token, _, err := authService.Login(ctx, "alice", "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, token))

	_, err = sessionRepo.Get(ctx, token)
	assert.Error(t, err)
}
