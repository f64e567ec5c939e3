package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/SergeiKhy/shortlinks/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupUserService создаёт тестовое окружение для сервиса пользователей
func setupUserService(t *testing.T) (service.UserService, *mocks.MockUserRepository) {
	t.Helper()
	userRepo := mocks.NewMockUserRepository()
	logger, _ := zap.NewDevelopment()
	return service.NewUserService(userRepo, logger), userRepo
}

func seedUser(t *testing.T, userRepo *mocks.MockUserRepository, id, username string, isAdmin bool) {
	t.Helper()
	require.NoError(t, userRepo.Create(context.Background(), &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: "$2a$10$hash",
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}))
}

// TestUserService_GetProfile проверяет выдачу публичного профиля
func TestUserService_GetProfile(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)

	profile, err := userService.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "alice", profile.Username)
}

// TestUserService_GetProfile_NotFound проверяет неизвестное имя
func TestUserService_GetProfile_NotFound(t *testing.T) {
	userService, _ := setupUserService(t)

	_, err := userService.GetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// TestUserService_ListProfiles проверяет список публичных профилей
func TestUserService_ListProfiles(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)
	seedUser(t, userRepo, "user-2", "bob", false)

	profiles, err := userService.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

// TestUserService_UpdateUsername_Self проверяет смену собственного имени
func TestUserService_UpdateUsername_Self(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)

	identity := &models.Identity{UserID: "user-1", Username: "alice"}
	err := userService.UpdateUsername(context.Background(), identity, "user-1", "alice2")
	require.NoError(t, err)

	updated, err := userRepo.GetByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
}

// TestUserService_UpdateUsername_Admin проверяет смену чужого имени админом
func TestUserService_UpdateUsername_Admin(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)
	seedUser(t, userRepo, "admin-1", "root", true)

	admin := &models.Identity{UserID: "admin-1", IsAdmin: true}
	assert.NoError(t, userService.UpdateUsername(context.Background(), admin, "user-1", "renamed"))
}

// TestUserService_UpdateUsername_Forbidden проверяет запрет смены чужого имени
func TestUserService_UpdateUsername_Forbidden(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)
	seedUser(t, userRepo, "user-2", "bob", false)

	bob := &models.Identity{UserID: "user-2", Username: "bob"}
	err := userService.UpdateUsername(context.Background(), bob, "user-1", "hacked")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

// TestUserService_UpdateUsername_Anonymous проверяет отказ анониму
func TestUserService_UpdateUsername_Anonymous(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)

	err := userService.UpdateUsername(context.Background(), nil, "user-1", "hacked")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

// TestUserService_UpdateUsername_Taken проверяет конфликт с занятым именем
func TestUserService_UpdateUsername_Taken(t *testing.T) {
	userService, userRepo := setupUserService(t)
	seedUser(t, userRepo, "user-1", "alice", false)
	seedUser(t, userRepo, "user-2", "bob", false)

	identity := &models.Identity{UserID: "user-1", Username: "alice"}
	err := userService.UpdateUsername(context.Background(), identity, "user-1", "bob")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}
