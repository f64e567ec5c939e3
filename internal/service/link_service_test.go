package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/service"
	"github.com/SergeiKhy/shortlinks/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestService создаёт тестовое окружение с моковыми репозиториями
func setupTestService() (service.LinkService, *mocks.MockLinkRepository, *mocks.MockUserRepository, *mocks.MockCacheRepository) {
	linkRepo := mocks.NewMockLinkRepository()
	userRepo := mocks.NewMockUserRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger, _ := zap.NewDevelopment()
	linkService := service.NewLinkService(linkRepo, userRepo, cacheRepo, nil, logger)
	return linkService, linkRepo, userRepo, cacheRepo
}

// addUser добавляет пользователя в моковый репозиторий
func addUser(t *testing.T, userRepo *mocks.MockUserRepository, id, username string, isPro, isAdmin bool) *models.Identity {
	t.Helper()
	err := userRepo.Create(context.Background(), &models.User{
		ID:        id,
		Username:  username,
		IsPro:     isPro,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return &models.Identity{UserID: id, Username: username, IsPro: isPro, IsAdmin: isAdmin}
}

// addLinks создаёт n ссылок для пользователя напрямую через репозиторий
func addLinks(t *testing.T, linkRepo *mocks.MockLinkRepository, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		url := fmt.Sprintf("https://example.com/page-%d", i)
		err := linkRepo.Insert(context.Background(), &models.Link{
			LinkID:      service.GenerateLinkID(url, userID),
			OriginalURL: url,
			UserID:      userID,
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}
}

// TestLinkService_Shorten_Success проверяет успешное создание ссылки
func TestLinkService_Shorten_Success(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	link, err := linkService.Shorten(ctx, identity, "https://example.com/test")

	require.NoError(t, err)
	assert.Len(t, link.LinkID, 9)
	assert.Equal(t, "https://example.com/test", link.OriginalURL)
	assert.Equal(t, "user-1", link.UserID)
	assert.Equal(t, int64(0), link.NumHits)
	assert.Nil(t, link.LastAccessedOn)

	stored, err := linkRepo.GetByLinkID(ctx, link.LinkID)
	require.NoError(t, err)
	assert.Equal(t, link.LinkID, stored.LinkID)
}

// TestLinkService_Shorten_Anonymous проверяет отказ анониму
func TestLinkService_Shorten_Anonymous(t *testing.T) {
	linkService, _, _, _ := setupTestService()

	link, err := linkService.Shorten(context.Background(), nil, "https://example.com")

	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Nil(t, link)
}

// TestLinkService_Shorten_DeletedUser проверяет сессию, указывающую на удалённого пользователя
func TestLinkService_Shorten_DeletedUser(t *testing.T) {
	linkService, _, _, _ := setupTestService()

	ghost := &models.Identity{UserID: "gone", Username: "ghost"}
	link, err := linkService.Shorten(context.Background(), ghost, "https://example.com")

	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Nil(t, link)
}

// TestLinkService_Shorten_QuotaPro проверяет квоту для pro-аккаунта
func TestLinkService_Shorten_QuotaPro(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", true, false)
	addLinks(t, linkRepo, "user-1", 6)

	ctx := context.Background()
	link, err := linkService.Shorten(ctx, identity, "https://example.com/new")

	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
	assert.Nil(t, link)

	// Отказ по квоте ничего не записывает
	count, err := linkRepo.CountByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

// TestLinkService_Shorten_QuotaAdmin проверяет квоту для admin-аккаунта
func TestLinkService_Shorten_QuotaAdmin(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "admin-1", "root", false, true)
	addLinks(t, linkRepo, "admin-1", 6)

	_, err := linkService.Shorten(context.Background(), identity, "https://example.com/new")

	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
}

// TestLinkService_Shorten_FreeNotQuotaChecked проверяет, что бесплатный аккаунт
// квотой не ограничен — унаследованная асимметрия сохраняется
func TestLinkService_Shorten_FreeNotQuotaChecked(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)
	addLinks(t, linkRepo, "user-1", 20)

	link, err := linkService.Shorten(context.Background(), identity, "https://example.com/new")

	require.NoError(t, err)
	assert.NotNil(t, link)
}

// TestLinkService_Shorten_Idempotent проверяет повторное сокращение того же URL
func TestLinkService_Shorten_Idempotent(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	first, err := linkService.Shorten(ctx, identity, "https://a.com")
	require.NoError(t, err)

	second, err := linkService.Shorten(ctx, identity, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, first.LinkID, second.LinkID)

	// Запись осталась одна
	count, err := linkRepo.CountByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestLinkService_Shorten_SameURLDifferentOwners проверяет, что владелец участвует в идентификаторе
func TestLinkService_Shorten_SameURLDifferentOwners(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)
	bob := addUser(t, userRepo, "user-2", "bob", false, false)

	ctx := context.Background()
	first, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)
	second, err := linkService.Shorten(ctx, bob, "https://example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.LinkID, second.LinkID)
}

// TestLinkService_Resolve_CountsVisit проверяет учёт посещения при разыменовании
func TestLinkService_Resolve_CountsVisit(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, identity, "https://example.org")
	require.NoError(t, err)

	resolved, err := linkService.Resolve(ctx, created.LinkID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", resolved.OriginalURL)
	assert.Equal(t, int64(1), resolved.NumHits)
	require.NotNil(t, resolved.LastAccessedOn)
	assert.WithinDuration(t, time.Now(), *resolved.LastAccessedOn, time.Second)
}

// TestLinkService_Resolve_NotFound проверяет разыменование неизвестного идентификатора
func TestLinkService_Resolve_NotFound(t *testing.T) {
	linkService, _, _, _ := setupTestService()

	link, err := linkService.Resolve(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, service.ErrLinkNotFound)
	assert.Nil(t, link)
}

// TestLinkService_Resolve_Concurrent проверяет отсутствие потерянных обновлений:
// N конкурентных разыменований дают ровно N посещений
func TestLinkService_Resolve_Concurrent(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, identity, "https://example.com/hot")
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := linkService.Resolve(ctx, created.LinkID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	link, err := linkRepo.GetByLinkID(ctx, created.LinkID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), link.NumHits)
}

// TestLinkService_ListForUser_OwnerSeesFull проверяет полную форму для владельца
func TestLinkService_ListForUser_OwnerSeesFull(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, identity, "https://example.com")
	require.NoError(t, err)
	_, err = linkService.Resolve(ctx, created.LinkID)
	require.NoError(t, err)

	views, err := linkService.ListForUser(ctx, identity, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].NumHits)
	assert.Equal(t, int64(1), *views[0].NumHits)
	assert.NotNil(t, views[0].LastAccessedOn)
}

// TestLinkService_ListForUser_StrangerSeesBasic проверяет ограниченную форму для чужого
func TestLinkService_ListForUser_StrangerSeesBasic(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)
	bob := addUser(t, userRepo, "user-2", "bob", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)
	_, err = linkService.Resolve(ctx, created.LinkID)
	require.NoError(t, err)

	views, err := linkService.ListForUser(ctx, bob, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, created.LinkID, views[0].LinkID)
	assert.Equal(t, "https://example.com", views[0].OriginalURL)
	assert.Nil(t, views[0].NumHits, "счётчик посещений скрыт от чужих")
	assert.Nil(t, views[0].LastAccessedOn, "время доступа скрыто от чужих")
}

// TestLinkService_ListForUser_AnonymousSeesBasic проверяет ограниченную форму для анонима
func TestLinkService_ListForUser_AnonymousSeesBasic(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	_, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)

	views, err := linkService.ListForUser(ctx, nil, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].NumHits)
}

// TestLinkService_ListForUser_AdminSeesFull проверяет полную форму для админа
func TestLinkService_ListForUser_AdminSeesFull(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)
	admin := addUser(t, userRepo, "admin-1", "root", false, true)

	ctx := context.Background()
	_, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)

	views, err := linkService.ListForUser(ctx, admin, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.NotNil(t, views[0].NumHits)
}

// TestLinkService_ListForUser_UnknownUser проверяет запрос ссылок несуществующего пользователя
func TestLinkService_ListForUser_UnknownUser(t *testing.T) {
	linkService, _, _, _ := setupTestService()

	views, err := linkService.ListForUser(context.Background(), nil, "nobody")

	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Nil(t, views)
}

// TestLinkService_Delete_Owner проверяет удаление владельцем
func TestLinkService_Delete_Owner(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, identity, "https://example.com")
	require.NoError(t, err)

	require.NoError(t, linkService.Delete(ctx, identity, created.LinkID))

	_, err = linkRepo.GetByLinkID(ctx, created.LinkID)
	assert.Error(t, err)
}

// TestLinkService_Delete_Admin проверяет удаление админом чужой ссылки
func TestLinkService_Delete_Admin(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)
	admin := addUser(t, userRepo, "admin-1", "root", false, true)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)

	assert.NoError(t, linkService.Delete(ctx, admin, created.LinkID))
}

// TestLinkService_Delete_Forbidden проверяет запрет удаления чужой ссылки
func TestLinkService_Delete_Forbidden(t *testing.T) {
	linkService, linkRepo, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)
	bob := addUser(t, userRepo, "user-2", "bob", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)

	err = linkService.Delete(ctx, bob, created.LinkID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Ссылка осталась на месте
	_, err = linkRepo.GetByLinkID(ctx, created.LinkID)
	assert.NoError(t, err)
}

// TestLinkService_Delete_Anonymous проверяет запрет удаления анонимом
func TestLinkService_Delete_Anonymous(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	alice := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	created, err := linkService.Shorten(ctx, alice, "https://example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, linkService.Delete(ctx, nil, created.LinkID), service.ErrForbidden)
}

// TestLinkService_Delete_NotFound проверяет удаление несуществующей ссылки
func TestLinkService_Delete_NotFound(t *testing.T) {
	linkService, _, userRepo, _ := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	err := linkService.Delete(context.Background(), identity, "nonexistent")
	assert.ErrorIs(t, err, service.ErrLinkNotFound)
}

// TestLinkService_ListForUser_CacheInvalidatedOnCreate проверяет сброс кэша при создании
func TestLinkService_ListForUser_CacheInvalidatedOnCreate(t *testing.T) {
	linkService, _, userRepo, cacheRepo := setupTestService()
	identity := addUser(t, userRepo, "user-1", "alice", false, false)

	ctx := context.Background()
	_, err := linkService.Shorten(ctx, identity, "https://example.com/1")
	require.NoError(t, err)

	// Прогреваем кэш
	views, err := linkService.ListForUser(ctx, identity, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	_, err = cacheRepo.GetOwnerLinks(ctx, "user-1")
	require.NoError(t, err)

	// Новая ссылка сбрасывает кэш, список отдаёт обе записи
	_, err = linkService.Shorten(ctx, identity, "https://example.com/2")
	require.NoError(t, err)

	views, err = linkService.ListForUser(ctx, identity, "alice")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
