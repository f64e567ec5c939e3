package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"github.com/google/uuid"
)

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu    sync.RWMutex
	links map[string]*models.Link
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links: make(map[string]*models.Link),
	}
}

func (m *MockLinkRepository) Insert(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[link.LinkID]; exists {
		return repository.ErrLinkExists
	}

	stored := *link
	m.links[link.LinkID] = &stored
	return nil
}

func (m *MockLinkRepository) GetByLinkID(ctx context.Context, linkID string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[linkID]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

// IncrementVisit повторяет атомарность UPDATE: инкремент и чтение под одной блокировкой
func (m *MockLinkRepository) IncrementVisit(ctx context.Context, linkID string) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[linkID]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}

	now := time.Now()
	link.NumHits++
	link.LastAccessedOn = &now

	copied := *link
	return &copied, nil
}

func (m *MockLinkRepository) GetByOwner(ctx context.Context, userID string) ([]*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var links []*models.Link
	for _, link := range m.links {
		if link.UserID == userID {
			copied := *link
			links = append(links, &copied)
		}
	}
	return links, nil
}

func (m *MockLinkRepository) CountByOwner(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, link := range m.links {
		if link.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, linkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[linkID]; !exists {
		return repository.ErrLinkNotFound
	}
	delete(m.links, linkID)
	return nil
}

func (m *MockLinkRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = make(map[string]*models.Link)
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // user_id -> user
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
	}

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, userID, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == newUsername && u.ID != userID {
			return repository.ErrUsernameTaken
		}
	}

	user, exists := m.users[userID]
	if !exists {
		return repository.ErrUserNotFound
	}
	user.Username = newUsername
	return nil
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []*models.User
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (m *MockUserRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]*models.User)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string][]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string][]*models.Link),
	}
}

func (m *MockCacheRepository) GetOwnerLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links, exists := m.cache[userID]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	return links, nil
}

func (m *MockCacheRepository) SetOwnerLinks(ctx context.Context, userID string, links []*models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[userID] = links
	return nil
}

func (m *MockCacheRepository) InvalidateOwner(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, userID)
	return nil
}

func (m *MockCacheRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string][]*models.Link)
}

// MockSessionRepository implements repository.SessionRepository for testing
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Identity
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*models.Identity),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, identity *models.Identity, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	copied := *identity
	m.sessions[token] = &copied
	return token, nil
}

func (m *MockSessionRepository) Get(ctx context.Context, token string) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	identity, exists := m.sessions[token]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	copied := *identity
	return &copied, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*models.Identity)
}
