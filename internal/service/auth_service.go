package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService регистрация, вход и выход
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.Identity, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// NewAuthService создаёт новый экземпляр сервиса аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// Register создаёт нового пользователя бесплатного уровня
func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	return user, nil
}

// Login проверяет пароль и открывает сессию в Redis
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.Identity, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Та же ошибка, что и при неверном пароле: имя пользователя не раскрываем
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	identity := &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsPro:    user.IsPro,
		IsAdmin:  user.IsAdmin,
	}

	token, err := s.sessionRepo.Create(ctx, identity, s.sessionTTL)
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		return "", nil, &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	return token, identity, nil
}

// Logout закрывает сессию
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessionRepo.Delete(ctx, token)
}
