package service

import (
	"context"
	"errors"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"go.uber.org/zap"
)

// UserService операции над профилями пользователей
type UserService interface {
	GetProfile(ctx context.Context, username string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	UpdateUsername(ctx context.Context, identity *models.Identity, targetUserID, newUsername string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService создаёт новый экземпляр сервиса пользователей
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	profile := models.NewUserProfile(user)
	return &profile, nil
}

func (s *userService) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, models.NewUserProfile(user))
	}

	return profiles, nil
}

// UpdateUsername меняет имя пользователя. Разрешено самому пользователю и админу.
func (s *userService) UpdateUsername(ctx context.Context, identity *models.Identity, targetUserID, newUsername string) error {
	if identity == nil {
		return ErrUnauthorized
	}
	if identity.UserID != targetUserID && !identity.IsAdmin {
		return ErrForbidden
	}

	if err := s.userRepo.UpdateUsername(ctx, targetUserID, newUsername); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrUsernameTaken):
			return ErrUsernameTaken
		}
		s.logger.Error("Failed to update username", zap.Error(err))
		return &StorageError{Message: repository.ParseDBError(err), Err: err}
	}

	return nil
}
