package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/SergeiKhy/shortlinks/internal/repository"
	"go.uber.org/zap"
)

// Константы сервиса
const (
	// Лимит ссылок для pro/admin аккаунтов. Бесплатные аккаунты лимитом
	// не проверяются — поведение унаследовано и намеренно не "исправлено".
	linkQuota = 5

	ownerLinksCacheTTL = 5 * time.Minute
)

// LinkService интерфейс сервиса ссылок
type LinkService interface {
	Shorten(ctx context.Context, identity *models.Identity, originalURL string) (*models.Link, error)
	Resolve(ctx context.Context, linkID string) (*models.Link, error)
	ListForUser(ctx context.Context, identity *models.Identity, username string) ([]models.LinkView, error)
	Delete(ctx context.Context, identity *models.Identity, linkID string) error
}

// linkService реализация сервиса ссылок
type linkService struct {
	linkRepo  repository.LinkRepository
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
	visits    VisitProcessor
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	linkRepo repository.LinkRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	visits VisitProcessor,
	logger *zap.Logger,
) LinkService {
	return &linkService{
		linkRepo:  linkRepo,
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		visits:    visits,
		logger:    logger,
	}
}

// Shorten создаёт короткую ссылку для аутентифицированного пользователя
func (s *linkService) Shorten(ctx context.Context, identity *models.Identity, originalURL string) (*models.Link, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	// Сессия может ссылаться на уже удалённого пользователя
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storageError(err)
	}

	// Квота проверяется только для pro/admin аккаунтов
	if user.IsPro || user.IsAdmin {
		count, err := s.linkRepo.CountByOwner(ctx, user.ID)
		if err != nil {
			return nil, s.storageError(err)
		}
		if count > linkQuota {
			return nil, ErrQuotaExceeded
		}
	}

	link := &models.Link{
		LinkID:      GenerateLinkID(originalURL, user.ID),
		OriginalURL: originalURL,
		UserID:      user.ID,
		CreatedAt:   time.Now(),
	}

	if err := s.linkRepo.Insert(ctx, link); err != nil {
		if errors.Is(err, repository.ErrLinkExists) {
			// Идентификатор детерминированный: повторное сокращение того же URL
			// тем же пользователем возвращает существующую запись. Коллизия
			// с чужой записью отдаётся как StorageError.
			existing, getErr := s.linkRepo.GetByLinkID(ctx, link.LinkID)
			if getErr == nil && existing.UserID == user.ID && existing.OriginalURL == originalURL {
				return existing, nil
			}
			s.logger.Warn("Link id collision on insert",
				zap.String("link_id", link.LinkID),
				zap.String("user_id", user.ID),
			)
		}
		return nil, s.storageError(err)
	}

	// Список ссылок владельца изменился
	if err := s.cacheRepo.InvalidateOwner(ctx, user.ID); err != nil {
		s.logger.Debug("Failed to invalidate owner cache", zap.Error(err))
	}

	return link, nil
}

// Resolve находит ссылку и атомарно засчитывает посещение
func (s *linkService) Resolve(ctx context.Context, linkID string) (*models.Link, error) {
	link, err := s.linkRepo.IncrementVisit(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, s.storageError(err)
	}

	// Кэшированный список владельца обновляется в фоне
	if s.visits != nil {
		s.visits.Record(ctx, &VisitEvent{
			LinkID:  link.LinkID,
			OwnerID: link.UserID,
		})
	}

	return link, nil
}

// ListForUser возвращает ссылки пользователя в форме, допустимой для запрашивающего
func (s *linkService) ListForUser(ctx context.Context, identity *models.Identity, username string) ([]models.LinkView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storageError(err)
	}

	op := OpViewBasic
	if identity.IsOwner(user.ID) || (identity != nil && identity.IsAdmin) {
		op = OpViewFull
	}
	decision := Authorize(identity, user.ID, op)

	links, err := s.ownerLinks(ctx, user.ID)
	if err != nil {
		return nil, s.storageError(err)
	}

	views := make([]models.LinkView, 0, len(links))
	for _, link := range links {
		views = append(views, models.NewLinkView(link, decision.Shape))
	}

	return views, nil
}

// Delete удаляет ссылку, если запрашивающий — владелец или админ
func (s *linkService) Delete(ctx context.Context, identity *models.Identity, linkID string) error {
	link, err := s.linkRepo.GetByLinkID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return s.storageError(err)
	}

	if decision := Authorize(identity, link.UserID, OpDelete); !decision.Allowed {
		return ErrForbidden
	}

	if err := s.linkRepo.Delete(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return s.storageError(err)
	}

	if err := s.cacheRepo.InvalidateOwner(ctx, link.UserID); err != nil {
		s.logger.Debug("Failed to invalidate owner cache", zap.Error(err))
	}

	return nil
}

// ownerLinks читает список ссылок владельца из кэша с фолбэком в БД
func (s *linkService) ownerLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	if links, err := s.cacheRepo.GetOwnerLinks(ctx, userID); err == nil {
		return links, nil
	}

	links, err := s.linkRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetOwnerLinks(ctx, userID, links, ownerLinksCacheTTL); err != nil {
		s.logger.Debug("Failed to cache owner links", zap.Error(err))
	}

	return links, nil
}

func (s *linkService) storageError(err error) error {
	s.logger.Error("Storage failure", zap.Error(err))
	return &StorageError{
		Message: repository.ParseDBError(err),
		Err:     err,
	}
}
