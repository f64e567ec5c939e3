package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/jackc/pgx/v5"
)

type LinkRepository interface {
	Insert(ctx context.Context, link *models.Link) error
	GetByLinkID(ctx context.Context, linkID string) (*models.Link, error)
	IncrementVisit(ctx context.Context, linkID string) (*models.Link, error)
	GetByOwner(ctx context.Context, userID string) ([]*models.Link, error)
	CountByOwner(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, linkID string) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Insert(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (link_id, original_url, user_id, num_hits, created_at)
		VALUES ($1, $2, $3, 0, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.LinkID,
		link.OriginalURL,
		link.UserID,
		link.CreatedAt,
	).Scan(&link.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return ErrLinkExists
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByLinkID(ctx context.Context, linkID string) (*models.Link, error) {
	query := `
		SELECT link_id, original_url, user_id, num_hits, last_accessed_on, created_at
		FROM links
		WHERE link_id = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, linkID).Scan(
		&link.LinkID,
		&link.OriginalURL,
		&link.UserID,
		&link.NumHits,
		&link.LastAccessedOn,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// IncrementVisit атомарно увеличивает счётчик посещений одним UPDATE.
// Конкурентные вызовы на одном link_id сериализуются построчной блокировкой,
// поэтому потерянных обновлений не бывает.
func (r *linkRepository) IncrementVisit(ctx context.Context, linkID string) (*models.Link, error) {
	query := `
		UPDATE links
		SET num_hits = num_hits + 1, last_accessed_on = NOW()
		WHERE link_id = $1
		RETURNING link_id, original_url, user_id, num_hits, last_accessed_on, created_at
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, linkID).Scan(
		&link.LinkID,
		&link.OriginalURL,
		&link.UserID,
		&link.NumHits,
		&link.LastAccessedOn,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to increment visit: %w", err)
	}

	return link, nil
}

func (r *linkRepository) GetByOwner(ctx context.Context, userID string) ([]*models.Link, error) {
	query := `
		SELECT link_id, original_url, user_id, num_hits, last_accessed_on, created_at
		FROM links
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		link := &models.Link{}
		if err := rows.Scan(
			&link.LinkID,
			&link.OriginalURL,
			&link.UserID,
			&link.NumHits,
			&link.LastAccessedOn,
			&link.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) CountByOwner(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM links WHERE user_id = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}

	return count, nil
}

func (r *linkRepository) Delete(ctx context.Context, linkID string) error {
	query := `DELETE FROM links WHERE link_id = $1`

	result, err := r.db.Pool.Exec(ctx, query, linkID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}
