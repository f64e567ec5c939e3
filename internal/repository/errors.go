package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки слоя хранения
var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrLinkExists    = errors.New("link id already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Коды ошибок PostgreSQL (SQLSTATE)
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// ParseDBError переводит ошибку драйвера в безопасное для клиента сообщение.
// Внутренности БД (SQL, имена таблиц, DSN) наружу не отдаются.
func ParseDBError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrLinkExists) || errors.Is(err, ErrUsernameTaken) {
		return "a record with the same key already exists"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return "a record with the same key already exists"
		case pgForeignKeyViolation:
			return "referenced record does not exist"
		case pgNotNullViolation:
			return "a required field is missing"
		}
		return "database rejected the operation"
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "database operation timed out"
	}

	return "storage is temporarily unavailable"
}

// IsUniqueViolation проверяет нарушение уникального ограничения
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
