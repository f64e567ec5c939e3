package service

import (
	"errors"
)

// Ошибки сервиса
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrUserNotFound       = errors.New("user not found")
	ErrLinkNotFound       = errors.New("link not found")
	ErrQuotaExceeded      = errors.New("link quota exceeded")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// StorageError сбой слоя хранения с уже очищенным сообщением.
// Сырые ошибки драйвера наружу не выходят.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
