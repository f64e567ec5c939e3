package service

import (
	"crypto/md5"
	"encoding/base64"
)

// Длина короткого идентификатора
const linkIDLength = 9

// GenerateLinkID детерминированно выводит короткий идентификатор из
// исходного URL и ID владельца: md5(url+ownerID) -> base64url -> первые 9 символов.
// Это компактный отпечаток, а не секретный токен: одна и та же пара входов
// всегда даёт один и тот же результат, разные владельцы одного URL — разные.
func GenerateLinkID(originalURL, ownerID string) string {
	sum := md5.Sum([]byte(originalURL + ownerID))
	encoded := base64.RawURLEncoding.EncodeToString(sum[:])
	return encoded[:linkIDLength]
}
