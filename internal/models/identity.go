package models

// Identity явная личность запрашивающего, восстановленная из сессии.
// nil-указатель означает анонимного посетителя.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsPro    bool   `json:"is_pro"`
	IsAdmin  bool   `json:"is_admin"`
}

// IsOwner проверяет, владеет ли запрашивающий ресурсом
func (id *Identity) IsOwner(ownerID string) bool {
	return id != nil && id.UserID == ownerID
}
