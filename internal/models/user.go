package models

import (
	"time"
)

type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsPro        bool      `json:"is_pro"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile публичный профиль без учётных данных
type UserProfile struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	IsPro    bool   `json:"is_pro"`
}

func NewUserProfile(u *User) UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		IsPro:    u.IsPro,
	}
}
