package models

import (
	"time"
)

// User representa un usuario registrado del bot
type User struct {
	ChatID       string    `json:"chat_id"`
	PushName     string    `json:"push_name"`
	LanguageCode string    `json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
