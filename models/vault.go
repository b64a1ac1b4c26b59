package models

import (
	"time"
)

// VaultEntry representa una nota de la bitácora
type VaultEntry struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredVaultEntry es una entrada de bitácora con puntaje de búsqueda conversacional
type ScoredVaultEntry struct {
	VaultEntry
	Score int `json:"score"`
}
