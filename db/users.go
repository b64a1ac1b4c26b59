package db

import (
	"database/sql"
	"fmt"

	"recordatorio-bot/models"
)

// UpsertUser registra o actualiza un usuario conocido
func (m *MySQLManager) UpsertUser(u *models.User) error {
	if u.LanguageCode == "" {
		u.LanguageCode = "es"
	}
	_, err := m.db.Exec(`
		INSERT INTO users (chat_id, push_name, language_code)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE push_name = VALUES(push_name), language_code = VALUES(language_code)
	`, u.ChatID, u.PushName, u.LanguageCode)
	if err != nil {
		return fmt.Errorf("error al guardar el usuario %s: %v", u.ChatID, err)
	}
	return nil
}

// GetUser busca un usuario por chat. Devuelve nil si no existe.
func (m *MySQLManager) GetUser(chatID string) (*models.User, error) {
	var u models.User
	err := m.db.QueryRow(`
		SELECT chat_id, push_name, language_code, created_at, updated_at
		FROM users WHERE chat_id = ?
	`, chatID).Scan(&u.ChatID, &u.PushName, &u.LanguageCode, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
