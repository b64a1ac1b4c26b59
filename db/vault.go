package db

import (
	"fmt"
	"sort"
	"strings"

	"recordatorio-bot/models"
	"recordatorio-bot/utils"
)

const vaultColumns = `id, chat_id, text, category, created_at`

func (m *MySQLManager) queryVaultEntries(query string, args ...interface{}) ([]models.VaultEntry, error) {
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.VaultEntry
	for rows.Next() {
		var e models.VaultEntry
		if err := rows.Scan(&e.ID, &e.ChatID, &e.Text, &e.Category, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddVaultEntry guarda una nota nueva en la bitácora y completa su ID
func (m *MySQLManager) AddVaultEntry(e *models.VaultEntry) error {
	if e.Category == "" {
		e.Category = "general"
	}
	result, err := m.db.Exec(`
		INSERT INTO vault_entries (chat_id, text, category)
		VALUES (?, ?, ?)
	`, e.ChatID, e.Text, e.Category)
	if err != nil {
		return fmt.Errorf("error al guardar la nota: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error al leer el ID de la nota: %v", err)
	}
	e.ID = id
	return nil
}

// GetVaultEntries devuelve las últimas notas del chat
func (m *MySQLManager) GetVaultEntries(chatID string, limit int) ([]models.VaultEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return m.queryVaultEntries(`
		SELECT `+vaultColumns+` FROM vault_entries
		WHERE chat_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, chatID, limit)
}

// GetVaultEntriesByCategory filtra la bitácora por categoría
func (m *MySQLManager) GetVaultEntriesByCategory(chatID, category string) ([]models.VaultEntry, error) {
	return m.queryVaultEntries(`
		SELECT `+vaultColumns+` FROM vault_entries
		WHERE chat_id = ? AND category = ?
		ORDER BY created_at DESC
	`, chatID, category)
}

// SearchVault busca notas por palabra clave, sin distinguir acentos
func (m *MySQLManager) SearchVault(chatID, keyword string) ([]models.VaultEntry, error) {
	all, err := m.queryVaultEntries(`
		SELECT `+vaultColumns+` FROM vault_entries
		WHERE chat_id = ?
		ORDER BY created_at DESC
	`, chatID)
	if err != nil {
		return nil, err
	}

	needle := utils.NormalizeForSearch(keyword)
	if needle == "" {
		return nil, nil
	}
	var matches []models.VaultEntry
	for _, e := range all {
		if strings.Contains(utils.NormalizeForSearch(e.Text), needle) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// SearchVaultConversational puntúa las notas contra los términos de una
// pregunta ("¿qué le gusta a Cindy?") y devuelve las mejores primero
func (m *MySQLManager) SearchVaultConversational(chatID string, terms []string) ([]models.ScoredVaultEntry, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	all, err := m.queryVaultEntries(`
		SELECT `+vaultColumns+` FROM vault_entries
		WHERE chat_id = ?
		ORDER BY created_at DESC
	`, chatID)
	if err != nil {
		return nil, err
	}

	var scored []models.ScoredVaultEntry
	for _, e := range all {
		normalized := utils.NormalizeForSearch(e.Text)
		score := 0
		for _, term := range terms {
			if strings.Contains(normalized, term) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, models.ScoredVaultEntry{VaultEntry: e, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// DeleteVaultEntry borra una nota del chat. Devuelve false si no existía.
func (m *MySQLManager) DeleteVaultEntry(chatID string, id int64) (bool, error) {
	result, err := m.db.Exec(`
		DELETE FROM vault_entries WHERE chat_id = ? AND id = ?
	`, chatID, id)
	if err != nil {
		return false, fmt.Errorf("error al borrar la nota %d: %v", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetAllVaultEntries devuelve toda la bitácora del chat (exportación)
func (m *MySQLManager) GetAllVaultEntries(chatID string) ([]models.VaultEntry, error) {
	return m.queryVaultEntries(`
		SELECT `+vaultColumns+` FROM vault_entries
		WHERE chat_id = ?
		ORDER BY created_at ASC
	`, chatID)
}
