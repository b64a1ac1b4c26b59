package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"recordatorio-bot/models"
	"recordatorio-bot/utils"
)

const reminderColumns = `id, chat_id, text, due_at, category, status, is_important, repeat_interval, last_notified_at, created_at`

func scanReminder(row interface{ Scan(...interface{}) error }) (models.Reminder, error) {
	var r models.Reminder
	var lastNotified sql.NullTime
	err := row.Scan(&r.ID, &r.ChatID, &r.Text, &r.DueAt, &r.Category, &r.Status,
		&r.IsImportant, &r.RepeatInterval, &lastNotified, &r.CreatedAt)
	if err != nil {
		return models.Reminder{}, err
	}
	r.LastNotifiedAt = scanNullTime(lastNotified)
	return r, nil
}

func (m *MySQLManager) queryReminders(query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// AddReminder guarda un recordatorio nuevo y completa su ID
func (m *MySQLManager) AddReminder(r *models.Reminder) error {
	if r.Status == "" {
		r.Status = models.ReminderStatusActive
	}
	if r.Category == "" {
		r.Category = "general"
	}
	result, err := m.db.Exec(`
		INSERT INTO reminders (chat_id, text, due_at, category, status, is_important, repeat_interval, last_notified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ChatID, r.Text, r.DueAt, r.Category, r.Status, r.IsImportant, r.RepeatInterval, r.LastNotifiedAt)
	if err != nil {
		return fmt.Errorf("error al guardar el recordatorio: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error al leer el ID del recordatorio: %v", err)
	}
	r.ID = id
	return nil
}

// GetActiveImportantReminders devuelve los importantes activos de todos los chats
func (m *MySQLManager) GetActiveImportantReminders() ([]models.Reminder, error) {
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE status = ? AND is_important = TRUE
		ORDER BY due_at ASC
	`, models.ReminderStatusActive)
}

// GetReminder busca un recordatorio por dueño e ID
func (m *MySQLManager) GetReminder(chatID string, id int64) (*models.Reminder, error) {
	row := m.db.QueryRow(`SELECT `+reminderColumns+` FROM reminders WHERE chat_id = ? AND id = ?`, chatID, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetActiveReminders devuelve los recordatorios pendientes de un chat
func (m *MySQLManager) GetActiveReminders(chatID string) ([]models.Reminder, error) {
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ? AND status = ?
		ORDER BY due_at ASC
	`, chatID, models.ReminderStatusActive)
}

// GetAllActiveReminders devuelve los pendientes de todos los chats
// (rehidratación del scheduler al arrancar)
func (m *MySQLManager) GetAllActiveReminders() ([]models.Reminder, error) {
	return m.queryReminders(`
		SELECT ` + reminderColumns + ` FROM reminders
		WHERE status = 'active'
		ORDER BY due_at ASC
	`)
}

// GetTodayReminders devuelve los pendientes de hoy
func (m *MySQLManager) GetTodayReminders(chatID string, now time.Time) ([]models.Reminder, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ? AND status = ? AND due_at >= ? AND due_at < ?
		ORDER BY due_at ASC
	`, chatID, models.ReminderStatusActive, start, end)
}

// GetDateReminders devuelve todos los recordatorios de un día puntual,
// en cualquier estado (sirve para consultar fechas pasadas)
func (m *MySQLManager) GetDateReminders(chatID string, date time.Time) ([]models.Reminder, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ? AND due_at >= ? AND due_at < ? AND status != ?
		ORDER BY due_at ASC
	`, chatID, start, end, models.ReminderStatusCancelled)
}

// SearchReminders busca por palabra clave o categoría, sin distinguir
// acentos ni mayúsculas. El filtrado fino se hace acá porque la collation
// de la base no normaliza acentos.
func (m *MySQLManager) SearchReminders(chatID, keyword string) ([]models.Reminder, error) {
	all, err := m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ? AND status != ?
		ORDER BY due_at ASC
	`, chatID, models.ReminderStatusCancelled)
	if err != nil {
		return nil, err
	}

	needle := utils.NormalizeForSearch(keyword)
	if needle == "" {
		return nil, nil
	}
	var matches []models.Reminder
	for _, r := range all {
		if strings.Contains(utils.NormalizeForSearch(r.Text), needle) ||
			utils.NormalizeForSearch(r.Category) == needle {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// GetHistoricalReminders devuelve los últimos recordatorios ya resueltos
func (m *MySQLManager) GetHistoricalReminders(chatID string, limit int) ([]models.Reminder, error) {
	if limit <= 0 {
		limit = 10
	}
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ? AND status IN (?, ?, ?)
		ORDER BY due_at DESC
		LIMIT ?
	`, chatID, models.ReminderStatusSent, models.ReminderStatusCompleted, models.ReminderStatusCancelled, limit)
}

// CancelReminder cancela un recordatorio pendiente del chat indicado.
// Devuelve false si no existía o ya no estaba activo.
func (m *MySQLManager) CancelReminder(chatID string, id int64) (bool, error) {
	result, err := m.db.Exec(`
		UPDATE reminders SET status = ?
		WHERE chat_id = ? AND id = ? AND status = ?
	`, models.ReminderStatusCancelled, chatID, id, models.ReminderStatusActive)
	if err != nil {
		return false, fmt.Errorf("error al cancelar el recordatorio %d: %v", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CancelAllReminders cancela todos los pendientes del chat
func (m *MySQLManager) CancelAllReminders(chatID string) (int64, error) {
	result, err := m.db.Exec(`
		UPDATE reminders SET status = ?
		WHERE chat_id = ? AND status = ?
	`, models.ReminderStatusCancelled, chatID, models.ReminderStatusActive)
	if err != nil {
		return 0, fmt.Errorf("error al cancelar los recordatorios: %v", err)
	}
	return result.RowsAffected()
}

// MarkReminderSent marca un recordatorio como enviado. La llama el
// scheduler, que maneja IDs globales, por eso no filtra por chat.
func (m *MySQLManager) MarkReminderSent(id int64) error {
	_, err := m.db.Exec(`
		UPDATE reminders SET status = ?
		WHERE id = ? AND status = ?
	`, models.ReminderStatusSent, id, models.ReminderStatusActive)
	if err != nil {
		return fmt.Errorf("error al marcar el recordatorio %d como enviado: %v", id, err)
	}
	return nil
}

// MarkReminderCompleted completa un recordatorio importante.
// Devuelve false si no existía, no era del chat o no estaba activo.
func (m *MySQLManager) MarkReminderCompleted(chatID string, id int64) (bool, error) {
	result, err := m.db.Exec(`
		UPDATE reminders SET status = ?
		WHERE chat_id = ? AND id = ? AND status = ? AND is_important = TRUE
	`, models.ReminderStatusCompleted, chatID, id, models.ReminderStatusActive)
	if err != nil {
		return false, fmt.Errorf("error al completar el recordatorio %d: %v", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateReminderLastNotified actualiza el último aviso de un importante
func (m *MySQLManager) UpdateReminderLastNotified(id int64, t time.Time) error {
	_, err := m.db.Exec(`UPDATE reminders SET last_notified_at = ? WHERE id = ?`, t, id)
	if err != nil {
		return fmt.Errorf("error al actualizar last_notified_at de %d: %v", id, err)
	}
	return nil
}

// GetAllReminders devuelve todo el historial de un chat (exportación)
func (m *MySQLManager) GetAllReminders(chatID string) ([]models.Reminder, error) {
	return m.queryReminders(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE chat_id = ?
		ORDER BY due_at ASC
	`, chatID)
}
