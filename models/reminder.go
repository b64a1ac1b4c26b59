package models

import (
	"time"
)

// ReminderStatus representa el estado de un recordatorio
type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "active"    // Pendiente de envío
	ReminderStatusSent      ReminderStatus = "sent"      // Enviado con éxito
	ReminderStatusCancelled ReminderStatus = "cancelled" // Cancelado por el usuario
	ReminderStatusCompleted ReminderStatus = "completed" // Recordatorio importante completado
)

// Reminder representa un recordatorio programado
type Reminder struct {
	ID             int64          `json:"id"`
	ChatID         string         `json:"chat_id"`
	Text           string         `json:"text"`
	DueAt          time.Time      `json:"due_at"` // Cuándo DEBE enviarse
	Category       string         `json:"category"`
	Status         ReminderStatus `json:"status"`
	IsImportant    bool           `json:"is_important"`
	RepeatInterval int            `json:"repeat_interval"`            // Minutos entre repeticiones (solo importantes)
	LastNotifiedAt *time.Time     `json:"last_notified_at,omitempty"` // Último envío de un importante (null si nunca)
	CreatedAt      time.Time      `json:"created_at"`
}

// IsRecurring indica si el recordatorio se repite hasta completarse
func (r *Reminder) IsRecurring() bool {
	return r.IsImportant && r.RepeatInterval > 0
}

// RepeatDuration devuelve el intervalo de repetición como duración
func (r *Reminder) RepeatDuration() time.Duration {
	return time.Duration(r.RepeatInterval) * time.Minute
}
