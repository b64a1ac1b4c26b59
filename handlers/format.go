package handlers

import (
	"fmt"
	"strings"
	"time"

	"recordatorio-bot/models"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

// formatDateTime devuelve "lunes 29/09/2025 a las 09:00"
func formatDateTime(t time.Time) string {
	return fmt.Sprintf("%s %s a las %s", weekdayNames[t.Weekday()], t.Format("02/01/2006"), t.Format("15:04"))
}

// formatDate devuelve "lunes 29/09/2025"
func formatDate(t time.Time) string {
	return fmt.Sprintf("%s %s", weekdayNames[t.Weekday()], t.Format("02/01/2006"))
}

// formatReminderLine arma el renglón de un recordatorio en los listados
func formatReminderLine(r models.Reminder) string {
	var b strings.Builder
	if r.IsImportant {
		b.WriteString("🔥 ")
	} else {
		b.WriteString("⏰ ")
	}
	fmt.Fprintf(&b, "*#%d* %s — %s", r.ID, r.Text, formatDateTime(r.DueAt))
	if r.Category != "" && r.Category != "general" {
		fmt.Fprintf(&b, " [#%s]", r.Category)
	}
	if r.IsRecurring() {
		fmt.Fprintf(&b, " (cada %dm)", r.RepeatInterval)
	}
	return b.String()
}

// statusLabel traduce el estado para los listados históricos
func statusLabel(s models.ReminderStatus) string {
	switch s {
	case models.ReminderStatusSent:
		return "enviado"
	case models.ReminderStatusCompleted:
		return "completado"
	case models.ReminderStatusCancelled:
		return "cancelado"
	default:
		return "pendiente"
	}
}
