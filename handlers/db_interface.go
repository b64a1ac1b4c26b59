package handlers

import (
	"time"

	"recordatorio-bot/models"
)

// DBManager define los métodos de acceso al database que usan los handlers
type DBManager interface {
	AddReminder(r *models.Reminder) error
	GetReminder(chatID string, id int64) (*models.Reminder, error)
	GetActiveReminders(chatID string) ([]models.Reminder, error)
	GetAllActiveReminders() ([]models.Reminder, error)
	GetActiveImportantReminders() ([]models.Reminder, error)
	GetTodayReminders(chatID string, now time.Time) ([]models.Reminder, error)
	GetDateReminders(chatID string, date time.Time) ([]models.Reminder, error)
	SearchReminders(chatID, keyword string) ([]models.Reminder, error)
	GetHistoricalReminders(chatID string, limit int) ([]models.Reminder, error)
	GetAllReminders(chatID string) ([]models.Reminder, error)
	CancelReminder(chatID string, id int64) (bool, error)
	CancelAllReminders(chatID string) (int64, error)
	MarkReminderSent(id int64) error
	MarkReminderCompleted(chatID string, id int64) (bool, error)
	UpdateReminderLastNotified(id int64, t time.Time) error

	AddVaultEntry(e *models.VaultEntry) error
	GetVaultEntries(chatID string, limit int) ([]models.VaultEntry, error)
	GetVaultEntriesByCategory(chatID, category string) ([]models.VaultEntry, error)
	SearchVault(chatID, keyword string) ([]models.VaultEntry, error)
	SearchVaultConversational(chatID string, terms []string) ([]models.ScoredVaultEntry, error)
	DeleteVaultEntry(chatID string, id int64) (bool, error)
	GetAllVaultEntries(chatID string) ([]models.VaultEntry, error)

	UpsertUser(u *models.User) error
	GetUser(chatID string) (*models.User, error)

	Close() error
}
