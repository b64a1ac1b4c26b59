package handlers

import (
	"strings"
	"sync"
	"testing"
	"time"

	"recordatorio-bot/models"
	"recordatorio-bot/scheduler"
)

type fakeDB struct {
	mu        sync.Mutex
	reminders []models.Reminder
	entries   []models.VaultEntry
	nextID    int64
}

func (f *fakeDB) AddReminder(r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.reminders = append(f.reminders, *r)
	return nil
}

func (f *fakeDB) GetReminder(chatID string, id int64) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reminders {
		if r.ChatID == chatID && r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetActiveReminders(chatID string) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.ChatID == chatID && r.Status == models.ReminderStatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDB) GetAllActiveReminders() ([]models.Reminder, error)       { return nil, nil }
func (f *fakeDB) GetActiveImportantReminders() ([]models.Reminder, error) { return nil, nil }
func (f *fakeDB) GetTodayReminders(string, time.Time) ([]models.Reminder, error) {
	return nil, nil
}
func (f *fakeDB) GetDateReminders(string, time.Time) ([]models.Reminder, error) { return nil, nil }
func (f *fakeDB) SearchReminders(string, string) ([]models.Reminder, error)     { return nil, nil }
func (f *fakeDB) GetHistoricalReminders(string, int) ([]models.Reminder, error) { return nil, nil }
func (f *fakeDB) GetAllReminders(string) ([]models.Reminder, error)             { return nil, nil }

func (f *fakeDB) CancelReminder(chatID string, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reminders {
		if r.ChatID == chatID && r.ID == id && r.Status == models.ReminderStatusActive {
			f.reminders[i].Status = models.ReminderStatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CancelAllReminders(chatID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for i, r := range f.reminders {
		if r.ChatID == chatID && r.Status == models.ReminderStatusActive {
			f.reminders[i].Status = models.ReminderStatusCancelled
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) MarkReminderSent(int64) error { return nil }
func (f *fakeDB) MarkReminderCompleted(string, int64) (bool, error) {
	return false, nil
}
func (f *fakeDB) UpdateReminderLastNotified(int64, time.Time) error { return nil }

func (f *fakeDB) AddVaultEntry(e *models.VaultEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeDB) GetVaultEntries(string, int) ([]models.VaultEntry, error) { return nil, nil }
func (f *fakeDB) GetVaultEntriesByCategory(string, string) ([]models.VaultEntry, error) {
	return nil, nil
}
func (f *fakeDB) SearchVault(string, string) ([]models.VaultEntry, error) { return nil, nil }

func (f *fakeDB) SearchVaultConversational(chatID string, terms []string) ([]models.ScoredVaultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScoredVaultEntry
	for _, e := range f.entries {
		for _, term := range terms {
			if strings.Contains(strings.ToLower(e.Text), term) {
				out = append(out, models.ScoredVaultEntry{VaultEntry: e, Score: 1})
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteVaultEntry(string, int64) (bool, error)           { return false, nil }
func (f *fakeDB) GetAllVaultEntries(string) ([]models.VaultEntry, error) { return nil, nil }
func (f *fakeDB) UpsertUser(*models.User) error                          { return nil }
func (f *fakeDB) GetUser(string) (*models.User, error)                   { return nil, nil }
func (f *fakeDB) Close() error                                           { return nil }

type fakeChatSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeChatSender) SendMessage(chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeChatSender) SendDocument(chatID, filePath, caption string) error { return nil }

func (f *fakeChatSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func newTestHandler() (*CommandHandler, *fakeDB, *fakeChatSender, *scheduler.Scheduler) {
	db := &fakeDB{}
	sender := &fakeChatSender{}
	sched := scheduler.NewScheduler(sender, &fakeSchedStore{})
	return NewCommandHandler(db, sched, sender, nil, nil), db, sender, sched
}

type fakeSchedStore struct{}

func (f *fakeSchedStore) MarkReminderSent(int64) error                      { return nil }
func (f *fakeSchedStore) UpdateReminderLastNotified(int64, time.Time) error { return nil }

func TestRecordarCreaYProgram(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/recordar mañana a las 9 comprar pan")

	db.mu.Lock()
	count := len(db.reminders)
	var r models.Reminder
	if count > 0 {
		r = db.reminders[0]
	}
	db.mu.Unlock()

	if count != 1 {
		t.Fatalf("esperaba 1 recordatorio guardado, hay %d", count)
	}
	if r.Text != "Comprar pan" {
		t.Errorf("texto: obtuve %q, esperaba %q", r.Text, "Comprar pan")
	}
	if r.DueAt.Hour() != 9 {
		t.Errorf("hora: obtuve %d, esperaba 9", r.DueAt.Hour())
	}
	if sched.ActiveCount() != 1 {
		t.Errorf("esperaba 1 timer programado, hay %d", sched.ActiveCount())
	}
	if !strings.Contains(sender.last(), "Dale, te aviso") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestRecordarFechaPasada(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/recordar el 20/12/2020 algo viejo")

	db.mu.Lock()
	count := len(db.reminders)
	db.mu.Unlock()

	if count != 0 {
		t.Fatalf("no debería guardar fechas pasadas, hay %d", count)
	}
	if !strings.Contains(sender.last(), "ya pasó") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestImportanteConIntervalo(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/importante tomar la pastilla en 2 horas cada 15m")

	db.mu.Lock()
	count := len(db.reminders)
	var r models.Reminder
	if count > 0 {
		r = db.reminders[0]
	}
	db.mu.Unlock()

	if count != 1 {
		t.Fatalf("esperaba 1 recordatorio, hay %d", count)
	}
	if !r.IsImportant {
		t.Error("debería ser importante")
	}
	if r.RepeatInterval != 15 {
		t.Errorf("intervalo: obtuve %d, esperaba 15", r.RepeatInterval)
	}
	if !strings.Contains(sender.last(), "cada 15 minutos") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestImportanteIntervaloFueraDeRango(t *testing.T) {
	h, db, _, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/importante regar las plantas en 1 hora cada 500m")

	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.reminders) != 1 {
		t.Fatalf("esperaba 1 recordatorio, hay %d", len(db.reminders))
	}
	if got := db.reminders[0].RepeatInterval; got != maxRepeatInterval {
		t.Errorf("intervalo: obtuve %d, esperaba el tope %d", got, maxRepeatInterval)
	}
}

func TestListaVacia(t *testing.T) {
	h, _, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/lista")

	if !strings.Contains(sender.last(), "No tenés recordatorios") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestCancelarScopedPorChat(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	// Recordatorio de otro chat
	other := models.Reminder{ChatID: "999", Text: "Ajeno", Status: models.ReminderStatusActive}
	db.AddReminder(&other)

	h.HandleMessage("123", "Ana", "/cancelar 1")

	db.mu.Lock()
	status := db.reminders[0].Status
	db.mu.Unlock()

	if status != models.ReminderStatusActive {
		t.Error("no debería poder cancelar recordatorios de otro chat")
	}
	if !strings.Contains(sender.last(), "No encontré") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestPreguntaBuscaEnBitacora(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	entry := models.VaultEntry{ChatID: "123", Text: "A Cindy le gusta el helado de pistacho", CreatedAt: time.Now()}
	db.AddVaultEntry(&entry)

	h.HandleMessage("123", "Ana", "¿Qué le gusta a Cindy?")

	if !strings.Contains(sender.last(), "helado de pistacho") {
		t.Errorf("debería encontrar la nota, respondió: %q", sender.last())
	}
}

func TestCharlaCasualNoCreaRecordatorio(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	// Trae fechas sueltas pero ninguna palabra de pedido
	h.HandleMessage("123", "Ana", "ayer gané con el 3 de copas")

	db.mu.Lock()
	count := len(db.reminders)
	db.mu.Unlock()

	if count != 0 {
		t.Fatalf("la charla casual no debería crear recordatorios, hay %d", count)
	}
	if !strings.Contains(sender.last(), "No entendí") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestTextoLibreConPedidoCreaRecordatorio(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "recordame mañana a las 9 comprar pan")

	db.mu.Lock()
	count := len(db.reminders)
	db.mu.Unlock()

	if count != 1 {
		t.Fatalf("esperaba 1 recordatorio, hay %d", count)
	}
	if !strings.Contains(sender.last(), "Dale, te aviso") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestNotaQueVaALaBitacora(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "nota que el vino de la esquina estaba malo")

	db.mu.Lock()
	entries := len(db.entries)
	reminders := len(db.reminders)
	var e models.VaultEntry
	if entries > 0 {
		e = db.entries[0]
	}
	db.mu.Unlock()

	if entries != 1 {
		t.Fatalf("esperaba 1 nota, hay %d", entries)
	}
	if reminders != 0 {
		t.Fatalf("no debería crear recordatorios, hay %d", reminders)
	}
	if e.Text != "El vino de la esquina estaba malo" {
		t.Errorf("texto: obtuve %q", e.Text)
	}
	if !strings.Contains(sender.last(), "Anotado") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestRecordaQueVaALaBitacora(t *testing.T) {
	h, db, _, sched := newTestHandler()
	defer sched.Stop()

	// "recordar que" guarda una nota, no programa un aviso
	h.HandleMessage("123", "Ana", "recordá que a Cindy no le gusta el cilantro")

	db.mu.Lock()
	entries := len(db.entries)
	reminders := len(db.reminders)
	db.mu.Unlock()

	if entries != 1 {
		t.Fatalf("esperaba 1 nota, hay %d", entries)
	}
	if reminders != 0 {
		t.Fatalf("no debería crear recordatorios, hay %d", reminders)
	}
}

func TestCancelarTodos(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "recordame mañana a las 9 comprar pan")
	h.HandleMessage("123", "Ana", "/cancelar todos")

	db.mu.Lock()
	status := db.reminders[0].Status
	db.mu.Unlock()

	if status != models.ReminderStatusCancelled {
		t.Errorf("estado: obtuve %q, esperaba %q", status, models.ReminderStatusCancelled)
	}
	if !strings.Contains(sender.last(), "cancelé 1") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
	if sched.ActiveCount() != 0 {
		t.Errorf("no deberían quedar timers, hay %d", sched.ActiveCount())
	}
}

func TestTextoLibreSinFecha(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "hola como estas")

	db.mu.Lock()
	count := len(db.reminders)
	db.mu.Unlock()

	if count != 0 {
		t.Fatalf("no debería crear recordatorios, hay %d", count)
	}
	if !strings.Contains(sender.last(), "No entendí") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestAnotaGuardaNota(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "anotá que la clave del wifi es pistacho99")

	db.mu.Lock()
	count := len(db.entries)
	var e models.VaultEntry
	if count > 0 {
		e = db.entries[0]
	}
	db.mu.Unlock()

	if count != 1 {
		t.Fatalf("esperaba 1 nota, hay %d", count)
	}
	if e.Text != "La clave del wifi es pistacho99" {
		t.Errorf("texto: obtuve %q", e.Text)
	}
	if !strings.Contains(sender.last(), "Anotado") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}

func TestBitacoraGuardaNota(t *testing.T) {
	h, db, sender, sched := newTestHandler()
	defer sched.Stop()

	h.HandleMessage("123", "Ana", "/bitacora a Cindy le gusta el helado (categoría: personal)")

	db.mu.Lock()
	count := len(db.entries)
	var e models.VaultEntry
	if count > 0 {
		e = db.entries[0]
	}
	db.mu.Unlock()

	if count != 1 {
		t.Fatalf("esperaba 1 nota, hay %d", count)
	}
	if e.Category != "personal" {
		t.Errorf("categoría: obtuve %q, esperaba %q", e.Category, "personal")
	}
	if !strings.Contains(sender.last(), "Anotado") {
		t.Errorf("respuesta inesperada: %q", sender.last())
	}
}
