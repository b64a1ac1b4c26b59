package scheduler

import (
	"sync"
	"testing"
	"time"

	"recordatorio-bot/models"
	"recordatorio-bot/parser"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) SendMessage(chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeStore struct {
	mu           sync.Mutex
	sent         []int64
	lastNotified []int64
}

func (f *fakeStore) MarkReminderSent(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeStore) UpdateReminderLastNotified(id int64, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastNotified = append(f.lastNotified, id)
	return nil
}

func (f *fakeStore) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestScheduler() (*Scheduler, *fakeSender, *fakeStore) {
	sender := &fakeSender{}
	store := &fakeStore{}
	return NewScheduler(sender, store), sender, store
}

func timePtr(t time.Time) *time.Time { return &t }

func TestScheduleAndFireOneShot(t *testing.T) {
	sched, sender, store := newTestScheduler()
	defer sched.Stop()

	now := time.Now().In(parser.Location)
	sched.Schedule(models.Reminder{
		ID:     1,
		ChatID: "123",
		Text:   "Comprar pan",
		DueAt:  now.Add(30 * time.Millisecond),
		Status: models.ReminderStatusActive,
	})

	if sched.ActiveCount() != 1 {
		t.Fatalf("esperaba 1 timer activo, hay %d", sched.ActiveCount())
	}

	time.Sleep(200 * time.Millisecond)

	if sender.count() != 1 {
		t.Errorf("esperaba 1 mensaje enviado, hay %d", sender.count())
	}
	if store.sentCount() != 1 {
		t.Errorf("esperaba 1 marcado como enviado, hay %d", store.sentCount())
	}
	if sched.ActiveCount() != 0 {
		t.Errorf("el timer debería haberse liberado, quedan %d", sched.ActiveCount())
	}
}

func TestCancelBeforeFire(t *testing.T) {
	sched, sender, store := newTestScheduler()
	defer sched.Stop()

	now := time.Now().In(parser.Location)
	sched.Schedule(models.Reminder{
		ID:     7,
		ChatID: "123",
		Text:   "No debería salir",
		DueAt:  now.Add(50 * time.Millisecond),
		Status: models.ReminderStatusActive,
	})

	if !sched.Cancel(7) {
		t.Fatal("Cancel debería devolver true para un timer registrado")
	}
	if sched.Cancel(7) {
		t.Error("Cancel repetido debería devolver false")
	}

	time.Sleep(150 * time.Millisecond)

	if sender.count() != 0 {
		t.Errorf("no debería haberse enviado nada, hay %d mensajes", sender.count())
	}
	if store.sentCount() != 0 {
		t.Errorf("no debería haberse marcado nada, hay %d", store.sentCount())
	}
}

func TestScheduleStaleMarksSentWithoutSending(t *testing.T) {
	sched, sender, store := newTestScheduler()
	defer sched.Stop()

	now := time.Now().In(parser.Location)
	sched.Schedule(models.Reminder{
		ID:     3,
		ChatID: "123",
		Text:   "Viejo",
		DueAt:  now.Add(-5 * time.Minute),
		Status: models.ReminderStatusActive,
	})

	if sender.count() != 0 {
		t.Errorf("un recordatorio muy vencido no debe avisar, hay %d mensajes", sender.count())
	}
	if store.sentCount() != 1 {
		t.Errorf("debería marcarse enviado igual, hay %d", store.sentCount())
	}
	if sched.ActiveCount() != 0 {
		t.Errorf("no debería quedar ningún timer, hay %d", sched.ActiveCount())
	}
}

func TestRehydrate(t *testing.T) {
	sched, sender, store := newTestScheduler()
	defer sched.Stop()

	now := time.Now().In(parser.Location)
	reminders := []models.Reminder{
		// Futuro: se programa normal
		{ID: 1, ChatID: "123", Text: "Futuro", DueAt: now.Add(time.Hour), Status: models.ReminderStatusActive},
		// Vencido fuera de la tolerancia: se marca enviado sin avisar
		{ID: 2, ChatID: "123", Text: "Vencido", DueAt: now.Add(-10 * time.Minute), Status: models.ReminderStatusActive},
		// Ya resuelto: se ignora
		{ID: 3, ChatID: "123", Text: "Resuelto", DueAt: now.Add(time.Hour), Status: models.ReminderStatusSent},
		// Importante avisado hace poco: se reengancha sin disparo inmediato
		{
			ID: 4, ChatID: "123", Text: "Importante", DueAt: now.Add(-30 * time.Minute),
			Status: models.ReminderStatusActive, IsImportant: true, RepeatInterval: 10,
			LastNotifiedAt: timePtr(now.Add(-3 * time.Minute)),
		},
		// Datos incompletos: se saltea
		{ID: 5, ChatID: "", Text: "Roto", DueAt: now.Add(time.Hour), Status: models.ReminderStatusActive},
	}

	scheduled := sched.Rehydrate(reminders, now)
	if scheduled != 2 {
		t.Errorf("esperaba 2 programados, obtuve %d", scheduled)
	}
	if sched.ActiveCount() != 2 {
		t.Errorf("esperaba 2 timers, hay %d", sched.ActiveCount())
	}

	time.Sleep(100 * time.Millisecond)

	// Nada debería haberse disparado todavía
	if sender.count() != 0 {
		t.Errorf("no debería haber avisos inmediatos, hay %d", sender.count())
	}
	// Solo el vencido se marcó como enviado
	if store.sentCount() != 1 {
		t.Errorf("esperaba 1 marcado como enviado, hay %d", store.sentCount())
	}
}

func TestRehydrateRecurringOverdueKicksOff(t *testing.T) {
	sched, sender, store := newTestScheduler()
	defer sched.Stop()

	now := time.Now().In(parser.Location)
	r := models.Reminder{
		ID: 9, ChatID: "123", Text: "Tomar la pastilla", DueAt: now.Add(-30 * time.Minute),
		Status: models.ReminderStatusActive, IsImportant: true, RepeatInterval: 10,
	}

	// Sin aviso previo el primer disparo sale a los pocos segundos
	sched.Rehydrate([]models.Reminder{r}, now)
	if sched.ActiveCount() != 1 {
		t.Fatalf("esperaba 1 timer, hay %d", sched.ActiveCount())
	}

	time.Sleep(kickoffDelay + 200*time.Millisecond)

	if sender.count() != 1 {
		t.Errorf("esperaba el disparo inicial, hay %d mensajes", sender.count())
	}

	// Los importantes no se marcan como enviados, solo actualizan el último aviso
	if store.sentCount() != 0 {
		t.Errorf("un importante no debe marcarse enviado, hay %d", store.sentCount())
	}
	store.mu.Lock()
	notified := len(store.lastNotified)
	store.mu.Unlock()
	if notified != 1 {
		t.Errorf("esperaba 1 actualización de último aviso, hay %d", notified)
	}
}

func TestOnFiredCallback(t *testing.T) {
	sched, _, _ := newTestScheduler()
	defer sched.Stop()

	fired := make(chan models.Reminder, 1)
	sched.SetOnFired(func(r models.Reminder) { fired <- r })

	now := time.Now().In(parser.Location)
	sched.Schedule(models.Reminder{
		ID:     11,
		ChatID: "123",
		Text:   "Con callback",
		DueAt:  now.Add(30 * time.Millisecond),
		Status: models.ReminderStatusActive,
	})

	select {
	case r := <-fired:
		if r.ID != 11 {
			t.Errorf("callback con ID %d, esperaba 11", r.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("el callback no se llamó")
	}
}
