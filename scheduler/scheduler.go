package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"recordatorio-bot/models"
	"recordatorio-bot/parser"
)

// Tolerancia para disparar avisos que quedaron apenas vencidos (reinicios)
const graceWindow = 60 * time.Second

// Demora del primer disparo de un recordatorio importante atrasado
const kickoffDelay = 5 * time.Second

// Sender manda mensajes al chat
type Sender interface {
	SendMessage(chatID, text string) error
}

// Store persiste los cambios de estado que dispara el scheduler
type Store interface {
	MarkReminderSent(id int64) error
	UpdateReminderLastNotified(id int64, t time.Time) error
}

// Scheduler maneja los timers en memoria de todos los recordatorios activos
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[int64]chan struct{}
	sender  Sender
	store   Store
	onFired func(models.Reminder)
}

func NewScheduler(sender Sender, store Store) *Scheduler {
	return &Scheduler{
		jobs:   make(map[int64]chan struct{}),
		sender: sender,
		store:  store,
	}
}

// SetOnFired registra un callback que se llama con cada aviso disparado
// (se usa para el broadcast por WebSocket)
func (s *Scheduler) SetOnFired(fn func(models.Reminder)) {
	s.onFired = fn
}

// Schedule registra el timer de un recordatorio. Si ya había un timer con
// el mismo ID, lo reemplaza. Un recordatorio vencido por más de la ventana
// de tolerancia se marca enviado sin avisar.
func (s *Scheduler) Schedule(r models.Reminder) {
	delay := time.Until(r.DueAt)
	if delay < 0 {
		if -delay > graceWindow {
			log.Printf("⏰ Recordatorio #%d vencido hace %v, se descarta", r.ID, -delay)
			if err := s.store.MarkReminderSent(r.ID); err != nil {
				log.Printf("❌ Error al marcar recordatorio #%d como enviado: %v", r.ID, err)
			}
			return
		}
		delay = 0
	}
	s.scheduleAfter(r, delay)
}

// scheduleAfter arranca la goroutine del timer con la demora ya calculada
func (s *Scheduler) scheduleAfter(r models.Reminder, delay time.Duration) {
	stop := make(chan struct{})

	s.mu.Lock()
	if prev, ok := s.jobs[r.ID]; ok {
		close(prev)
	}
	s.jobs[r.ID] = stop
	s.mu.Unlock()

	if r.IsRecurring() {
		go s.runRecurring(r, delay, stop)
	} else {
		go s.runOneShot(r, delay, stop)
	}
}

func (s *Scheduler) runOneShot(r models.Reminder, delay time.Duration, stop chan struct{}) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-stop:
		return
	case <-timer.C:
	}

	s.release(r.ID, stop)
	s.fireOneShot(r)
}

func (s *Scheduler) runRecurring(r models.Reminder, delay time.Duration, stop chan struct{}) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-stop:
		return
	case <-timer.C:
	}
	s.fireRecurring(r)

	ticker := time.NewTicker(r.RepeatDuration())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.fireRecurring(r)
		}
	}
}

func (s *Scheduler) fireOneShot(r models.Reminder) {
	text := fmt.Sprintf("⏰ *Recordatorio* (#%d)\n\n%s", r.ID, r.Text)
	if err := s.sender.SendMessage(r.ChatID, text); err != nil {
		log.Printf("❌ Error al enviar recordatorio #%d: %v", r.ID, err)
		return
	}
	log.Printf("⏰ Recordatorio #%d enviado a %s", r.ID, r.ChatID)

	if err := s.store.MarkReminderSent(r.ID); err != nil {
		log.Printf("❌ Error al marcar recordatorio #%d como enviado: %v", r.ID, err)
	}
	if s.onFired != nil {
		s.onFired(r)
	}
}

func (s *Scheduler) fireRecurring(r models.Reminder) {
	text := fmt.Sprintf("🔥 *RECORDATORIO IMPORTANTE* (#%d)\n\n%s\n\n_Se repite cada %d minutos hasta que lo completes con /completar %d_",
		r.ID, r.Text, r.RepeatInterval, r.ID)
	if err := s.sender.SendMessage(r.ChatID, text); err != nil {
		log.Printf("❌ Error al enviar recordatorio importante #%d: %v", r.ID, err)
		return
	}
	log.Printf("🔥 Recordatorio importante #%d enviado a %s", r.ID, r.ChatID)

	now := time.Now().In(parser.Location)
	if err := s.store.UpdateReminderLastNotified(r.ID, now); err != nil {
		log.Printf("❌ Error al actualizar last_notified de #%d: %v", r.ID, err)
	}
	if s.onFired != nil {
		s.onFired(r)
	}
}

// release saca el job del registro solo si todavía es el mismo canal
// (puede haber sido reemplazado por un Schedule posterior)
func (s *Scheduler) release(id int64, stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.jobs[id]; ok && current == stop {
		delete(s.jobs, id)
	}
}

// Cancel frena el timer de un recordatorio. Devuelve false si no había
// ninguno registrado con ese ID.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stop, ok := s.jobs[id]
	if !ok {
		return false
	}
	close(stop)
	delete(s.jobs, id)
	return true
}

// Stop frena todos los timers (apagado del servicio)
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, stop := range s.jobs {
		close(stop)
		delete(s.jobs, id)
	}
}

// ActiveCount devuelve cuántos timers hay registrados
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Rehydrate reconstruye los timers al arrancar a partir de los
// recordatorios activos persistidos. Devuelve cuántos quedaron programados.
//
// Reglas para los vencidos durante el apagón:
//   - comunes: fuera de la ventana de tolerancia se marcan enviados sin avisar
//   - importantes sin aviso previo, o con el intervalo ya cumplido: primer
//     disparo a los pocos segundos y de ahí el ciclo normal
//   - importantes avisados hace poco: se reengancha el próximo tick
//     manteniendo la fase original
func (s *Scheduler) Rehydrate(reminders []models.Reminder, now time.Time) int {
	scheduled := 0
	for _, r := range reminders {
		if r.Status != models.ReminderStatusActive {
			continue
		}
		if r.Text == "" || r.ChatID == "" {
			log.Printf("⚠️ Recordatorio #%d con datos incompletos, se saltea", r.ID)
			continue
		}

		if r.IsRecurring() {
			interval := r.RepeatDuration()
			switch {
			case r.DueAt.After(now):
				s.scheduleAfter(r, r.DueAt.Sub(now))
			case r.LastNotifiedAt == nil || now.Sub(*r.LastNotifiedAt) >= interval:
				s.scheduleAfter(r, kickoffDelay)
			default:
				// Mantiene la fase: el próximo múltiplo del intervalo
				// contando desde la fecha original
				next := r.DueAt
				for !next.After(now) {
					next = next.Add(interval)
				}
				s.scheduleAfter(r, next.Sub(now))
			}
			scheduled++
			continue
		}

		if r.DueAt.After(now) {
			s.scheduleAfter(r, r.DueAt.Sub(now))
			scheduled++
		} else if now.Sub(r.DueAt) <= graceWindow {
			s.scheduleAfter(r, 0)
			scheduled++
		} else {
			log.Printf("⏰ Recordatorio #%d venció durante el apagón, se marca enviado", r.ID)
			if err := s.store.MarkReminderSent(r.ID); err != nil {
				log.Printf("❌ Error al marcar recordatorio #%d como enviado: %v", r.ID, err)
			}
		}
	}
	log.Printf("✅ Scheduler rehidratado: %d recordatorios programados", scheduled)
	return scheduled
}
