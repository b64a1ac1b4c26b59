package handlers

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"recordatorio-bot/models"
	"recordatorio-bot/parser"
	"recordatorio-bot/scheduler"
	"recordatorio-bot/utils"
)

// Sender manda mensajes y documentos al chat
type Sender interface {
	SendMessage(chatID, text string) error
	SendDocument(chatID, filePath, caption string) error
}

// Transcriber convierte audio en texto
type Transcriber interface {
	Transcribe(audio []byte, mimeType string) (string, error)
}

// Exporter genera los archivos de exportación
type Exporter interface {
	ExportPDF(chatID string, reminders []models.Reminder, entries []models.VaultEntry) (string, error)
	ExportTXT(chatID string, reminders []models.Reminder, entries []models.VaultEntry) (string, error)
}

// Límites del intervalo de repetición de los importantes (en minutos)
const (
	minRepeatInterval     = 1
	maxRepeatInterval     = 60
	defaultRepeatInterval = 10
)

var (
	repeatIntervalRe = regexp.MustCompile(`(?i)\bcada\s+(\d+)\s*m(?:in(?:utos?)?)?\b`)
	vaultWordRe      = regexp.MustCompile(`(?i)^bit[aá]cora\b\s*`)
	noteWordRe       = regexp.MustCompile(`(?i)\b(?:nota|anot[aá](?:me)?|apunt[aá](?:r|me)?|record[aá](?:r|me)?|acordarme|guard[aá]r?)\s+que\b:?\s*`)
	lookupWordRe     = regexp.MustCompile(`(?i)^averigu[aá](?:me)?\b:?\s*`)
)

// CommandHandler enruta los mensajes entrantes del chat
type CommandHandler struct {
	db          DBManager
	scheduler   *scheduler.Scheduler
	sender      Sender
	transcriber Transcriber
	exporter    Exporter
}

func NewCommandHandler(db DBManager, sched *scheduler.Scheduler, sender Sender, transcriber Transcriber, exporter Exporter) *CommandHandler {
	return &CommandHandler{
		db:          db,
		scheduler:   sched,
		sender:      sender,
		transcriber: transcriber,
		exporter:    exporter,
	}
}

func (h *CommandHandler) reply(chatID, text string) {
	if err := h.sender.SendMessage(chatID, text); err != nil {
		log.Printf("❌ Error al responder a %s: %v", chatID, err)
	}
}

// HandleMessage procesa un mensaje de texto entrante
func (h *CommandHandler) HandleMessage(chatID, pushName, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if err := h.db.UpsertUser(&models.User{ChatID: chatID, PushName: pushName}); err != nil {
		log.Printf("⚠️ No se pudo registrar el usuario %s: %v", chatID, err)
	}

	if strings.HasPrefix(text, "/") {
		h.handleCommand(chatID, text)
		return
	}
	h.handleFreeText(chatID, text)
}

// HandleVoice procesa un mensaje de voz: lo transcribe y lo trata como texto
func (h *CommandHandler) HandleVoice(chatID, pushName string, audio []byte, mimeType string) {
	if h.transcriber == nil {
		h.reply(chatID, "🎤 La transcripción de voz no está configurada.")
		return
	}

	transcript, err := h.transcriber.Transcribe(audio, mimeType)
	if err != nil {
		log.Printf("❌ Error al transcribir audio de %s: %v", chatID, err)
		h.reply(chatID, "🎤 No pude entender el audio, probá de nuevo.")
		return
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		h.reply(chatID, "🎤 No pude entender el audio, probá de nuevo.")
		return
	}

	h.reply(chatID, fmt.Sprintf("🎤 Escuché: _%s_", transcript))
	h.HandleMessage(chatID, pushName, transcript)
}

func (h *CommandHandler) handleCommand(chatID, text string) {
	command, args := text, ""
	if idx := strings.IndexAny(text, " \t"); idx > 0 {
		command, args = text[:idx], strings.TrimSpace(text[idx+1:])
	}
	command = strings.ToLower(command)

	switch command {
	case "/start", "/ayuda", "/help":
		h.reply(chatID, welcomeText)
	case "/recordar":
		h.createReminder(chatID, args, false)
	case "/importante":
		h.createImportantReminder(chatID, args)
	case "/lista":
		h.listActive(chatID)
	case "/hoy":
		h.listToday(chatID)
	case "/dia":
		h.listDate(chatID, args)
	case "/buscar":
		if rest, ok := stripVaultRef(args); ok {
			h.searchVault(chatID, rest)
		} else {
			h.searchReminders(chatID, args)
		}
	case "/historial":
		h.listHistory(chatID)
	case "/listar":
		if _, ok := stripVaultRef(args); ok {
			h.listVault(chatID)
		} else {
			h.listActive(chatID)
		}
	case "/cancelar":
		h.cancelReminders(chatID, args)
	case "/borrar":
		if rest, ok := stripVaultRef(args); ok {
			h.deleteVaultEntry(chatID, rest)
		} else {
			h.cancelReminders(chatID, args)
		}
	case "/completar":
		h.completeReminders(chatID, args)
	case "/bitacora":
		h.handleVault(chatID, args)
	case "/exportar":
		h.exportData(chatID, args)
	default:
		h.reply(chatID, "🤔 No conozco ese comando. Mandá /start para ver qué puedo hacer.")
	}
}

const welcomeText = `¡Hola! 👋 Soy tu asistente de recordatorios.

📌 *Recordatorios*
• /recordar mañana a las 9 comprar pan
• recordame mañana 18:00 comprar comida (sin comando también)
• /importante llamar al médico en 30m cada 10m
• /lista — pendientes
• /hoy — los de hoy
• /dia 20/12 — los de una fecha (también pasada)
• /buscar <palabra o categoría>
• /historial — últimos resueltos
• /cancelar <id>, /cancelar 1-5, /cancelar todos
• /completar <id> — frena un importante

📓 *Bitácora*
• /bitacora <texto> — guardar una nota
• /bitacora — ver las últimas
• /bitacora buscar <palabra>
• /bitacora categoria <categoría>
• /bitacora borrar <id>
• anotá que el wifi es 1234 (sin comando también)
• También podés preguntarme cosas: ¿qué le gusta a Cindy?

📤 *Exportar*
• /exportar pdf (o txt)

🎤 Los mensajes de voz también valen.`

// createReminder interpreta la fecha del texto y programa el aviso
func (h *CommandHandler) createReminder(chatID, text string, important bool) {
	h.createReminderWithInterval(chatID, text, important, 0)
}

// createImportantReminder admite "cada Nm" para el intervalo de repetición
func (h *CommandHandler) createImportantReminder(chatID, text string) {
	interval := defaultRepeatInterval
	if m := repeatIntervalRe.FindStringSubmatch(text); m != nil {
		fmt.Sscanf(m[1], "%d", &interval)
		if interval < minRepeatInterval {
			interval = minRepeatInterval
		}
		if interval > maxRepeatInterval {
			interval = maxRepeatInterval
		}
		text = strings.TrimSpace(repeatIntervalRe.ReplaceAllString(text, " "))
	}
	h.createReminderWithInterval(chatID, text, true, interval)
}

// Errores de interpretación al crear recordatorios
var (
	ErrNoDate   = errors.New("no se reconoció ninguna fecha en el texto")
	ErrPastDate = errors.New("la fecha ya pasó")
)

// CreateReminder interpreta el texto, persiste el recordatorio y programa
// el aviso. La usan tanto los comandos del chat como la API.
func (h *CommandHandler) CreateReminder(chatID, text string, important bool, interval int) (*models.Reminder, error) {
	now := time.Now().In(parser.Location)
	dueAt, payload, ok := parser.ExtractDateAndText(text, now)
	if !ok {
		return nil, ErrNoDate
	}
	if !dueAt.After(now) {
		return nil, ErrPastDate
	}

	payload, category := parser.ExtractCategory(payload)
	payload = utils.CapitalizeFirst(parser.CleanPayload(payload))

	r := models.Reminder{
		ChatID:         chatID,
		Text:           payload,
		DueAt:          dueAt,
		Category:       category,
		Status:         models.ReminderStatusActive,
		IsImportant:    important,
		RepeatInterval: interval,
		CreatedAt:      now,
	}
	if err := h.db.AddReminder(&r); err != nil {
		return nil, fmt.Errorf("error al guardar el recordatorio: %v", err)
	}
	h.scheduler.Schedule(r)
	BroadcastToClients("reminder_created", r)
	return &r, nil
}

func (h *CommandHandler) createReminderWithInterval(chatID, text string, important bool, interval int) {
	if strings.TrimSpace(text) == "" {
		h.reply(chatID, "🤔 Decime qué y cuándo: /recordar mañana a las 9 comprar pan")
		return
	}

	r, err := h.CreateReminder(chatID, text, important, interval)
	switch {
	case err == ErrNoDate:
		h.reply(chatID, "🤔 No entendí la fecha. Probá con algo como \"mañana a las 9\" o \"el 20/12 a las 15:00\".")
		return
	case err == ErrPastDate:
		h.reply(chatID, "⏪ Esa fecha ya pasó. El recordatorio tiene que ser para el futuro.")
		return
	case err != nil:
		log.Printf("❌ Error al guardar recordatorio de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude guardar el recordatorio, probá de nuevo.")
		return
	}

	if important {
		h.reply(chatID, fmt.Sprintf("🔥 Dale, te aviso el %s: \"%s\" [#%s] (ID #%d)\nSe repite cada %d minutos hasta que mandes /completar %d.",
			formatDateTime(r.DueAt), r.Text, r.Category, r.ID, r.RepeatInterval, r.ID))
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ Dale, te aviso el %s: \"%s\" [#%s] (ID #%d)",
		formatDateTime(r.DueAt), r.Text, r.Category, r.ID))
}

func (h *CommandHandler) listActive(chatID string) {
	reminders, err := h.db.GetActiveReminders(chatID)
	if err != nil {
		log.Printf("❌ Error al listar recordatorios de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer tus recordatorios.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, "📭 No tenés recordatorios pendientes.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Tenés %d recordatorios pendientes:*\n\n", len(reminders))
	for _, r := range reminders {
		b.WriteString(formatReminderLine(r))
		b.WriteString("\n")
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) listToday(chatID string) {
	now := time.Now().In(parser.Location)
	reminders, err := h.db.GetTodayReminders(chatID, now)
	if err != nil {
		log.Printf("❌ Error al listar los de hoy de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer tus recordatorios.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, "📭 No tenés recordatorios para hoy.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Para hoy (%s):*\n\n", formatDate(now))
	for _, r := range reminders {
		b.WriteString(formatReminderLine(r))
		b.WriteString("\n")
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) listDate(chatID, args string) {
	if args == "" {
		h.reply(chatID, "📅 Decime qué día: /dia 20/12, /dia ayer, /dia el lunes 29")
		return
	}

	now := time.Now().In(parser.Location)
	date, ok := parser.ResolveDateOnly(args, now)
	if !ok {
		h.reply(chatID, "🤔 No entendí esa fecha. Probá con /dia 20/12 o /dia ayer.")
		return
	}

	reminders, err := h.db.GetDateReminders(chatID, date)
	if err != nil {
		log.Printf("❌ Error al listar el día para %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer tus recordatorios.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, fmt.Sprintf("📭 No hay nada anotado para el %s.", formatDate(date)))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Recordatorios del %s:*\n\n", formatDate(date))
	for _, r := range reminders {
		fmt.Fprintf(&b, "%s (%s)\n", formatReminderLine(r), statusLabel(r.Status))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) searchReminders(chatID, args string) {
	if args == "" {
		h.reply(chatID, "🔍 Decime qué buscar: /buscar médico, /buscar trabajo")
		return
	}

	reminders, err := h.db.SearchReminders(chatID, args)
	if err != nil {
		log.Printf("❌ Error en la búsqueda de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude buscar, probá de nuevo.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, fmt.Sprintf("🔍 No encontré recordatorios con \"%s\".", args))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Encontré %d con \"%s\":*\n\n", len(reminders), args)
	for _, r := range reminders {
		line := formatReminderLine(r)
		fmt.Fprintf(&b, "%s (%s)\n", utils.HighlightKeyword(line, args), statusLabel(r.Status))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) listHistory(chatID string) {
	reminders, err := h.db.GetHistoricalReminders(chatID, 10)
	if err != nil {
		log.Printf("❌ Error al leer el historial de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer tu historial.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, "📭 Todavía no hay historial.")
		return
	}

	var b strings.Builder
	b.WriteString("🗂 *Últimos recordatorios resueltos:*\n\n")
	for _, r := range reminders {
		fmt.Fprintf(&b, "%s (%s)\n", formatReminderLine(r), statusLabel(r.Status))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) cancelReminders(chatID, args string) {
	if args == "" {
		h.reply(chatID, "🗑 Decime cuál: /cancelar 3, /cancelar 1,2,5, /cancelar 1-4 o /cancelar todos")
		return
	}

	switch strings.ToLower(strings.TrimSpace(args)) {
	case "todo", "todos", "all":
		active, err := h.db.GetActiveReminders(chatID)
		if err != nil {
			log.Printf("❌ Error al cancelar todo para %s: %v", chatID, err)
			h.reply(chatID, "❌ No pude cancelar, probá de nuevo.")
			return
		}
		count, err := h.db.CancelAllReminders(chatID)
		if err != nil {
			log.Printf("❌ Error al cancelar todo para %s: %v", chatID, err)
			h.reply(chatID, "❌ No pude cancelar, probá de nuevo.")
			return
		}
		for _, r := range active {
			h.scheduler.Cancel(r.ID)
		}
		h.reply(chatID, fmt.Sprintf("🗑 Listo, cancelé %d recordatorios.", count))
		return
	}

	ids := utils.ParseReminderIDs(args)
	if len(ids) == 0 {
		h.reply(chatID, "🤔 No entendí los IDs. Probá /cancelar 3 o /cancelar 1,2,5.")
		return
	}

	var cancelled, missing []int64
	for _, id := range ids {
		ok, err := h.db.CancelReminder(chatID, id)
		if err != nil {
			log.Printf("❌ Error al cancelar #%d de %s: %v", id, chatID, err)
			continue
		}
		if ok {
			h.scheduler.Cancel(id)
			cancelled = append(cancelled, id)
		} else {
			missing = append(missing, id)
		}
	}

	var parts []string
	if len(cancelled) > 0 {
		parts = append(parts, fmt.Sprintf("🗑 Cancelados: %s", joinIDs(cancelled)))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("🤷 No encontré pendientes con ID %s", joinIDs(missing)))
	}
	if len(parts) == 0 {
		parts = append(parts, "❌ No pude cancelar ninguno, probá de nuevo.")
	}
	h.reply(chatID, strings.Join(parts, "\n"))
}

func (h *CommandHandler) completeReminders(chatID, args string) {
	ids := utils.ParseReminderIDs(args)
	if len(ids) == 0 {
		h.reply(chatID, "✅ Decime cuál: /completar 3")
		return
	}

	var completed, missing []int64
	for _, id := range ids {
		ok, err := h.db.MarkReminderCompleted(chatID, id)
		if err != nil {
			log.Printf("❌ Error al completar #%d de %s: %v", id, chatID, err)
			continue
		}
		if ok {
			h.scheduler.Cancel(id)
			completed = append(completed, id)
		} else {
			missing = append(missing, id)
		}
	}

	var parts []string
	if len(completed) > 0 {
		parts = append(parts, fmt.Sprintf("💪 ¡Bien ahí! Completados: %s", joinIDs(completed)))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("🤷 No encontré importantes activos con ID %s", joinIDs(missing)))
	}
	if len(parts) == 0 {
		parts = append(parts, "❌ No pude completar ninguno, probá de nuevo.")
	}
	h.reply(chatID, strings.Join(parts, "\n"))
}

// stripVaultRef detecta el prefijo "bitacora" en los alias de comando
func stripVaultRef(args string) (string, bool) {
	if m := vaultWordRe.FindString(args); m != "" {
		return strings.TrimSpace(args[len(m):]), true
	}
	return args, false
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}

// handleFreeText procesa mensajes sin comando: preguntas a la bitácora o
// recordatorios en lenguaje natural
func (h *CommandHandler) handleFreeText(chatID, text string) {
	// Las frases de nota van antes que las de recordatorio: "recordá que"
	// guarda en la bitácora, "recordame mañana" programa un aviso
	if loc := noteWordRe.FindStringIndex(text); loc != nil {
		h.addVaultEntry(chatID, strings.TrimSpace(text[loc[1]:]))
		return
	}
	if m := lookupWordRe.FindString(text); m != "" {
		h.answerFromVault(chatID, strings.TrimSpace(text[len(m):]))
		return
	}
	if isQuestion(text) {
		h.answerFromVault(chatID, text)
		return
	}

	// Sin una palabra de pedido no se intenta interpretar una fecha: el
	// chat casual no tiene que convertirse en recordatorios
	if !parser.HasRequestWord(text) {
		h.reply(chatID, "🤔 No entendí. Si querés un recordatorio probá \"recordame mañana a las 9 comprar pan\", y /start te muestra todo lo demás.")
		return
	}

	r, err := h.CreateReminder(chatID, text, false, 0)
	switch {
	case err == ErrNoDate:
		h.reply(chatID, "🤔 No entendí. Si querés un recordatorio probá \"mañana a las 9 comprar pan\", y /start te muestra todo lo demás.")
	case err == ErrPastDate:
		h.reply(chatID, "⏪ Esa fecha ya pasó. El recordatorio tiene que ser para el futuro.")
	case err != nil:
		log.Printf("❌ Error al guardar recordatorio de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude guardar el recordatorio, probá de nuevo.")
	default:
		h.reply(chatID, fmt.Sprintf("✅ Dale, te aviso el %s: \"%s\" [#%s] (ID #%d)",
			formatDateTime(r.DueAt), r.Text, r.Category, r.ID))
	}
}

func isQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "¿") || strings.HasSuffix(trimmed, "?")
}

// answerFromVault responde preguntas buscando en la bitácora por términos
func (h *CommandHandler) answerFromVault(chatID, question string) {
	terms := utils.ExtractSearchTerms(question)
	if len(terms) == 0 {
		h.reply(chatID, "🤔 No entendí la pregunta. Probá con algo como: ¿qué le gusta a Cindy?")
		return
	}

	scored, err := h.db.SearchVaultConversational(chatID, terms)
	if err != nil {
		log.Printf("❌ Error en la búsqueda conversacional de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude buscar en la bitácora.")
		return
	}
	if len(scored) == 0 {
		h.reply(chatID, "📓 No encontré nada en la bitácora sobre eso.")
		return
	}

	limit := 5
	if len(scored) < limit {
		limit = len(scored)
	}
	var b strings.Builder
	b.WriteString("📓 *Encontré esto en tu bitácora:*\n\n")
	for _, e := range scored[:limit] {
		fmt.Fprintf(&b, "• %s _(%s)_\n", e.Text, e.CreatedAt.Format("02/01/2006"))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}
