package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"recordatorio-bot/models"
	"recordatorio-bot/parser"
	"recordatorio-bot/utils"
)

// handleVault enruta los subcomandos de /bitacora
func (h *CommandHandler) handleVault(chatID, args string) {
	if args == "" {
		h.listVault(chatID)
		return
	}

	sub, rest := args, ""
	if idx := strings.IndexAny(args, " \t"); idx > 0 {
		sub, rest = args[:idx], strings.TrimSpace(args[idx+1:])
	}

	switch strings.ToLower(sub) {
	case "buscar":
		h.searchVault(chatID, rest)
	case "categoria", "categoría":
		h.listVaultCategory(chatID, rest)
	case "borrar":
		h.deleteVaultEntry(chatID, rest)
	default:
		h.addVaultEntry(chatID, args)
	}
}

func (h *CommandHandler) addVaultEntry(chatID, text string) {
	text, category := parser.ExtractCategory(text)
	text = utils.CapitalizeFirst(strings.TrimSpace(text))
	if text == "" {
		h.reply(chatID, "📓 Decime qué anotar: /bitacora a Cindy le gusta el helado de pistacho")
		return
	}

	e := models.VaultEntry{ChatID: chatID, Text: text, Category: category}
	if err := h.db.AddVaultEntry(&e); err != nil {
		log.Printf("❌ Error al guardar nota de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude guardar la nota, probá de nuevo.")
		return
	}
	h.reply(chatID, fmt.Sprintf("📓 Anotado [#%s] (ID #%d): %s", category, e.ID, text))
}

func (h *CommandHandler) listVault(chatID string) {
	entries, err := h.db.GetVaultEntries(chatID, 20)
	if err != nil {
		log.Printf("❌ Error al leer la bitácora de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer la bitácora.")
		return
	}
	if len(entries) == 0 {
		h.reply(chatID, "📓 La bitácora está vacía. Guardá algo con /bitacora <texto>.")
		return
	}

	var b strings.Builder
	b.WriteString("📓 *Últimas notas:*\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "• *#%d* %s [#%s] _(%s)_\n", e.ID, e.Text, e.Category, e.CreatedAt.Format("02/01/2006"))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) searchVault(chatID, keyword string) {
	if keyword == "" {
		h.reply(chatID, "🔍 Decime qué buscar: /bitacora buscar helado")
		return
	}

	entries, err := h.db.SearchVault(chatID, keyword)
	if err != nil {
		log.Printf("❌ Error al buscar en la bitácora de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude buscar en la bitácora.")
		return
	}
	if len(entries) == 0 {
		h.reply(chatID, fmt.Sprintf("🔍 No encontré notas con \"%s\".", keyword))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Notas con \"%s\":*\n\n", keyword)
	for _, e := range entries {
		fmt.Fprintf(&b, "• *#%d* %s _(%s)_\n", e.ID, utils.HighlightKeyword(e.Text, keyword), e.CreatedAt.Format("02/01/2006"))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) listVaultCategory(chatID, category string) {
	if category == "" {
		h.reply(chatID, "📓 Decime la categoría: /bitacora categoria compras")
		return
	}

	entries, err := h.db.GetVaultEntriesByCategory(chatID, utils.NormalizeForSearch(category))
	if err != nil {
		log.Printf("❌ Error al filtrar la bitácora de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude leer la bitácora.")
		return
	}
	if len(entries) == 0 {
		h.reply(chatID, fmt.Sprintf("📓 No hay notas en la categoría \"%s\".", category))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📓 *Notas de #%s:*\n\n", category)
	for _, e := range entries {
		fmt.Fprintf(&b, "• *#%d* %s _(%s)_\n", e.ID, e.Text, e.CreatedAt.Format("02/01/2006"))
	}
	h.reply(chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *CommandHandler) deleteVaultEntry(chatID, args string) {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.reply(chatID, "🗑 Decime el ID: /bitacora borrar 7")
		return
	}

	ok, err := h.db.DeleteVaultEntry(chatID, id)
	if err != nil {
		log.Printf("❌ Error al borrar nota #%d de %s: %v", id, chatID, err)
		h.reply(chatID, "❌ No pude borrar la nota, probá de nuevo.")
		return
	}
	if !ok {
		h.reply(chatID, fmt.Sprintf("🤷 No encontré una nota con ID #%d.", id))
		return
	}
	h.reply(chatID, fmt.Sprintf("🗑 Nota #%d borrada.", id))
}

// exportData genera el archivo de exportación y lo manda al chat
func (h *CommandHandler) exportData(chatID, args string) {
	if h.exporter == nil {
		h.reply(chatID, "📤 La exportación no está configurada.")
		return
	}

	format := strings.ToLower(strings.TrimSpace(args))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "txt" {
		h.reply(chatID, "📤 Formatos disponibles: /exportar pdf o /exportar txt")
		return
	}

	reminders, err := h.db.GetAllReminders(chatID)
	if err != nil {
		log.Printf("❌ Error al leer recordatorios para exportar de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude armar la exportación.")
		return
	}
	entries, err := h.db.GetAllVaultEntries(chatID)
	if err != nil {
		log.Printf("❌ Error al leer la bitácora para exportar de %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude armar la exportación.")
		return
	}
	if len(reminders) == 0 && len(entries) == 0 {
		h.reply(chatID, "📭 No hay nada para exportar todavía.")
		return
	}

	var path string
	if format == "pdf" {
		path, err = h.exporter.ExportPDF(chatID, reminders, entries)
	} else {
		path, err = h.exporter.ExportTXT(chatID, reminders, entries)
	}
	if err != nil {
		log.Printf("❌ Error al exportar para %s: %v", chatID, err)
		h.reply(chatID, "❌ No pude generar el archivo, probá de nuevo.")
		return
	}

	caption := fmt.Sprintf("📤 Exportación: %d recordatorios y %d notas", len(reminders), len(entries))
	if err := h.sender.SendDocument(chatID, path, caption); err != nil {
		log.Printf("❌ Error al mandar la exportación a %s: %v", chatID, err)
		h.reply(chatID, fmt.Sprintf("❌ Generé el archivo pero no pude mandarlo (%s).", filepath.Base(path)))
	}
}
