package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"recordatorio-bot/models"
	"recordatorio-bot/utils"
)

// Exporter genera los archivos de exportación de un chat
type Exporter struct {
	dir string
}

func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error al crear el directorio de exportaciones: %v", err)
	}
	return &Exporter{dir: dir}, nil
}

func (e *Exporter) outputPath(chatID, ext string) string {
	name := fmt.Sprintf("%s_%s_%s.%s",
		utils.SanitizePathComponent(strings.SplitN(chatID, "@", 2)[0]),
		time.Now().Format("2006-01-02"),
		uuid.New().String()[:8],
		ext)
	return filepath.Join(e.dir, name)
}

func statusLabel(s models.ReminderStatus) string {
	switch s {
	case models.ReminderStatusActive:
		return "pendiente"
	case models.ReminderStatusSent:
		return "enviado"
	case models.ReminderStatusCompleted:
		return "completado"
	case models.ReminderStatusCancelled:
		return "cancelado"
	default:
		return string(s)
	}
}

// ExportPDF arma un PDF con los recordatorios y la bitácora del chat
func (e *Exporter) ExportPDF(chatID string, reminders []models.Reminder, entries []models.VaultEntry) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Traductor para que los acentos salgan bien con las fuentes core
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Recordatorios y bitácora"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Recordatorios y bitácora"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generado el %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Recordatorios (%d)", len(reminders))), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if len(reminders) == 0 {
		pdf.CellFormat(0, 6, tr("No hay recordatorios."), "", 1, "L", false, 0, "")
	}
	for _, r := range reminders {
		flag := ""
		if r.IsImportant {
			flag = " [importante]"
		}
		line := fmt.Sprintf("#%d  %s — %s  [%s, %s]%s",
			r.ID, r.DueAt.Format("02/01/2006 15:04"), r.Text, r.Category, statusLabel(r.Status), flag)
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Bitácora (%d)", len(entries))), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if len(entries) == 0 {
		pdf.CellFormat(0, 6, tr("No hay notas."), "", 1, "L", false, 0, "")
	}
	for _, entry := range entries {
		line := fmt.Sprintf("#%d  %s — %s  [%s]",
			entry.ID, entry.CreatedAt.Format("02/01/2006"), entry.Text, entry.Category)
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	path := e.outputPath(chatID, "pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("error al escribir el PDF: %v", err)
	}
	return path, nil
}

// ExportTXT arma un volcado de texto plano
func (e *Exporter) ExportTXT(chatID string, reminders []models.Reminder, entries []models.VaultEntry) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "RECORDATORIOS Y BITÁCORA\nGenerado el %s\n\n", time.Now().Format("02/01/2006 15:04"))

	fmt.Fprintf(&b, "== Recordatorios (%d) ==\n", len(reminders))
	if len(reminders) == 0 {
		b.WriteString("No hay recordatorios.\n")
	}
	for _, r := range reminders {
		flag := ""
		if r.IsImportant {
			flag = " [importante]"
		}
		fmt.Fprintf(&b, "#%d  %s — %s  [%s, %s]%s\n",
			r.ID, r.DueAt.Format("02/01/2006 15:04"), r.Text, r.Category, statusLabel(r.Status), flag)
	}

	fmt.Fprintf(&b, "\n== Bitácora (%d) ==\n", len(entries))
	if len(entries) == 0 {
		b.WriteString("No hay notas.\n")
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "#%d  %s — %s  [%s]\n",
			entry.ID, entry.CreatedAt.Format("02/01/2006"), entry.Text, entry.Category)
	}

	path := e.outputPath(chatID, "txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("error al escribir el TXT: %v", err)
	}
	return path, nil
}
