package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeFirst pone en mayúscula la primera letra preservando el resto
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// NormalizeForSearch normaliza texto para búsqueda: sin acentos, en minúsculas
func NormalizeForSearch(s string) string {
	return strings.ToLower(accentReplacer.Replace(s))
}

var nonWordRe = regexp.MustCompile(`[^\w]`)

// Palabras de pregunta y conectores que no aportan a la búsqueda
var stopWords = map[string]bool{
	"que": true, "quien": true, "donde": true, "cuando": true, "como": true,
	"por": true, "para": true, "le": true, "les": true, "me": true, "te": true,
	"se": true, "nos": true, "el": true, "la": true, "los": true, "las": true,
	"un": true, "una": true, "del": true, "de": true, "en": true, "con": true,
	"a": true, "y": true, "o": true, "pero": true, "si": true, "no": true,
	"mas": true, "muy": true, "tan": true, "tanto": true,
}

// ExtractSearchTerms extrae términos de búsqueda de preguntas conversacionales
// ("qué le gusta a Cindy?" -> ["cindy", "gusta"])
func ExtractSearchTerms(text string) []string {
	normalized := NormalizeForSearch(text)

	var terms []string
	for _, word := range strings.Fields(normalized) {
		clean := nonWordRe.ReplaceAllString(word, "")
		if len(clean) >= 3 && !stopWords[clean] {
			terms = append(terms, clean)
		}
	}
	return terms
}

// ParseReminderIDs interpreta IDs en varios formatos: "1,2,3", "1-5", "1 2 3"
func ParseReminderIDs(text string) []int64 {
	var ids []int64
	text = strings.TrimSpace(text)

	// Separados por coma: "1,2,3"
	if strings.Contains(text, ",") {
		for _, part := range strings.Split(text, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		return ids
	}

	// Rango: "1-5"
	if strings.Contains(text, "-") && len(strings.Fields(text)) == 1 {
		parts := strings.SplitN(text, "-", 2)
		start, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		end, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err1 == nil && err2 == nil && start <= end {
			for id := start; id <= end; id++ {
				ids = append(ids, id)
			}
			return ids
		}
	}

	// Separados por espacios: "1 2 3"
	for _, part := range strings.Fields(text) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// HighlightKeyword resalta la palabra buscada con negrita de WhatsApp
func HighlightKeyword(text, keyword string) string {
	if strings.Contains(text, "*") {
		// El texto ya trae formato, no lo tocamos
		return text
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(keyword))
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return "*" + m + "*"
	})
}

// SanitizePathComponent sanitiza una cadena para usarla en rutas de archivos
func SanitizePathComponent(s string) string {
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		s = strings.ReplaceAll(s, c, "_")
	}
	return s
}
