package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultPayload se usa cuando el mensaje es solo una fecha
const DefaultPayload = "recordatorio"

var (
	commandRe    = regexp.MustCompile(`(?i)^/(?:recordar|importante)\b\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Palabras de pedido que se quitan del mensaje (las de varias palabras van primero)
	requestWordRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhaceme\s+acordar\b`),
		regexp.MustCompile(`(?i)\brecordame\b`),
		regexp.MustCompile(`(?i)\brecordar\b`),
		regexp.MustCompile(`(?i)\bavisame\b`),
		regexp.MustCompile(`(?i)\baviso\b`),
		regexp.MustCompile(`(?i)\bacordar\b`),
	}

	leadingConjRe = regexp.MustCompile(`(?i)^(?:de que|que|de)\s+`)

	// "antes de las 5": una hora antes, anclado a hoy o mañana
	antesRe    = regexp.MustCompile(`(?i)\bantes\s+de\s+las?\s+(\d{1,2})(?::\d{2})?\b(?:\s+de\s+la\s+(?:mañana|tarde|noche)\b)?`)
	tomorrowRe = regexp.MustCompile(`(?i)\bmañana\b`)
	todayRe    = regexp.MustCompile(`(?i)\bhoy\b`)
	tardeRe    = regexp.MustCompile(`(?i)\btarde\b`)

	// Segunda pasada: hora suelta que acompaña a una fecha ya resuelta.
	// Grupos: 1 hora, 2 minutos, 3 parte del día (cuando existen).
	mergeHourRe  = regexp.MustCompile(`(?i)\ba\s*las?\s+(\d{1,2})(?::(\d{2}))?\s*(?:hs?)?\b(?:\s+de\s+la\s+(mañana|tarde|noche)\b)?`)
	mergeClockRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	mergeHsRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*hs?\b`)
)

// dateClass es una clase de patrón de fecha con prioridad fija
type dateClass struct {
	re       *regexp.Regexp
	resolve  func(m []string, now time.Time) (time.Time, bool)
	noFollow string // el match se descarta si lo sigue alguno de estos caracteres
	hasTime  bool   // la clase ya resuelve la hora, no hace falta la segunda pasada
}

var dateClasses = []dateClass{
	// "lunes 29" o "el lunes 29"
	{
		re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\s+(\d{1,2})\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			day, _ := strconv.Atoi(m[2])
			return smartWeekdayDayParse(m[1], day, now)
		},
	},
	// "lunes que viene"
	{
		re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\s+que\s+viene\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			return smartNextWeekdayParse(m[1], now)
		},
	},
	// "el 20" (día del mes actual o siguiente)
	{
		re:       regexp.MustCompile(`(?i)\bel\s+(\d{1,2})\b`),
		noFollow: "/-:",
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			day, _ := strconv.Atoi(m[1])
			return smartDayParse(day, now)
		},
	},
	// "20/12" (día/mes del año actual o siguiente)
	{
		re:       regexp.MustCompile(`(?i)\b(?:el\s+)?(\d{1,2})[/\-](\d{1,2})\b`),
		noFollow: "/-:",
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			return smartDateParse(day, month, now)
		},
	},
	// "9 de la mañana", "5 de la tarde"
	{
		re:      regexp.MustCompile(`(?i)\b(?:a\s+las?\s+)?(\d{1,2})(?::(\d{2}))?(?:\s*hs?)?\s+de\s+la\s+(mañana|tarde|noche)\b`),
		hasTime: true,
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			hour, _ := strconv.Atoi(m[1])
			minute := 0
			if m[2] != "" {
				minute, _ = strconv.Atoi(m[2])
			}
			if (m[3] == "tarde" || m[3] == "noche") && hour < 12 {
				hour += 12
			}
			if hour > 23 || minute > 59 {
				return time.Time{}, false
			}
			t := clockAt(now, hour, minute)
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		},
	},
	// "hoy", "mañana", "pasado mañana"
	{
		re: regexp.MustCompile(`(?i)\b(pasado\s+mañana|mañana|hoy)\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			switch {
			case strings.HasPrefix(strings.ToLower(m[1]), "pasado"):
				return clockAt(now.AddDate(0, 0, 2), defaultHour, 0), true
			case strings.EqualFold(m[1], "mañana"):
				return clockAt(now.AddDate(0, 0, 1), defaultHour, 0), true
			default:
				return clockAt(now, defaultHour, 0), true
			}
		},
	},
	// día de semana solo: "el viernes"
	{
		re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			return smartNextWeekdayParse(m[1], now)
		},
	},
	// "a las 9" (inferencia AM/PM según la hora actual)
	{
		re:      regexp.MustCompile(`(?i)\ba\s*las?\s+(\d{1,2})(?::(\d{2}))?\s*(?:hs?)?\b`),
		hasTime: true,
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			hour, _ := strconv.Atoi(m[1])
			minute := 0
			if m[2] != "" {
				minute, _ = strconv.Atoi(m[2])
			}
			return smartHourParse(hour, minute, now)
		},
	},
	// fecha completa "20/12/2025" con hora opcional
	{
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b(?:\s+(\d{1,2}):(\d{2})\b)?`),
		hasTime: true,
		resolve: resolveFullDate,
	},
	// fecha ISO "2025-09-20 09:30"
	{
		re:      regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b(?:\s+(\d{1,2}):(\d{2})\b)?`),
		hasTime: true,
		resolve: resolveISODate,
	},
	// hora suelta "18:30"
	{
		re:      regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		hasTime: true,
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			if hour > 23 || minute > 59 {
				return time.Time{}, false
			}
			t := clockAt(now, hour, minute)
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		},
	},
}

// Offsets relativos: "en 30 minutos", "en 2 horas", "en 3 días"
var relativeClasses = []struct {
	re   *regexp.Regexp
	unit time.Duration
}{
	{regexp.MustCompile(`(?i)\ben\s+(\d+)\s*m(?:in(?:utos?)?)?\b`), time.Minute},
	{regexp.MustCompile(`(?i)\ben\s+(\d+)\s*h(?:oras?)?\b`), time.Hour},
	{regexp.MustCompile(`(?i)\ben\s+(\d+)\s*d(?:[ií]as?)?\b`), 24 * time.Hour},
}

func resolveFullDate(m []string, now time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	hour, minute := defaultHour, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return dateAt(year, time.Month(month), day, hour, minute)
}

func resolveISODate(m []string, now time.Time) (time.Time, bool) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, minute := defaultHour, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return dateAt(year, time.Month(month), day, hour, minute)
}

// HasRequestWord dice si el texto trae alguna palabra de pedido de
// recordatorio (recordame, avisame, haceme acordar, etc.)
func HasRequestWord(text string) bool {
	for _, re := range requestWordRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// matchClass busca la clase en el texto. El match se descarta si el
// carácter siguiente indica que forma parte de una fecha u hora más larga.
func matchClass(c dateClass, text string) (start, end int, groups []string, ok bool) {
	idx := c.re.FindStringSubmatchIndex(text)
	if idx == nil {
		return 0, 0, nil, false
	}
	start, end = idx[0], idx[1]
	if c.noFollow != "" && end < len(text) && strings.ContainsRune(c.noFollow, rune(text[end])) {
		return 0, 0, nil, false
	}
	groups = make([]string, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] >= 0 {
			groups[i/2] = text[idx[i]:idx[i+1]]
		}
	}
	return start, end, groups, true
}

func removeSpan(text string, start, end int) string {
	return collapse(text[:start] + " " + text[end:])
}

// CleanPayload limpia el texto restante de un recordatorio: saca la
// conjunción inicial y colapsa espacios. Es idempotente sobre texto limpio.
func CleanPayload(s string) string {
	s = collapse(s)
	s = strings.TrimSpace(leadingConjRe.ReplaceAllString(s, ""))
	if s == "" {
		return DefaultPayload
	}
	return s
}

// mergeHourOfDay busca una hora suelta en el resto del texto y la aplica
// sobre la fecha ya resuelta, reemplazando solo la hora y los minutos.
func mergeHourOfDay(resolved time.Time, remainder string) (time.Time, string) {
	for _, re := range []*regexp.Regexp{mergeHourRe, mergeClockRe, mergeHsRe} {
		idx := re.FindStringSubmatchIndex(remainder)
		if idx == nil {
			continue
		}
		group := func(n int) string {
			if 2*n+1 >= len(idx) || idx[2*n] < 0 {
				return ""
			}
			return remainder[idx[2*n]:idx[2*n+1]]
		}

		hour, _ := strconv.Atoi(group(1))
		minute := 0
		if group(2) != "" {
			minute, _ = strconv.Atoi(group(2))
		}
		dayPart := strings.ToLower(group(3))
		if hour > 23 || minute > 59 {
			continue
		}

		switch {
		case (dayPart == "tarde" || dayPart == "noche") && hour < 12:
			resolved = clockAt(resolved, hour+12, minute)
		case dayPart != "" || hour > 12:
			resolved = clockAt(resolved, hour, minute)
		default:
			// La referencia es la medianoche del día resuelto: de ahí en
			// adelante cualquier hora es futura y se prefiere AM
			midnight := clockAt(resolved, 0, 0)
			if t, ok := smartHourParse(hour, minute, midnight); ok {
				resolved = clockAt(resolved, t.Hour(), t.Minute())
			}
		}
		return resolved, removeSpan(remainder, idx[0], idx[1])
	}
	return resolved, remainder
}

// ExtractDateAndText separa la fecha/hora del texto del recordatorio.
// Devuelve ok=false cuando no se reconoce ninguna fecha.
func ExtractDateAndText(raw string, now time.Time) (time.Time, string, bool) {
	text := strings.TrimSpace(raw)
	text = commandRe.ReplaceAllString(text, "")
	for _, re := range requestWordRes {
		text = re.ReplaceAllString(text, " ")
	}
	text = collapse(text)
	if text == "" {
		return time.Time{}, "", false
	}

	// "antes de las X": una hora antes, anclado a hoy o mañana
	if idx := antesRe.FindStringSubmatchIndex(text); idx != nil {
		hour, _ := strconv.Atoi(text[idx[2]:idx[3]])
		if tardeRe.MatchString(text) && hour <= 12 {
			hour += 12
		}
		base := now
		if m := tomorrowRe.FindStringIndex(text); m != nil && (m[0] < idx[0] || m[0] > idx[1]) {
			base = now.AddDate(0, 0, 1)
			text = removeSpan(text, m[0], m[1])
			idx = antesRe.FindStringSubmatchIndex(text)
		} else if m := todayRe.FindStringIndex(text); m != nil && (m[0] < idx[0] || m[0] > idx[1]) {
			text = removeSpan(text, m[0], m[1])
			idx = antesRe.FindStringSubmatchIndex(text)
		}
		if idx != nil && hour >= 1 && hour <= 24 {
			resolved := clockAt(base, hour-1, 0)
			return resolved, CleanPayload(removeSpan(text, idx[0], idx[1])), true
		}
	}

	// Los offsets relativos cortan antes que cualquier otra clase
	for _, rc := range relativeClasses {
		idx := rc.re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}
		n, _ := strconv.Atoi(text[idx[2]:idx[3]])
		resolved := now.Add(time.Duration(n) * rc.unit)
		return resolved, CleanPayload(removeSpan(text, idx[0], idx[1])), true
	}

	// Clases de patrones en orden estricto de prioridad: gana la primera
	// cuyo regex matchea Y cuyo resolver devuelve una fecha válida
	for _, c := range dateClasses {
		start, end, groups, ok := matchClass(c, text)
		if !ok {
			continue
		}
		resolved, ok := c.resolve(groups, now)
		if !ok {
			continue
		}
		remainder := removeSpan(text, start, end)
		if !c.hasTime {
			resolved, remainder = mergeHourOfDay(resolved, remainder)
		}
		return resolved, CleanPayload(remainder), true
	}

	// Último recurso: el texto entero es una fecha
	if resolved, ok := parseNatural(text, now); ok {
		return resolved, DefaultPayload, true
	}

	return time.Time{}, "", false
}

// ResolveDateOnly interpreta una fecha para consultas tipo /dia, donde las
// fechas pasadas son válidas: no se avanza al futuro y la búsqueda de
// coincidencias día/semana va hacia atrás (hasta 12 meses).
func ResolveDateOnly(raw string, now time.Time) (time.Time, bool) {
	text := collapse(strings.TrimSpace(raw))
	if text == "" {
		return time.Time{}, false
	}

	type pastClass struct {
		re       *regexp.Regexp
		resolve  func(m []string) (time.Time, bool)
		noFollow string
	}

	classes := []pastClass{
		{
			re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\s+(\d{1,2})\b`),
			resolve: func(m []string) (time.Time, bool) {
				day, _ := strconv.Atoi(m[2])
				return pastWeekdayDayParse(m[1], day, now)
			},
		},
		{
			re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\s+que\s+viene\b`),
			resolve: func(m []string) (time.Time, bool) {
				return smartNextWeekdayParse(m[1], now)
			},
		},
		{
			re: regexp.MustCompile(`(?i)\b(ayer|pasado\s+mañana|mañana|hoy)\b`),
			resolve: func(m []string) (time.Time, bool) {
				switch {
				case strings.EqualFold(m[1], "ayer"):
					return now.AddDate(0, 0, -1), true
				case strings.HasPrefix(strings.ToLower(m[1]), "pasado"):
					return now.AddDate(0, 0, 2), true
				case strings.EqualFold(m[1], "mañana"):
					return now.AddDate(0, 0, 1), true
				default:
					return now, true
				}
			},
		},
		{
			re: regexp.MustCompile(`(?i)\b(?:el\s+)?(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\b`),
			resolve: func(m []string) (time.Time, bool) {
				return smartNextWeekdayParse(m[1], now)
			},
		},
		{
			re:      regexp.MustCompile(`(?i)\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`),
			resolve: func(m []string) (time.Time, bool) { return resolveFullDate(m, now) },
		},
		{
			re:       regexp.MustCompile(`(?i)\b(?:el\s+)?(\d{1,2})[/\-](\d{1,2})\b`),
			noFollow: "/-:",
			resolve: func(m []string) (time.Time, bool) {
				day, _ := strconv.Atoi(m[1])
				month, _ := strconv.Atoi(m[2])
				return pastDateParse(day, month, now)
			},
		},
		{
			re:       regexp.MustCompile(`(?i)\b(?:el\s+)?(\d{1,2})\b`),
			noFollow: "/-:",
			resolve: func(m []string) (time.Time, bool) {
				day, _ := strconv.Atoi(m[1])
				return pastDayParse(day, now)
			},
		},
	}

	for _, c := range classes {
		idx := c.re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}
		if c.noFollow != "" && idx[1] < len(text) && strings.ContainsRune(c.noFollow, rune(text[idx[1]])) {
			continue
		}
		groups := make([]string, len(idx)/2)
		for i := 0; i < len(idx); i += 2 {
			if idx[i] >= 0 {
				groups[i/2] = text[idx[i]:idx[i+1]]
			}
		}
		if t, ok := c.resolve(groups); ok {
			return startOfDay(t), true
		}
	}

	if t, ok := parseNatural(text, now); ok {
		return startOfDay(t), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
