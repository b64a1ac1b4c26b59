package parser

import (
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// Zona horaria de referencia: todas las fechas del bot viven acá
const TimezoneName = "America/Argentina/Buenos_Aires"

// Location es la zona horaria cargada, lista para usar
var Location = mustLoadLocation()

func mustLoadLocation() *time.Location {
	loc, err := time.LoadLocation(TimezoneName)
	if err != nil {
		panic("no se pudo cargar la zona horaria " + TimezoneName + ": " + err.Error())
	}
	return loc
}

const (
	defaultHour = 9 // Hora por defecto cuando la frase no trae horario

	// Límite de meses hacia atrás al buscar fechas pasadas (/dia)
	pastScanMonths = 12
)

// Días de la semana en español (con y sin acento)
var weekdays = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
	"domingo":   time.Sunday,
}

// dateAt construye una fecha validando que el día exista en el calendario.
// time.Date normaliza desbordes (30/02 -> 02/03), acá eso es un error.
func dateAt(year int, month time.Month, day, hour, minute int) (time.Time, bool) {
	t := time.Date(year, month, day, hour, minute, 0, 0, Location)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func clockAt(base time.Time, hour, minute int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, Location)
}

// smartDayParse interpreta un día del mes ("el 20"). Si ya pasó este mes,
// avanza al próximo mes que tenga ese día.
func smartDayParse(day int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}

	if t, ok := dateAt(now.Year(), now.Month(), day, defaultHour, 0); ok && t.After(now) {
		return t, true
	}

	year, month := now.Year(), now.Month()
	for i := 0; i < 12; i++ {
		month++
		if month > 12 {
			month = 1
			year++
		}
		if t, ok := dateAt(year, month, day, defaultHour, 0); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// pastDayParse es la variante de /dia: el mes actual vale aunque la fecha ya
// haya pasado, y si el día no existe se busca hacia atrás.
func pastDayParse(day int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}

	year, month := now.Year(), now.Month()
	for i := 0; i <= pastScanMonths; i++ {
		if t, ok := dateAt(year, month, day, 0, 0); ok {
			return t, true
		}
		month--
		if month < 1 {
			month = 12
			year--
		}
	}
	return time.Time{}, false
}

// smartDateParse interpreta día/mes ("20/12"). Si ya pasó este año, usa el
// que viene.
func smartDateParse(day, month int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}

	t, ok := dateAt(now.Year(), time.Month(month), day, defaultHour, 0)
	if !ok {
		return time.Time{}, false
	}
	if !t.After(now) {
		return dateAt(now.Year()+1, time.Month(month), day, defaultHour, 0)
	}
	return t, true
}

// pastDateParse: día/mes para /dia, probando el año actual y si el día no
// existe en él (29/02), el anterior.
func pastDateParse(day, month int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}

	if t, ok := dateAt(now.Year(), time.Month(month), day, 0, 0); ok {
		return t, true
	}
	return dateAt(now.Year()-1, time.Month(month), day, 0, 0)
}

// smartHourParse interpreta una hora suelta ("a las 9") infiriendo AM/PM
// según el momento del día.
func smartHourParse(hour, minute int, now time.Time) (time.Time, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	// 13-23 ya es formato 24h, sin ambigüedad
	if hour >= 13 {
		t := clockAt(now, hour, minute)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}

	amHour, pmHour := hour, hour+12
	if hour == 12 {
		// "a las 12" se toma como mediodía
		amHour, pmHour = 12, 12
	}
	am := clockAt(now, amHour, minute)
	pm := clockAt(now, pmHour, minute)

	switch {
	// Madrugada: preferimos AM
	case now.Hour() < 6:
		if am.After(now) {
			return am, true
		}
		if pm.After(now) {
			return pm, true
		}
		return am.AddDate(0, 0, 1), true

	// Mañana: la próxima que quede en el futuro
	case now.Hour() < 12:
		if am.After(now) {
			return am, true
		}
		if pm.After(now) {
			return pm, true
		}
		return am.AddDate(0, 0, 1), true

	// Tarde/noche
	default:
		switch {
		case hour >= 6 && hour <= 11 && pm.After(now):
			return pm, true
		case hour >= 1 && hour <= 5:
			if pm.After(now) {
				return pm, true
			}
			return am.AddDate(0, 0, 1), true
		case hour == 12:
			if pm.After(now) {
				return pm, true
			}
			return am.AddDate(0, 0, 1), true
		default:
			if am.After(now) {
				return am, true
			}
			if pm.After(now) {
				return pm, true
			}
			return am.AddDate(0, 0, 1), true
		}
	}
}

// smartWeekdayDayParse interpreta "lunes 29": busca la fecha más cercana
// hacia adelante cuyo día del mes y día de semana coincidan.
func smartWeekdayDayParse(weekday string, day int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	target, ok := weekdays[strings.ToLower(weekday)]
	if !ok {
		return time.Time{}, false
	}

	year, month := now.Year(), now.Month()
	for i := 0; i <= 12; i++ {
		if t, ok := dateAt(year, month, day, defaultHour, 0); ok && t.Weekday() == target && t.After(now) {
			return t, true
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return time.Time{}, false
}

// pastWeekdayDayParse: variante de /dia, busca hacia atrás la coincidencia
// de día de semana + día del mes.
func pastWeekdayDayParse(weekday string, day int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	target, ok := weekdays[strings.ToLower(weekday)]
	if !ok {
		return time.Time{}, false
	}

	year, month := now.Year(), now.Month()
	for i := 0; i <= pastScanMonths; i++ {
		if t, ok := dateAt(year, month, day, 0, 0); ok && t.Weekday() == target {
			return t, true
		}
		month--
		if month < 1 {
			month = 12
			year--
		}
	}
	return time.Time{}, false
}

// smartNextWeekdayParse interpreta "lunes que viene": estrictamente la
// próxima ocurrencia, entre 1 y 7 días adelante aunque hoy sea ese día.
func smartNextWeekdayParse(weekday string, now time.Time) (time.Time, bool) {
	target, ok := weekdays[strings.ToLower(weekday)]
	if !ok {
		return time.Time{}, false
	}

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	if daysAhead <= 0 {
		daysAhead += 7
	}

	t := now.AddDate(0, 0, daysAhead)
	return clockAt(t, defaultHour, 0), true
}

// parseNatural delega en dateparser configurado para español con preferencia
// por fechas futuras. Devuelve false si el texto no es una fecha.
func parseNatural(text string, now time.Time) (time.Time, bool) {
	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		DefaultTimezone:     Location,
		PreferredDateSource: dateparser.Future,
		Languages:           []string{"es"},
	}

	dt, err := dateparser.Parse(cfg, text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return dt.Time.In(Location), true
}
