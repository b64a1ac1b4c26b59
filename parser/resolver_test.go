package parser

import (
	"testing"
	"time"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, Location)
}

func TestDateAtRejectsInvalidDays(t *testing.T) {
	if _, ok := dateAt(2025, time.February, 30, 9, 0); ok {
		t.Error("30/02 no debería ser una fecha válida")
	}
	if _, ok := dateAt(2025, time.February, 29, 9, 0); ok {
		t.Error("29/02/2025 no debería ser válida, 2025 no es bisiesto")
	}
	if _, ok := dateAt(2024, time.February, 29, 9, 0); !ok {
		t.Error("29/02/2024 debería ser válida")
	}
}

func TestSmartDayParse(t *testing.T) {
	now := at(2025, time.January, 10, 20, 0)

	got, ok := smartDayParse(20, now)
	if !ok || !got.Equal(at(2025, time.January, 20, 9, 0)) {
		t.Errorf("día 20: esperaba 20/01 09:00, obtuve %v (ok=%v)", got, ok)
	}

	// El 5 ya pasó este mes, va al mes que viene
	got, ok = smartDayParse(5, now)
	if !ok || !got.Equal(at(2025, time.February, 5, 9, 0)) {
		t.Errorf("día 5: esperaba 05/02 09:00, obtuve %v (ok=%v)", got, ok)
	}

	// El 31 desde febrero saltea los meses cortos
	got, ok = smartDayParse(31, at(2025, time.February, 10, 12, 0))
	if !ok || !got.Equal(at(2025, time.March, 31, 9, 0)) {
		t.Errorf("día 31 desde febrero: esperaba 31/03, obtuve %v (ok=%v)", got, ok)
	}

	if _, ok := smartDayParse(0, now); ok {
		t.Error("día 0 debería fallar")
	}
	if _, ok := smartDayParse(32, now); ok {
		t.Error("día 32 debería fallar")
	}
}

func TestPastDayParse(t *testing.T) {
	now := at(2025, time.January, 10, 20, 0)

	// El mes actual vale aunque el día todavía no llegó
	got, ok := pastDayParse(25, now)
	if !ok || !got.Equal(at(2025, time.January, 25, 0, 0)) {
		t.Errorf("día 25: esperaba 25/01 00:00, obtuve %v (ok=%v)", got, ok)
	}

	// El 31 desde febrero busca hacia atrás
	got, ok = pastDayParse(31, at(2025, time.February, 10, 12, 0))
	if !ok || !got.Equal(at(2025, time.January, 31, 0, 0)) {
		t.Errorf("día 31 desde febrero: esperaba 31/01, obtuve %v (ok=%v)", got, ok)
	}
}

func TestSmartDateParse(t *testing.T) {
	// Fecha futura dentro del año
	got, ok := smartDateParse(20, 12, at(2025, time.January, 10, 20, 0))
	if !ok || !got.Equal(at(2025, time.December, 20, 9, 0)) {
		t.Errorf("20/12: esperaba 20/12/2025, obtuve %v (ok=%v)", got, ok)
	}

	// Ya pasó este año, va al siguiente
	got, ok = smartDateParse(20, 12, at(2025, time.December, 25, 10, 0))
	if !ok || !got.Equal(at(2026, time.December, 20, 9, 0)) {
		t.Errorf("20/12 pasado: esperaba 20/12/2026, obtuve %v (ok=%v)", got, ok)
	}

	if _, ok := smartDateParse(30, 2, at(2025, time.January, 10, 20, 0)); ok {
		t.Error("30/02 debería fallar")
	}
}

func TestSmartHourParse(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
		now    time.Time
		want   time.Time
	}{
		{"madrugada prefiere AM", 4, 0, at(2025, 3, 10, 3, 0), at(2025, 3, 10, 4, 0)},
		{"madrugada AM pasada usa PM", 2, 0, at(2025, 3, 10, 3, 0), at(2025, 3, 10, 14, 0)},
		{"mañana AM futura", 11, 30, at(2025, 3, 10, 10, 0), at(2025, 3, 10, 11, 30)},
		{"mañana AM pasada usa PM", 9, 0, at(2025, 3, 10, 10, 0), at(2025, 3, 10, 21, 0)},
		{"tarde hora 6-11 usa PM", 9, 0, at(2025, 3, 10, 20, 0), at(2025, 3, 10, 21, 0)},
		{"tarde hora 1-5 usa PM", 3, 0, at(2025, 3, 10, 14, 0), at(2025, 3, 10, 15, 0)},
		{"tarde hora 1-5 pasada va a AM de mañana", 2, 0, at(2025, 3, 10, 15, 0), at(2025, 3, 11, 2, 0)},
		{"las 12 es mediodía", 12, 0, at(2025, 3, 10, 10, 0), at(2025, 3, 10, 12, 0)},
		{"las 12 pasada va al mediodía de mañana", 12, 0, at(2025, 3, 10, 13, 0), at(2025, 3, 11, 12, 0)},
		{"formato 24h directo", 18, 30, at(2025, 3, 10, 10, 0), at(2025, 3, 10, 18, 30)},
		{"formato 24h pasado rueda un día", 18, 0, at(2025, 3, 10, 20, 0), at(2025, 3, 11, 18, 0)},
		{"noche PM pasada rueda a AM de mañana", 9, 0, at(2025, 3, 10, 22, 0), at(2025, 3, 11, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := smartHourParse(tt.hour, tt.minute, tt.now)
			if !ok {
				t.Fatalf("smartHourParse(%d, %d) falló", tt.hour, tt.minute)
			}
			if !got.Equal(tt.want) {
				t.Errorf("smartHourParse(%d:%02d, now=%v) = %v, esperaba %v",
					tt.hour, tt.minute, tt.now, got, tt.want)
			}
		})
	}

	if _, ok := smartHourParse(24, 0, at(2025, 3, 10, 10, 0)); ok {
		t.Error("hora 24 debería fallar")
	}
}

func TestSmartWeekdayDayParse(t *testing.T) {
	now := at(2025, time.January, 10, 20, 0) // viernes

	// 13/01/2025 es lunes
	got, ok := smartWeekdayDayParse("lunes", 13, now)
	if !ok || !got.Equal(at(2025, time.January, 13, 9, 0)) {
		t.Errorf("lunes 13: esperaba 13/01, obtuve %v (ok=%v)", got, ok)
	}

	// El primer martes 13 después de enero 2025 es el 13/05/2025
	got, ok = smartWeekdayDayParse("martes", 13, now)
	if !ok || !got.Equal(at(2025, time.May, 13, 9, 0)) {
		t.Errorf("martes 13: esperaba 13/05, obtuve %v (ok=%v)", got, ok)
	}

	if _, ok := smartWeekdayDayParse("marzo", 13, now); ok {
		t.Error("un nombre que no es día de semana debería fallar")
	}
}

func TestPastWeekdayDayParse(t *testing.T) {
	now := at(2025, time.January, 10, 20, 0)

	// Hacia atrás: el viernes 13 más reciente es el 13/12/2024
	got, ok := pastWeekdayDayParse("viernes", 13, now)
	if !ok || !got.Equal(at(2024, time.December, 13, 0, 0)) {
		t.Errorf("viernes 13: esperaba 13/12/2024, obtuve %v (ok=%v)", got, ok)
	}
}

func TestSmartNextWeekdayParse(t *testing.T) {
	now := at(2025, time.January, 10, 20, 0) // viernes

	// El mismo día de semana salta a la semana que viene
	got, ok := smartNextWeekdayParse("viernes", now)
	if !ok || !got.Equal(at(2025, time.January, 17, 9, 0)) {
		t.Errorf("viernes que viene: esperaba 17/01, obtuve %v (ok=%v)", got, ok)
	}

	got, ok = smartNextWeekdayParse("sábado", now)
	if !ok || !got.Equal(at(2025, time.January, 11, 9, 0)) {
		t.Errorf("sábado que viene: esperaba 11/01, obtuve %v (ok=%v)", got, ok)
	}

	// Sin acento también vale
	got, ok = smartNextWeekdayParse("miercoles", now)
	if !ok || !got.Equal(at(2025, time.January, 15, 9, 0)) {
		t.Errorf("miercoles que viene: esperaba 15/01, obtuve %v (ok=%v)", got, ok)
	}
}
