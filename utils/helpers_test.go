package utils

import (
	"reflect"
	"testing"
)

func TestCapitalizeFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"comprar pan", "Comprar pan"},
		{"ñoquis el 29", "Ñoquis el 29"},
		{"", ""},
		{"Ya está", "Ya está"},
	}
	for _, tt := range tests {
		if got := CapitalizeFirst(tt.in); got != tt.want {
			t.Errorf("CapitalizeFirst(%q) = %q, esperaba %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeForSearch(t *testing.T) {
	if got := NormalizeForSearch("Médico Mañana"); got != "medico manana" {
		t.Errorf("obtuve %q", got)
	}
}

func TestExtractSearchTerms(t *testing.T) {
	terms := ExtractSearchTerms("¿Qué le gusta a Cindy?")
	want := []string{"gusta", "cindy"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("obtuve %v, esperaba %v", terms, want)
	}

	// Solo palabras vacías: no hay términos
	if terms := ExtractSearchTerms("¿que es?"); len(terms) != 0 {
		t.Errorf("esperaba sin términos, obtuve %v", terms)
	}
}

func TestParseReminderIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []int64
	}{
		{"3", []int64{3}},
		{"1,2,5", []int64{1, 2, 5}},
		{"1-4", []int64{1, 2, 3, 4}},
		{"1 2 3", []int64{1, 2, 3}},
		{"nada", nil},
		{"5-2", nil},
	}
	for _, tt := range tests {
		if got := ParseReminderIDs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseReminderIDs(%q) = %v, esperaba %v", tt.in, got, tt.want)
		}
	}
}

func TestHighlightKeyword(t *testing.T) {
	if got := HighlightKeyword("turno con el médico", "médico"); got != "turno con el *médico*" {
		t.Errorf("obtuve %q", got)
	}
	// Texto con formato previo no se toca
	if got := HighlightKeyword("ya *resaltado*", "resaltado"); got != "ya *resaltado*" {
		t.Errorf("obtuve %q", got)
	}
}
