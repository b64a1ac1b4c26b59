package parser

import (
	"regexp"
	"strings"
)

// Categorías conocidas de recordatorios
const (
	CategoryGeneral         = "general"
	CategoryTrabajo         = "trabajo"
	CategorySalud           = "salud"
	CategoryPersonal        = "personal"
	CategoryCompras         = "compras"
	CategoryEntretenimiento = "entretenimiento"
	CategoryHogar           = "hogar"
)

// Sufijo explícito: "comprar pan (categoría: compras)"
var explicitCategoryRe = regexp.MustCompile(`(?i)\s*\(\s*categor[ií]a\s*:\s*([^)]+?)\s*\)\s*$`)

var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

// Vocabulario de palabras clave por categoría
var categoryKeywords = map[string][]string{
	CategoryTrabajo: {
		"reunion", "trabajo", "oficina", "jefe", "proyecto", "entrega",
		"informe", "presentacion", "cliente", "llamada", "mail", "correo",
	},
	CategorySalud: {
		"medico", "doctor", "turno", "dentista", "remedio", "pastilla",
		"medicamento", "analisis", "estudio", "hospital", "clinica", "vacuna",
	},
	CategoryCompras: {
		"comprar", "supermercado", "shopping", "pagar", "factura", "banco",
		"plata", "deposito", "transferencia", "compra",
	},
	CategoryEntretenimiento: {
		"pelicula", "cine", "serie", "partido", "juego", "cumpleanos",
		"fiesta", "salida", "asado", "cena", "almuerzo",
	},
	CategoryHogar: {
		"limpiar", "lavar", "cocinar", "arreglar", "plomero", "electricista",
		"alquiler", "expensas", "luz", "gas", "internet", "basura",
	},
	CategoryPersonal: {
		"llamar", "visitar", "escribir", "estudiar", "leer", "gimnasio",
		"entrenar", "correr", "mama", "papa", "abuela", "abuelo",
	},
}

// Orden de prioridad cuando varias categorías tienen palabras en el texto
var categoryOrder = []string{
	CategoryTrabajo, CategorySalud, CategoryCompras,
	CategoryHogar, CategoryEntretenimiento, CategoryPersonal,
}

func normalizeCategory(s string) string {
	return accentFold.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ExtractCategory saca la categoría del texto del recordatorio. Si viene un
// sufijo explícito "(categoría: X)" gana ese y se quita del texto; si no, se
// infiere por palabras clave. Devuelve el texto limpio y la categoría.
func ExtractCategory(text string) (string, string) {
	if m := explicitCategoryRe.FindStringSubmatch(text); m != nil {
		category := normalizeCategory(m[1])
		cleaned := strings.TrimSpace(explicitCategoryRe.ReplaceAllString(text, ""))
		if category == "" {
			category = CategoryGeneral
		}
		return cleaned, category
	}
	return text, InferCategory(text)
}

// InferCategory clasifica el texto por palabras clave; "general" si no hay
// ninguna coincidencia.
func InferCategory(text string) string {
	normalized := normalizeCategory(text)
	words := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		words[strings.Trim(w, ".,;:!?¡¿()\"'")] = true
	}

	best, bestScore := CategoryGeneral, 0
	for _, category := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[category] {
			if words[kw] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = category, score
		}
	}
	return best
}
