package parser

import "testing"

func TestExtractCategoryExplicit(t *testing.T) {
	text, category := ExtractCategory("comprar pan (categoría: compras)")
	if text != "comprar pan" {
		t.Errorf("texto: obtuve %q", text)
	}
	if category != CategoryCompras {
		t.Errorf("categoría: obtuve %q, esperaba %q", category, CategoryCompras)
	}

	// Sin acento y con mayúsculas también vale
	text, category = ExtractCategory("turno (Categoria: SALUD)")
	if text != "turno" || category != CategorySalud {
		t.Errorf("obtuve (%q, %q)", text, category)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"reunión con el jefe en la oficina", CategoryTrabajo},
		{"turno con el médico", CategorySalud},
		{"comprar leche en el supermercado", CategoryCompras},
		{"pagar las expensas y la luz", CategoryHogar},
		{"asado con los pibes", CategoryEntretenimiento},
		{"llamar a la abuela", CategoryPersonal},
		{"algo sin palabras conocidas", CategoryGeneral},
	}
	for _, tt := range tests {
		if got := InferCategory(tt.text); got != tt.want {
			t.Errorf("InferCategory(%q) = %q, esperaba %q", tt.text, got, tt.want)
		}
	}
}

func TestInferCategoryPrioridad(t *testing.T) {
	// Con empate gana la categoría de mayor prioridad (trabajo antes que compras)
	if got := InferCategory("comprar un regalo para el jefe"); got != CategoryTrabajo {
		t.Errorf("obtuve %q, esperaba %q", got, CategoryTrabajo)
	}
}
