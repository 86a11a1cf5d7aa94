// Package catalog contiene las reglas del catálogo compartidas por la API y la consola:
// patrón de nombres, rangos numéricos y precio efectivo.
package catalog

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Rangos numéricos de producto.
const (
	MinDiscount = 0
	MaxDiscount = 100
	MinStock    = 0
)

// namePattern letras (cualquier alfabeto), dígitos, espacio, apóstrofo y guion.
var namePattern = regexp.MustCompile(`^[\p{L}\p{N}' -]+$`)

// ValidName informa si s solo contiene caracteres permitidos.
// Se normaliza a NFC antes de evaluar: "Café" (e + acento combinante) equivale a "Café".
func ValidName(s string) bool {
	return namePattern.MatchString(norm.NFC.String(s))
}

// Blank informa si s está vacío o solo tiene espacios.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidPrice precio estrictamente positivo.
func ValidPrice(p decimal.Decimal) bool {
	return p.GreaterThan(decimal.Zero)
}

// ValidDiscount descuento porcentual en [0,100].
func ValidDiscount(d int) bool {
	return d >= MinDiscount && d <= MaxDiscount
}

// ValidStock stock no negativo.
func ValidStock(s int) bool {
	return s >= MinStock
}

// Etiquetas de estado mostradas en tablas y reportes.
const (
	LabelActive   = "Activo"
	LabelInactive = "Inactivo"
)

// StatusLabel etiqueta del flag active.
func StatusLabel(active bool) string {
	if active {
		return LabelActive
	}
	return LabelInactive
}
