// Package pdf genera el reporte PDF del catálogo (categorías y productos) que la
// consola exporta con el comando report.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + generado por  │  Fecha                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CATEGORÍAS: Nombre | Descripción | Productos | Estado       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PRODUCTOS: Nombre | Categoría | Precio | Desc | Final | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: activos / valor de inventario + QR de la API       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// CatalogData lo que entra en el reporte.
type CatalogData struct {
	GeneratedBy string    // nombre del usuario de la sesión
	GeneratedAt time.Time // cero = ahora
	Source      string    // URL de la API; si no está vacía se imprime como QR
	Categories  []dto.CategoryResponse
	Products    []dto.ProductResponse
}

// Summary totales del reporte.
type Summary struct {
	ActiveProducts int
	InventoryValue decimal.Decimal // Σ precio final × stock de productos activos
}

// Summarize calcula el resumen; el precio final se recalcula desde price y discount.
func Summarize(products []dto.ProductResponse) Summary {
	s := Summary{InventoryValue: decimal.Zero}
	for _, p := range products {
		if !p.Active {
			continue
		}
		s.ActiveProducts++
		final := catalog.EffectivePrice(p.Price, p.Discount)
		s.InventoryValue = s.InventoryValue.Add(final.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return s
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoCatalogReport genera el reporte con Maroto v2.
type MarotoCatalogReport struct{}

// NewMarotoCatalogReport construye el generador.
func NewMarotoCatalogReport() *MarotoCatalogReport { return &MarotoCatalogReport{} }

// GenerateCatalogPDF genera el PDF y devuelve sus bytes.
func (g *MarotoCatalogReport) GenerateCatalogPDF(_ context.Context, data CatalogData) ([]byte, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Catálogo Supermarket", true).
		WithAuthor(nonEmpty(data.GeneratedBy, "Supermarket"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow(fmt.Sprintf("CATEGORÍAS (%d)", len(data.Categories))))
	m.AddRows(categoryHeaderRow())
	m.AddRows(categoryRows(data.Categories)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionRow(fmt.Sprintf("PRODUCTOS (%d)", len(data.Products))))
	m.AddRows(productHeaderRow())
	m.AddRows(productRows(data.Products, categoryNames(data.Categories))...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(Summarize(data.Products), data.Source))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data CatalogData) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Catálogo Supermarket", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado por: "+nonEmpty(data.GeneratedBy, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Fecha: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
	))
}

type column struct {
	label string
	size  int
	align align.Type
}

var (
	categoryColumns = []column{
		{"Nombre", 3, align.Left},
		{"Descripción", 5, align.Left},
		{"Productos", 2, align.Center},
		{"Estado", 2, align.Center},
	}
	productColumns = []column{
		{"Nombre", 3, align.Left},
		{"Categoría", 2, align.Left},
		{"Precio", 2, align.Right},
		{"Desc.", 1, align.Center},
		{"Final", 2, align.Right},
		{"Stock", 1, align.Center},
		{"Estado", 1, align.Center},
	}
)

// tableHeader cabecera de tabla con texto blanco sobre fondo primario.
func tableHeader(cols []column) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(out...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRow(cols []column, values ...string) core.Row {
	out := make([]core.Col, 0, len(cols))
	for i, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(values[i], props.Text{
			Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(out...)
}

func categoryHeaderRow() core.Row { return tableHeader(categoryColumns) }

func productHeaderRow() core.Row { return tableHeader(productColumns) }

func categoryRows(items []dto.CategoryResponse) []core.Row {
	if len(items) == 0 {
		return []core.Row{emptyRow("No hay categorías registradas")}
	}
	rows := make([]core.Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, tableRow(categoryColumns,
			c.Name, c.Description, fmt.Sprintf("%d", c.NumberOfProducts), catalog.StatusLabel(c.Active)))
	}
	return rows
}

func productRows(items []dto.ProductResponse, names map[string]string) []core.Row {
	if len(items) == 0 {
		return []core.Row{emptyRow("No hay productos registrados")}
	}
	rows := make([]core.Row, 0, len(items))
	for _, p := range items {
		rows = append(rows, tableRow(productColumns,
			p.Name,
			nonEmpty(names[p.CategoryID], p.CategoryID),
			formatMoney(p.Price),
			fmt.Sprintf("%d%%", p.Discount),
			formatMoney(catalog.EffectivePrice(p.Price, p.Discount)),
			fmt.Sprintf("%d", p.Stock),
			catalog.StatusLabel(p.Active),
		))
	}
	return rows
}

func emptyRow(msg string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
	))
}

// summaryRow totales a la izquierda y, si hay Source, su QR a la derecha.
func summaryRow(s Summary, source string) core.Row {
	totals := col.New(8).Add(
		text.New(fmt.Sprintf("Productos activos: %d", s.ActiveProducts), props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2,
		}),
		text.New("Valor de inventario: "+formatMoney(s.InventoryValue), props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 8,
		}),
	)
	if source == "" {
		return row.New(18).Add(totals, col.New(4))
	}
	return row.New(30).Add(
		totals,
		col.New(4).Add(code.NewQr(source, props.Rect{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func categoryNames(items []dto.CategoryResponse) map[string]string {
	names := make(map[string]string, len(items))
	for _, c := range items {
		names[c.ID] = c.Name
	}
	return names
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney dos decimales con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", 1234.5 → "1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
