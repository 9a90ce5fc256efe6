// Package pdf genera el reporte de existencias en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                     │  Fecha de generación  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Cantidad | Unidad | Depto | Vence   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Departamento | Productos | Cantidad | Unidades     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/dto"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ report.StockReportRenderer = (*StockReportGenerator)(nil)

// StockReportGenerator implementa report.StockReportRenderer usando Maroto v2.
type StockReportGenerator struct {
	author string
}

// NewStockReportGenerator construye el generador. author se guarda en los metadatos del PDF.
func NewStockReportGenerator(author string) *StockReportGenerator {
	return &StockReportGenerator{author: author}
}

// RenderStockReport genera el PDF y devuelve sus bytes.
func (g *StockReportGenerator) RenderStockReport(_ context.Context, r dto.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.Title, true).
		WithAuthor(nonEmpty(g.author, "inventario"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(productsHeaderRow())
	m.AddRows(productRows(r.Products)...)
	if len(r.Products) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin productos registrados", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
		)))
	}

	m.AddRows(line.NewRow(4, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(locationsHeaderRow())
	m.AddRows(locationRows(r.Locations)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r dto.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(r.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d productos", len(r.Products)), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

func productsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("SKU", 1, align.Left),
		headerCell("Producto", 4, align.Left),
		headerCell("Cantidad", 2, align.Right),
		headerCell("Unidad", 1, align.Left),
		headerCell("Departamento", 2, align.Left),
		headerCell("Vence", 2, align.Center),
	)
}

// productRows: una fila por producto, en el orden del catálogo.
func productRows(products []dto.ProductRow) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	rows := make([]core.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row.New(6).Add(
			cell(p.SKU, 1, align.Left),
			cell(p.Name, 4, align.Left),
			cell(p.Quantity, 2, align.Right),
			cell(p.Unit, 1, align.Left),
			cell(nonEmpty(p.Location, "-"), 2, align.Left),
			cell(nonEmpty(p.Expiry, "-"), 2, align.Center),
		))
	}
	return rows
}

func locationsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Departamento", 5, align.Left),
		headerCell("Productos", 2, align.Right),
		headerCell("Cantidad total", 3, align.Right),
		headerCell("Unidades", 2, align.Right),
	)
}

func locationRows(stats []dto.LocationStatsResponse) []core.Row {
	rows := make([]core.Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, row.New(6).Add(
			col.New(5).Add(text.New(nonEmpty(s.Location, "Sin departamento"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.Itoa(s.ProductCount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(s.TotalQuantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(strconv.Itoa(s.DistinctUnits), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
