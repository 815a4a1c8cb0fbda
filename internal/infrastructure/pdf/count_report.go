// Package pdf genera el informe PDF de un inventario físico.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + empresa    │  Fecha + estado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total | Coinciden | Con diferencia | Sin contar    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | SKU | Esperado | Contado | Dif. | Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id del inventario + firma                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

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

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.CountReportRenderer = (*CountReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// CountReportGenerator implementa inventory.CountReportRenderer usando Maroto v2.
type CountReportGenerator struct {
	company string
}

// NewCountReportGenerator construye el generador. company aparece en la cabecera.
func NewCountReportGenerator(company string) *CountReportGenerator {
	return &CountReportGenerator{company: company}
}

// RenderCountReport genera el PDF y devuelve sus bytes.
func (g *CountReportGenerator) RenderCountReport(archive *entity.CountArchive) ([]byte, error) {
	if archive == nil {
		return nil, fmt.Errorf("pdf: inventario vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Inventario físico", true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(archive, g.company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(archive))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(archive.Lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(archive))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(archive *entity.CountArchive, company string) core.Row {
	state := "GUARDADO (sin aplicar)"
	if archive.Committed {
		state = "CONFIRMADO"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("INVENTARIO FÍSICO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(company, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Fecha: "+archive.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(state, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 8,
			}),
		),
	)
}

func summaryRow(archive *entity.CountArchive) core.Row {
	cell := func(label string, n int, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(strconv.Itoa(n), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: c, Top: 5}),
		)
	}
	return row.New(14).Add(
		cell("Total productos", archive.Total, colorPrimary),
		cell("Coinciden", archive.Matched, colorGreen),
		cell("Con diferencia", archive.Differing, colorRed),
		cell("Sin contar", archive.Pending, colorGray),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("SKU", 2, align.Left),
		h("Esperado", 1, align.Right),
		h("Contado", 1, align.Right),
		h("Dif.", 1, align.Right),
		h("Estado", 3, align.Center),
	)
}

// tableLineRows: una fila por línea; las diferencias en rojo.
func tableLineRows(lines []entity.CountLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		diffColor := colorGray
		counted, diff := "-", "-"
		if l.State != entity.CountLinePending {
			counted = strconv.Itoa(l.Counted)
			diff = signed(l.Difference())
			if l.State == entity.CountLineDiffering {
				diffColor = colorRed
			}
		}
		result = append(result, row.New(6).Add(
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.SKU, "-"), props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(l.Expected), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(counted, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(diff, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: diffColor})),
			col.New(3).Add(text.New(stateLabel(l.State), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// footerRow: QR con el id del inventario y espacio para firma.
func footerRow(archive *entity.CountArchive) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(archive.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Inventario "+archive.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Realizó: ______________________    Revisó: ______________________", props.Text{
				Size: 8, Top: 20, Left: 3,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func stateLabel(s entity.CountLineState) string {
	switch s {
	case entity.CountLineMatched:
		return "Coincide"
	case entity.CountLineDiffering:
		return "Diferencia"
	default:
		return "Sin contar"
	}
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
