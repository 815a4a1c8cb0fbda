// Package exchange importa y exporta el catálogo de productos en CSV y XLSX
// con un esquema de columnas fijo.
package exchange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/query"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// dateLayout formato de fechas en los ficheros exportados.
const dateLayout = "2006-01-02 15:04:05"

// Column una columna del fichero: cabecera, cómo se exporta y cómo se importa.
// Sin parse la columna es solo de exportación.
type Column struct {
	Header   string
	Aliases  []string // cabeceras del formato eslovaco antiguo
	Required bool
	value    func(v *entity.ProductView) any
	parse    func(r *importRow, raw string) error
}

// ExportOnly indica que la columna se ignora al importar.
func (c Column) ExportOnly() bool { return c.parse == nil }

func (c Column) matches(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == strings.ToLower(c.Header) {
		return true
	}
	for _, a := range c.Aliases {
		if h == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// importRow valores leídos de una fila. nil = columna ausente o celda vacía.
type importRow struct {
	Name         string
	SKU          string
	PLU          *string
	Category     string
	Supplier     string
	Quantity     *int
	Price        *decimal.Decimal
	PriceWithTax *decimal.Decimal
	Cost         *decimal.Decimal
	CostWithTax  *decimal.Decimal
	TaxRate      *decimal.Decimal
	Unit         *string
	Description  *string
	CreatedAt    *time.Time
}

// Columns esquema en el orden en que se exporta.
var Columns = []Column{
	{
		Header: "Name", Aliases: []string{"Názov produktu"}, Required: true,
		value: func(v *entity.ProductView) any { return v.Name },
		parse: func(r *importRow, s string) error { r.Name = s; return nil },
	},
	{
		Header: "SKU", Aliases: []string{"EAN"},
		value: func(v *entity.ProductView) any { return v.SKU },
		parse: func(r *importRow, s string) error { r.SKU = s; return nil },
	},
	{
		Header: "PLU",
		value:  func(v *entity.ProductView) any { return v.PLU },
		parse:  func(r *importRow, s string) error { r.PLU = &s; return nil },
	},
	{
		Header: "Category", Aliases: []string{"Kategória"},
		value: func(v *entity.ProductView) any { return v.CategoryName },
		parse: func(r *importRow, s string) error { r.Category = s; return nil },
	},
	{
		Header: "Supplier", Aliases: []string{"Dodávateľ"},
		value: func(v *entity.ProductView) any { return v.SupplierName },
		parse: func(r *importRow, s string) error { r.Supplier = s; return nil },
	},
	{
		Header: "Quantity", Aliases: []string{"Množstvo"},
		value: func(v *entity.ProductView) any { return v.Quantity },
		parse: func(r *importRow, s string) (err error) { r.Quantity, err = parseInt("Quantity", s); return },
	},
	{
		Header: "Price", Aliases: []string{"Predaj bez DPH"},
		value: func(v *entity.ProductView) any { return v.Price },
		parse: func(r *importRow, s string) (err error) { r.Price, err = parseDecimal("Price", s); return },
	},
	{
		Header: "PriceWithTax", Aliases: []string{"Predaj s DPH"},
		value: func(v *entity.ProductView) any { return v.PriceWithTax },
		parse: func(r *importRow, s string) (err error) { r.PriceWithTax, err = parseDecimal("PriceWithTax", s); return },
	},
	{
		Header: "Cost", Aliases: []string{"Nákup bez DPH"},
		value: func(v *entity.ProductView) any { return v.Cost },
		parse: func(r *importRow, s string) (err error) { r.Cost, err = parseDecimal("Cost", s); return },
	},
	{
		Header: "CostWithTax", Aliases: []string{"Nákup s DPH"},
		value: func(v *entity.ProductView) any { return v.CostWithTax },
		parse: func(r *importRow, s string) (err error) { r.CostWithTax, err = parseDecimal("CostWithTax", s); return },
	},
	{
		Header: "TaxRate", Aliases: []string{"Sadzba DPH"},
		value: func(v *entity.ProductView) any { return v.TaxRate },
		parse: func(r *importRow, s string) (err error) { r.TaxRate, err = parseDecimal("TaxRate", s); return },
	},
	{
		Header: "Margin", Aliases: []string{"Marža (%)"},
		value: func(v *entity.ProductView) any { return query.ProductMargin(&v.Product) },
	},
	{
		Header: "Status", Aliases: []string{"Stav"},
		value: func(v *entity.ProductView) any { return string(domaininv.ClassifyStock(v.Quantity)) },
	},
	{
		Header: "Unit", Aliases: []string{"Jednotka"},
		value: func(v *entity.ProductView) any { return v.Unit },
		parse: func(r *importRow, s string) error { r.Unit = &s; return nil },
	},
	{
		Header: "Description", Aliases: []string{"Popis"},
		value: func(v *entity.ProductView) any { return v.Description },
		parse: func(r *importRow, s string) error { r.Description = &s; return nil },
	},
	{
		Header: "CreatedAt", Aliases: []string{"Dátum vytvorenia"},
		value: func(v *entity.ProductView) any { return v.CreatedAt },
		parse: func(r *importRow, s string) (err error) { r.CreatedAt, err = parseTime("CreatedAt", s); return },
	},
	{
		Header: "UpdatedAt", Aliases: []string{"Dátum aktualizácie"},
		value: func(v *entity.ProductView) any { return v.UpdatedAt },
	},
}

// Headers cabeceras de exportación en orden.
func Headers() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Header
	}
	return out
}

// formatText representación textual de una celda (CSV).
func formatText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.StringFixed(2)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(dateLayout)
	default:
		return fmt.Sprint(x)
	}
}

// cleanNumber quita espacios, símbolos de moneda y porcentaje y acepta coma decimal.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "€", "", "%", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

func parseInt(field, raw string) (*int, error) {
	s := cleanNumber(raw)
	if s == "" {
		return nil, nil
	}
	// Excel puede devolver "12.0"
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("%s: %q no es un entero", field, raw)
	}
	limit := decimal.NewFromInt(domaininv.MaxQuantity)
	if d.GreaterThan(limit) || d.LessThan(limit.Neg()) {
		return nil, fmt.Errorf("%s: %q fuera de rango", field, raw)
	}
	n := int(d.IntPart())
	return &n, nil
}

func parseDecimal(field, raw string) (*decimal.Decimal, error) {
	s := cleanNumber(raw)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %q no es un número", field, raw)
	}
	return &d, nil
}

var timeLayouts = []string{time.RFC3339, dateLayout, "2006-01-02", "02.01.2006", "02.01.2006 15:04:05"}

func parseTime(field, raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: fecha %q no reconocida", field, raw)
}
