// Package query filtrado, orden y caché de lectura del catálogo de productos.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey criterio de orden del listado.
type SortKey string

// Criterios de orden soportados.
const (
	SortNone         SortKey = ""
	SortName         SortKey = "name"
	SortNameDesc     SortKey = "name-desc"
	SortPrice        SortKey = "price"
	SortPriceDesc    SortKey = "price-desc"
	SortQuantity     SortKey = "quantity"
	SortQuantityDesc SortKey = "quantity-desc"
	SortMargin       SortKey = "margin"
	SortMarginDesc   SortKey = "margin-desc"
	SortUpdated      SortKey = "updated" // más reciente primero
)

// Valid indica si el criterio es conocido.
func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortName, SortNameDesc, SortPrice, SortPriceDesc, SortQuantity, SortQuantityDesc,
		SortMargin, SortMarginDesc, SortUpdated:
		return true
	}
	return false
}

// Criteria predicados del filtro; los vacíos/nil no filtran. Todos se combinan con AND y los rangos son inclusivos.
// Los rangos de precio se aplican al precio de venta sin impuesto; el margen es porcentual.
type Criteria struct {
	Text        string
	CategoryID  string
	SupplierID  string
	Status      domaininv.StockStatus
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	MarginMin   *decimal.Decimal
	MarginMax   *decimal.Decimal
	QuantityMin *int
	QuantityMax *int
	Sort        SortKey
}

// Validate rechaza estado u orden desconocidos.
func (c Criteria) Validate() error {
	if c.Status != "" && !c.Status.Valid() {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, c.Status)
	}
	if !c.Sort.Valid() {
		return fmt.Errorf("%w: orden %q", domain.ErrInvalidInput, c.Sort)
	}
	return nil
}

// ProductMargin margen porcentual sobre precios con impuesto.
func ProductMargin(p *entity.Product) decimal.Decimal {
	return domaininv.Margin(p.PriceWithTax, p.CostWithTax)
}

// Filter aplica los criterios sobre products sin modificarlo y devuelve una lista nueva ordenada.
func Filter(products []*entity.ProductView, c Criteria) []*entity.ProductView {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	out := make([]*entity.ProductView, 0, len(products))
	for _, p := range products {
		if text != "" && !matchesText(p, text) {
			continue
		}
		if c.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != c.CategoryID) {
			continue
		}
		if c.SupplierID != "" && (p.SupplierID == nil || *p.SupplierID != c.SupplierID) {
			continue
		}
		if c.Status != "" && domaininv.ClassifyStock(p.Quantity) != c.Status {
			continue
		}
		if !inDecimalRange(p.Price, c.PriceMin, c.PriceMax) {
			continue
		}
		if (c.MarginMin != nil || c.MarginMax != nil) && !inDecimalRange(ProductMargin(&p.Product), c.MarginMin, c.MarginMax) {
			continue
		}
		if c.QuantityMin != nil && p.Quantity < *c.QuantityMin {
			continue
		}
		if c.QuantityMax != nil && p.Quantity > *c.QuantityMax {
			continue
		}
		out = append(out, p)
	}
	Sort(out, c.Sort)
	return out
}

func matchesText(p *entity.ProductView, text string) bool {
	return strings.Contains(strings.ToLower(p.Name), text) ||
		strings.Contains(strings.ToLower(p.SKU), text) ||
		strings.Contains(strings.ToLower(p.PLU), text)
}

func inDecimalRange(v decimal.Decimal, min, max *decimal.Decimal) bool {
	if min != nil && v.LessThan(*min) {
		return false
	}
	if max != nil && v.GreaterThan(*max) {
		return false
	}
	return true
}

// Sort ordena en sitio de forma estable. SortNone deja el orden recibido.
// Los nombres se comparan con collation (acentos y mayúsculas como en un diccionario).
func Sort(list []*entity.ProductView, key SortKey) {
	var less func(a, b *entity.ProductView) bool
	switch key {
	case SortName, SortNameDesc:
		col := collate.New(language.Spanish, collate.IgnoreCase)
		if key == SortName {
			less = func(a, b *entity.ProductView) bool { return col.CompareString(a.Name, b.Name) < 0 }
		} else {
			less = func(a, b *entity.ProductView) bool { return col.CompareString(a.Name, b.Name) > 0 }
		}
	case SortPrice:
		less = func(a, b *entity.ProductView) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b *entity.ProductView) bool { return a.Price.GreaterThan(b.Price) }
	case SortQuantity:
		less = func(a, b *entity.ProductView) bool { return a.Quantity < b.Quantity }
	case SortQuantityDesc:
		less = func(a, b *entity.ProductView) bool { return a.Quantity > b.Quantity }
	case SortMargin:
		less = func(a, b *entity.ProductView) bool {
			return ProductMargin(&a.Product).LessThan(ProductMargin(&b.Product))
		}
	case SortMarginDesc:
		less = func(a, b *entity.ProductView) bool {
			return ProductMargin(&a.Product).GreaterThan(ProductMargin(&b.Product))
		}
	case SortUpdated:
		less = func(a, b *entity.ProductView) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	default:
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
