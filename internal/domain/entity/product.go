package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores por defecto de un producto nuevo.
const (
	DefaultTaxRate      = 23
	DefaultReorderLevel = 10
	DefaultUnit         = "pcs"
)

// Product representa un artículo del inventario.
// Los precios se guardan sin y con impuesto; ambos se escriben juntos en cada mutación.
// Quantity solo cambia al crear el producto o a través de movimientos de stock.
type Product struct {
	ID           string
	Name         string
	SKU          string // EAN; único si no está vacío
	PLU          string
	Description  string
	CategoryID   *string
	SupplierID   *string
	Price        decimal.Decimal // venta sin impuesto
	PriceWithTax decimal.Decimal
	Cost         decimal.Decimal // compra sin impuesto
	CostWithTax  decimal.Decimal
	TaxRate      decimal.Decimal // porcentaje, p.ej. 23
	Quantity     int
	ReorderLevel int
	Unit         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductView es un producto con los nombres de categoría y proveedor ya resueltos (para listados).
type ProductView struct {
	Product
	CategoryName string
	SupplierName string
}
