package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Basta con indicar un precio de cada par (sin o con impuesto); el otro se calcula.
type CreateProductRequest struct {
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	PLU          string           `json:"plu"`
	Description  string           `json:"description"`
	CategoryID   *string          `json:"category_id"`
	SupplierID   *string          `json:"supplier_id"`
	Price        *decimal.Decimal `json:"price"`
	PriceWithTax *decimal.Decimal `json:"price_with_tax"`
	Cost         *decimal.Decimal `json:"cost"`
	CostWithTax  *decimal.Decimal `json:"cost_with_tax"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	Quantity     int              `json:"quantity"`
	ReorderLevel *int             `json:"reorder_level"`
	Unit         string           `json:"unit"`
	CreatedAt    *time.Time       `json:"-"` // solo importación
}

// UpdateProductRequest entrada para actualizar un producto. La cantidad no se puede cambiar aquí.
// CategoryID/SupplierID con valor "" quitan la referencia.
type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	SKU          *string          `json:"sku"`
	PLU          *string          `json:"plu"`
	Description  *string          `json:"description"`
	CategoryID   *string          `json:"category_id"`
	SupplierID   *string          `json:"supplier_id"`
	Price        *decimal.Decimal `json:"price"`
	PriceWithTax *decimal.Decimal `json:"price_with_tax"`
	Cost         *decimal.Decimal `json:"cost"`
	CostWithTax  *decimal.Decimal `json:"cost_with_tax"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ReorderLevel *int             `json:"reorder_level"`
	Unit         *string          `json:"unit"`
}

// ProductResponse salida de un producto con nombres resueltos, estado y margen.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	PLU          string          `json:"plu"`
	Description  string          `json:"description"`
	CategoryID   *string         `json:"category_id"`
	CategoryName string          `json:"category_name"`
	SupplierID   *string         `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Price        decimal.Decimal `json:"price"`
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	Cost         decimal.Decimal `json:"cost"`
	CostWithTax  decimal.Decimal `json:"cost_with_tax"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Margin       decimal.Decimal `json:"margin"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	Unit         string          `json:"unit"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// ProductFilterRequest parámetros de filtrado y orden del listado (query string).
type ProductFilterRequest struct {
	Text        string `query:"q"`
	CategoryID  string `query:"category_id"`
	SupplierID  string `query:"supplier_id"`
	Status      string `query:"status"`
	PriceMin    string `query:"price_min"`
	PriceMax    string `query:"price_max"`
	MarginMin   string `query:"margin_min"`
	MarginMax   string `query:"margin_max"`
	QuantityMin *int   `query:"quantity_min"`
	QuantityMax *int   `query:"quantity_max"`
	Sort        string `query:"sort"`
}

// SkuAvailabilityResponse resultado de la comprobación de SKU.
type SkuAvailabilityResponse struct {
	SKU       string `json:"sku"`
	Available bool   `json:"available"`
}
