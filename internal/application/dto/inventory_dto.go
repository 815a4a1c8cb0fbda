package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest entrada HTTP para registrar un movimiento de stock.
// Los campos opcionales toman valores por defecto (referencia STK-<ms>, nota según tipo, fecha actual).
type ApplyMovementRequest struct {
	ProductID      string           `json:"product_id"`
	Type           string           `json:"type"` // in, out, adjustment
	Quantity       int              `json:"quantity"`
	Reference      string           `json:"reference"`
	Notes          string           `json:"notes"`
	CostWithoutTax *decimal.Decimal `json:"cost_without_tax"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	SupplierID     *string          `json:"supplier_id"`
	MovementDate   *time.Time       `json:"movement_date"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Type           string          `json:"type"`
	Quantity       int             `json:"quantity"`
	Reference      string          `json:"reference"`
	Notes          string          `json:"notes"`
	CostWithoutTax decimal.Decimal `json:"cost_without_tax"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	SupplierID     *string         `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	MovementDate   time.Time       `json:"movement_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ApplyMovementResponse resultado de aplicar un movimiento.
type ApplyMovementResponse struct {
	MovementID  string `json:"movement_id"`
	NewQuantity int    `json:"new_quantity"`
}
