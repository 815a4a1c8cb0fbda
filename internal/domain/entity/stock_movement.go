package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         MovementType = "in"         // entrada: suma
	MovementTypeOut        MovementType = "out"        // salida: resta
	MovementTypeAdjustment MovementType = "adjustment" // ajuste: fija la cantidad absoluta
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement registro inmutable de un cambio de cantidad.
// Quantity es siempre la magnitud (>= 0); el signo lo da Type.
type StockMovement struct {
	ID             string
	ProductID      string
	Quantity       int
	Type           MovementType
	Reference      string
	Notes          string
	CostWithoutTax decimal.Decimal
	TaxAmount      decimal.Decimal
	SupplierID     *string
	MovementDate   time.Time // fecha de negocio
	CreatedAt      time.Time // fecha de inserción
}

// StockMovementView movimiento con nombres resueltos para historial y dashboard.
type StockMovementView struct {
	StockMovement
	ProductName  string
	SupplierName string
}
