package inventory

import "math"

// StockStatus clasificación de existencias para filtros y listados.
type StockStatus string

const (
	StatusInStock    StockStatus = "in-stock"
	StatusLowStock   StockStatus = "low-stock"
	StatusOutOfStock StockStatus = "out-of-stock"
)

// LowStockThreshold umbral fijo de stock bajo. Product.ReorderLevel se guarda pero no
// interviene en la clasificación.
const LowStockThreshold = 10

// MaxQuantity mayor cantidad que admite la columna INTEGER de existencias y movimientos.
const MaxQuantity = math.MaxInt32

// Valid indica si el estado es uno de los conocidos.
func (s StockStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// ClassifyStock agotado solo con cantidad exactamente 0; hasta el umbral (incluidas
// cantidades negativas) es stock bajo.
func ClassifyStock(quantity int) StockStatus {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
