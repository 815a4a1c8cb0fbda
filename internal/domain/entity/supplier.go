package entity

import "time"

// Supplier representa un proveedor. Referenciado por Product y StockMovement.
type Supplier struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	Address         string
	CompanyIDNumber string // número de registro mercantil (IČO)
	TaxID           string // identificador fiscal (DIČ)
	CreatedAt       time.Time
}
