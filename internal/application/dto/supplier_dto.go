package dto

import "time"

// SupplierRequest entrada para crear o actualizar un proveedor.
type SupplierRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	CompanyIDNumber string `json:"company_id_number"`
	TaxID           string `json:"tax_id"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	CompanyIDNumber string    `json:"company_id_number"`
	TaxID           string    `json:"tax_id"`
	CreatedAt       time.Time `json:"created_at"`
}
