package dto

import "time"

// RecordCountRequest cantidad contada de un producto.
type RecordCountRequest struct {
	ProductID string `json:"product_id"`
	Counted   int    `json:"counted"`
}

// CountLineResponse una línea del inventario físico.
type CountLineResponse struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CategoryName string `json:"category_name"`
	SupplierName string `json:"supplier_name"`
	Expected     int    `json:"expected"`
	Counted      int    `json:"counted"`
	Difference   int    `json:"difference"`
	State        string `json:"state"`
}

// CountSummaryResponse totales por estado.
type CountSummaryResponse struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Differing int `json:"differing"`
	Pending   int `json:"pending"`
}

// CountSessionResponse inventario en curso.
type CountSessionResponse struct {
	StartedAt time.Time            `json:"started_at"`
	Summary   CountSummaryResponse `json:"summary"`
	Lines     []CountLineResponse  `json:"lines,omitempty"`
}

// CommitCountResponse resultado de confirmar un inventario.
type CommitCountResponse struct {
	ArchiveID   string   `json:"archive_id"`
	Applied     int      `json:"applied"`
	MovementIDs []string `json:"movement_ids"`
}

// CountArchiveResponse inventario guardado; Lines vacío en listados.
type CountArchiveResponse struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Committed bool                 `json:"committed"`
	Summary   CountSummaryResponse `json:"summary"`
	Lines     []CountLineResponse  `json:"lines,omitempty"`
}
