package entity

import "time"

// CountArchive inventario físico guardado (confirmado o solo archivado para consulta).
type CountArchive struct {
	ID        string
	CreatedAt time.Time
	Committed bool
	Total     int
	Matched   int
	Differing int
	Pending   int
	Lines     []CountLine
}

// CountLineState estado de una línea de conteo.
type CountLineState string

// Estados de una línea: pending -> {matched, differing}.
const (
	CountLinePending   CountLineState = "pending"
	CountLineMatched   CountLineState = "matched"
	CountLineDiffering CountLineState = "differing"
)

// CountLine una línea del inventario físico: cantidad esperada (sistema) vs contada.
type CountLine struct {
	ProductID    string         `json:"product_id"`
	Name         string         `json:"name"`
	SKU          string         `json:"sku"`
	CategoryName string         `json:"category_name"`
	SupplierName string         `json:"supplier_name"`
	Expected     int            `json:"expected"`
	Counted      int            `json:"counted"`
	State        CountLineState `json:"state"`
}

// Difference devuelve counted - expected.
func (l CountLine) Difference() int {
	return l.Counted - l.Expected
}
