package entity

import "time"

// Category representa una categoría de productos.
// Al eliminarla, los productos quedan sin categoría (no se borran en cascada).
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
}
