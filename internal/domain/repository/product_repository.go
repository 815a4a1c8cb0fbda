package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update escribe todos los campos editables excepto Quantity.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateQuantity devuelve domain.ErrNotFound si el producto no existe.
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	// CountBySKU cuenta productos con ese SKU excluyendo excludeID (vacío = ninguno).
	CountBySKU(ctx context.Context, sku, excludeID string) (int, error)
	ListViews(ctx context.Context) ([]*entity.ProductView, error)
	// Delete devuelve domain.ErrNotFound si el producto no existe.
	Delete(ctx context.Context, id string) error
}
