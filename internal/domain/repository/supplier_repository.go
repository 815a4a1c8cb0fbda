package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByName(ctx context.Context, name string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context) ([]*entity.Supplier, error)
	Search(ctx context.Context, term string) ([]*entity.Supplier, error)
	Delete(ctx context.Context, id string) error
	// ClearFromProducts deja supplier_id = NULL en los productos que lo usan.
	ClearFromProducts(ctx context.Context, supplierID string) (int64, error)
}
