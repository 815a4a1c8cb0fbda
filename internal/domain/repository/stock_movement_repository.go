package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovementView, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.StockMovementView, error)
	DeleteByProduct(ctx context.Context, productID string) error
	ClearSupplier(ctx context.Context, supplierID string) error
}
