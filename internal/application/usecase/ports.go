package usecase

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CatalogTxRunner transacción para los borrados del catálogo: limpiar referencias y borrar van juntos.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		categoryRepo repository.CategoryRepository,
		supplierRepo repository.SupplierRepository,
	) error) error
}
