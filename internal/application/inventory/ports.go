package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de stock y la confirmación de inventarios.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		archiveRepo repository.CountArchiveRepository,
	) error) error
}

// ProductSource foto de productos para iniciar un inventario físico.
type ProductSource interface {
	ListViews(ctx context.Context) ([]*entity.ProductView, error)
}

// CountReportRenderer genera el informe PDF de un inventario.
type CountReportRenderer interface {
	RenderCountReport(archive *entity.CountArchive) ([]byte, error)
}
