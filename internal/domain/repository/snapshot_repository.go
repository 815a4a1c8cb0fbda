package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// LedgerSnapshot contenido completo del libro para copias de seguridad.
type LedgerSnapshot struct {
	Categories []*entity.Category
	Suppliers  []*entity.Supplier
	Products   []*entity.Product
	Movements  []*entity.StockMovement
}

// SnapshotRepository lee las cuatro tablas en una sola transacción de lectura.
type SnapshotRepository interface {
	Snapshot(ctx context.Context) (*LedgerSnapshot, error)
}
