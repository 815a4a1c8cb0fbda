package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo lee el libro completo para las copias de seguridad.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository construye el adaptador.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Snapshot lee categorías, proveedores, productos y movimientos en una tx REPEATABLE READ de solo lectura,
// así las cuatro listas son coherentes entre sí.
func (r *SnapshotRepo) Snapshot(ctx context.Context) (*repository.LedgerSnapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, persistenceErr("begin snapshot", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var snap repository.LedgerSnapshot
	if snap.Categories, err = NewCategoryRepository(tx).List(ctx); err != nil {
		return nil, err
	}
	if snap.Suppliers, err = NewSupplierRepository(tx).List(ctx); err != nil {
		return nil, err
	}
	views, err := NewProductRepository(tx).ListViews(ctx)
	if err != nil {
		return nil, err
	}
	snap.Products = make([]*entity.Product, 0, len(views))
	for _, v := range views {
		p := v.Product
		snap.Products = append(snap.Products, &p)
	}
	rows, err := tx.Query(ctx, `
		SELECT id, product_id, quantity, type, reference, notes, cost_without_tax, tax_amount,
			supplier_id, movement_date, created_at
		FROM stock_movements ORDER BY created_at, id`)
	if err != nil {
		return nil, persistenceErr("snapshot movements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &typ, &m.Reference, &m.Notes,
			&m.CostWithoutTax, &m.TaxAmount, &m.SupplierID, &m.MovementDate, &m.CreatedAt); err != nil {
			return nil, persistenceErr("scan movement", err)
		}
		m.Type = entity.MovementType(typ)
		snap.Movements = append(snap.Movements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("snapshot movements", err)
	}
	return &snap, nil
}
