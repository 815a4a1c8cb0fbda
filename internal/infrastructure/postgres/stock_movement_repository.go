package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementViewQuery = `
	SELECT m.id, m.product_id, m.quantity, m.type, m.reference, m.notes, m.cost_without_tax, m.tax_amount,
		m.supplier_id, m.movement_date, m.created_at, COALESCE(p.name, ''), COALESCE(s.name, '')
	FROM stock_movements m
	LEFT JOIN products p ON p.id = m.product_id
	LEFT JOIN suppliers s ON s.id = m.supplier_id`

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, quantity, type, reference, notes, cost_without_tax, tax_amount,
			supplier_id, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.Quantity, string(movement.Type), movement.Reference,
		movement.Notes, movement.CostWithoutTax, movement.TaxAmount, movement.SupplierID,
		movement.MovementDate, movement.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return fmt.Errorf("%w: producto o proveedor del movimiento", domain.ErrNotFound)
		}
		return persistenceErr("create stock movement", err)
	}
	return nil
}

// ListByProduct historial de un producto, el más reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovementView, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, nil
	}
	return r.list(ctx, movementViewQuery+` WHERE m.product_id = $1 ORDER BY m.created_at DESC, m.id`, productID)
}

// ListRecent últimos movimientos de todo el inventario.
func (r *StockMovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.StockMovementView, error) {
	return r.list(ctx, movementViewQuery+` ORDER BY m.created_at DESC, m.id LIMIT $1`, limit)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovementView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovementView
	for rows.Next() {
		var v entity.StockMovementView
		var typ string
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Quantity, &typ, &v.Reference, &v.Notes,
			&v.CostWithoutTax, &v.TaxAmount, &v.SupplierID, &v.MovementDate, &v.CreatedAt,
			&v.ProductName, &v.SupplierName); err != nil {
			return nil, persistenceErr("scan stock movement", err)
		}
		v.Type = entity.MovementType(typ)
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list stock movements", err)
	}
	return list, nil
}

// DeleteByProduct borra el historial de un producto (solo al eliminar el producto).
func (r *StockMovementRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE product_id = $1`, productID); err != nil {
		if isInvalidText(err) {
			return nil
		}
		return persistenceErr("delete stock movements", err)
	}
	return nil
}

// ClearSupplier deja supplier_id = NULL en los movimientos del proveedor.
func (r *StockMovementRepo) ClearSupplier(ctx context.Context, supplierID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE stock_movements SET supplier_id = NULL WHERE supplier_id = $1`, supplierID); err != nil {
		if isInvalidText(err) {
			return nil
		}
		return persistenceErr("clear movement supplier", err)
	}
	return nil
}
