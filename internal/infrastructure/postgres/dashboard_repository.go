package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura para la pantalla principal.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador del dashboard.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// GetStats totales del inventario más los últimos movimientos.
// Valor total = Σ price × quantity (precio de venta sin impuesto).
func (r *DashboardRepo) GetStats(ctx context.Context, lowStockThreshold, recentLimit int) (*entity.DashboardStats, error) {
	const query = `
	SELECT
	    COUNT(*)                                                  AS total_products,
	    COALESCE(SUM(price * quantity), 0)                        AS total_value,
	    COUNT(*) FILTER (WHERE quantity <= $1)                    AS low_stock,
	    COUNT(*) FILTER (WHERE quantity = 0)                      AS out_of_stock
	FROM products`

	var stats entity.DashboardStats
	if err := r.pool.QueryRow(ctx, query, lowStockThreshold).Scan(
		&stats.TotalProducts,
		&stats.TotalValue,
		&stats.LowStockCount,
		&stats.OutOfStockCount,
	); err != nil {
		return nil, persistenceErr("dashboard.GetStats", err)
	}

	recent, err := NewStockMovementRepository(r.pool).ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	stats.RecentMovements = make([]entity.StockMovementView, 0, len(recent))
	for _, m := range recent {
		stats.RecentMovements = append(stats.RecentMovements, *m)
	}
	return &stats, nil
}
