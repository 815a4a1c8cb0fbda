package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DashboardRepository consultas agregadas de solo lectura.
type DashboardRepository interface {
	GetStats(ctx context.Context, lowStockThreshold, recentLimit int) (*entity.DashboardStats, error)
}
