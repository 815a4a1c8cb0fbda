// Package analytics contiene el caso de uso del dashboard de la pantalla principal.
package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const dashboardRecentMovements = 10 // movimientos en el widget de actividad reciente

// DashboardUseCase genera el resumen de existencias.
//
// Fuente de datos: DashboardRepository (consultas read-only). Los totales se calculan
// en la base de datos; aquí solo se mapea a DTO.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// GetSummary total de productos, valor Σ(precio·cantidad), stock bajo (<= 10, incluye agotados),
// agotados (= 0) y los últimos movimientos con nombre de producto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	stats, err := uc.repo.GetStats(ctx, domaininv.LowStockThreshold, dashboardRecentMovements)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	recent := make([]dto.MovementResponse, 0, len(stats.RecentMovements))
	for _, m := range stats.RecentMovements {
		recent = append(recent, inventory.ToMovementResponse(m))
	}
	return &dto.DashboardResponse{
		TotalProducts:   stats.TotalProducts,
		TotalValue:      stats.TotalValue.Round(2),
		LowStockCount:   stats.LowStockCount,
		OutOfStockCount: stats.OutOfStockCount,
		RecentMovements: recent,
	}, nil
}
