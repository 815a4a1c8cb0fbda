package testutil

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DashboardRepo calcula las estadísticas sobre MemStore con las mismas reglas que la consulta SQL.
type DashboardRepo struct{ s *MemStore }

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

func (r *DashboardRepo) GetStats(ctx context.Context, lowStockThreshold, recentLimit int) (*entity.DashboardStats, error) {
	r.s.mu.Lock()
	stats := entity.DashboardStats{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		stats.TotalProducts++
		stats.TotalValue = stats.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.Quantity <= lowStockThreshold {
			stats.LowStockCount++
		}
		if p.Quantity == 0 {
			stats.OutOfStockCount++
		}
	}
	r.s.mu.Unlock()

	recent, err := r.s.Movements().ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	stats.RecentMovements = make([]entity.StockMovementView, 0, len(recent))
	for _, m := range recent {
		stats.RecentMovements = append(stats.RecentMovements, *m)
	}
	return &stats, nil
}

// SnapshotRepo copia completa del MemStore.
type SnapshotRepo struct{ s *MemStore }

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

func (r *SnapshotRepo) Snapshot(_ context.Context) (*repository.LedgerSnapshot, error) {
	st := r.s.save()
	snap := &repository.LedgerSnapshot{}
	for _, c := range st.categories {
		c := c
		snap.Categories = append(snap.Categories, &c)
	}
	for _, sup := range st.suppliers {
		sup := sup
		snap.Suppliers = append(snap.Suppliers, &sup)
	}
	for _, p := range st.products {
		p := p
		snap.Products = append(snap.Products, &p)
	}
	for _, m := range st.movements {
		m := m
		snap.Movements = append(snap.Movements, &m)
	}
	sort.Slice(snap.Categories, func(i, j int) bool { return snap.Categories[i].Name < snap.Categories[j].Name })
	sort.Slice(snap.Suppliers, func(i, j int) bool { return snap.Suppliers[i].Name < snap.Suppliers[j].Name })
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].Name < snap.Products[j].Name })
	return snap, nil
}
