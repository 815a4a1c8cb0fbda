package entity

import "github.com/shopspring/decimal"

// DashboardStats agregados para la pantalla principal.
type DashboardStats struct {
	TotalProducts   int
	TotalValue      decimal.Decimal // Σ price * quantity
	LowStockCount   int             // quantity <= 10
	OutOfStockCount int             // quantity = 0
	RecentMovements []StockMovementView
}
