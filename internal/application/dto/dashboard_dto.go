package dto

import "github.com/shopspring/decimal"

// DashboardResponse estadísticas de la pantalla principal.
type DashboardResponse struct {
	TotalProducts   int                `json:"total_products"`
	TotalValue      decimal.Decimal    `json:"total_value"`
	LowStockCount   int                `json:"low_stock_count"`
	OutOfStockCount int                `json:"out_of_stock_count"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}
