package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/inventario-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve totales de catálogo y los últimos 10 movimientos.
// GET /api/dashboard
//
// Respuesta: DashboardResponse (total_products, total_value, low_stock_count,
// out_of_stock_count, recent_movements).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
