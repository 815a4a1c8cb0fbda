package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/backup"
	"github.com/jhoicas/inventario-ledger/internal/application/exchange"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	SupplierUC  *usecase.SupplierUseCase
	StockEngine *inventory.StockEngine
	CountUC     *inventory.CountUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ExchangeUC  *exchange.ExchangeUseCase
	BackupUC    *backup.BackupUseCase
	JWTSecret   string // vacío = sin autenticación
}

// Router registra las rutas de la API. Las lecturas admiten cualquier rol;
// las escrituras exigen operador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	write := RequireRole(jwt.RoleOperator)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.StockEngine)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/sku-check", productHandler.CheckSku)
	products.Post("/", write, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", write, productHandler.Update)
	products.Delete("/:id", write, productHandler.Delete)
	products.Get("/:id/movements", inventoryHandler.ListMovements)

	// Movements
	api.Post("/movements", write, inventoryHandler.ApplyMovement)

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", write, categoryHandler.Create)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", write, categoryHandler.Update)
	categories.Delete("/:id", write, categoryHandler.Delete)

	// Suppliers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", write, supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", write, supplierHandler.Update)
	suppliers.Delete("/:id", write, supplierHandler.Delete)

	// Counts
	counts := api.Group("/counts")
	countHandler := NewCountHandler(deps.CountUC)
	counts.Post("/", write, countHandler.Start)
	counts.Get("/current", countHandler.Current)
	counts.Delete("/current", write, countHandler.Cancel)
	counts.Get("/current/lines", countHandler.Lines)
	counts.Put("/current/lines", write, countHandler.Record)
	counts.Post("/current/commit", write, countHandler.Commit)
	counts.Post("/current/save", write, countHandler.Save)
	counts.Get("/export", countHandler.Export)
	counts.Get("/archives", countHandler.ListArchives)
	counts.Delete("/archives", write, countHandler.ClearArchives)
	counts.Get("/archives/:id", countHandler.GetArchive)
	counts.Delete("/archives/:id", write, countHandler.DeleteArchive)

	// Dashboard
	api.Get("/dashboard", NewDashboardHandler(deps.DashboardUC).GetSummary)

	// Exchange
	exchangeHandler := NewExchangeHandler(deps.ExchangeUC)
	api.Get("/exchange/products", exchangeHandler.Export)
	api.Post("/exchange/products", write, exchangeHandler.Import)

	// Backup
	backupHandler := NewBackupHandler(deps.BackupUC)
	api.Get("/backup", backupHandler.Info)
	api.Post("/backup", write, backupHandler.Run)
	api.Post("/backup/cleanup", write, backupHandler.Cleanup)
}
