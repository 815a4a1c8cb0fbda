package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/backup"
	"github.com/jhoicas/inventario-ledger/internal/application/exchange"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/query"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/objectstore"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("auth", cfg.JWT.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Las migraciones fallidas no impiden arrancar; la guarda de columnas cubre lo aditivo.
	if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
		log.Error().Err(err).Msg("migraciones")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", postgres.RedactDSN(cfg.DB.ConnectionString())).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if added, err := postgres.EnsureColumns(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("verificación de columnas")
	} else if len(added) > 0 {
		log.Info().Strs("columns", added).Msg("columnas añadidas")
	}

	recorder := metrics.New(cfg.Metrics.Prefix)

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	archiveRepo := postgres.NewCountArchiveRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	catalog := query.NewCatalog(productRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, supplierRepo, txRunner, catalog)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, txRunner, catalog)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo, txRunner, catalog)
	stockEngine := inventory.NewStockEngine(txRunner, movementRepo, catalog, recorder, log)

	// PDF: informe de recuento con QR del archivo
	pdfGenerator := infrapdf.NewCountReportGenerator(cfg.App.Name)
	countUC := inventory.NewCountUseCase(productRepo, archiveRepo, txRunner, pdfGenerator, catalog, recorder, log)

	dashboardUC := appanalytics.NewDashboardUseCase(postgres.NewDashboardRepository(pool))
	exchangeUC := exchange.NewExchangeUseCase(productRepo, categoryRepo, supplierRepo, productUC, stockEngine, recorder, log)

	// Almacenamiento remoto opcional para las copias
	var uploader backup.Uploader
	store, err := objectstore.New(cfg.Backup)
	if err != nil {
		log.Error().Err(err).Msg("cliente de almacenamiento de objetos")
	} else if store != nil {
		if err := store.EnsureBucket(ctx); err != nil {
			log.Error().Err(err).Str("bucket", store.Bucket()).Msg("bucket de copias")
		} else {
			uploader = store
		}
	}
	backupUC := backup.NewBackupUseCase(postgres.NewSnapshotRepository(pool), backup.Options{
		Dir:           cfg.Backup.Dir,
		RetentionDays: cfg.Backup.RetentionDays,
	}, uploader, recorder, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(recorder.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", recorder.FiberHandler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		CategoryUC:  categoryUC,
		SupplierUC:  supplierUC,
		StockEngine: stockEngine,
		CountUC:     countUC,
		DashboardUC: dashboardUC,
		ExchangeUC:  exchangeUC,
		BackupUC:    backupUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
