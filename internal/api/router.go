package api

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/api/handler"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/service"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/infrastructure/config"
	redisdb "github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/infrastructure/db/redis"
	sqldb "github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/infrastructure/db/sql"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/infrastructure/export"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil, in which case generation idempotency checks are disabled.
func NewRouter(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	clientRepo := sqldb.NewClientRepository(db)
	methodRepo := sqldb.NewTreatmentMethodRepository(db)
	treatmentRepo := sqldb.NewTreatmentRepository(db)
	invoiceRepo := sqldb.NewInvoiceRepository(db, cfg.Invoice.NumberPrefix)

	var dedup service.DedupChecker
	if rdb != nil {
		dedup = redisdb.NewGenerationDedup(rdb)
	}

	clientService := service.NewClientService(clientRepo, log)
	treatmentService := service.NewTreatmentService(methodRepo, treatmentRepo, clientRepo, log)
	invoiceService := service.NewInvoiceService(
		invoiceRepo,
		treatmentRepo,
		dedup,
		cfg.Invoice.GenerationWorkers,
		cfg.Invoice.DueDays,
		log,
	)

	clientHandler := handler.NewClientHandler(clientService)
	methodHandler := handler.NewTreatmentMethodHandler(treatmentService)
	treatmentHandler := handler.NewTreatmentHandler(treatmentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	exportHandler := handler.NewExportHandler(
		invoiceService,
		export.NewPDFRenderer(cfg.Invoice.PracticeName),
		export.NewXLSXRenderer(),
	)

	// --- API routes ---
	apiGroup := e.Group("/api")

	apiGroup.GET("/clients", clientHandler.List)
	apiGroup.POST("/clients", clientHandler.Create)
	apiGroup.GET("/clients/:id", clientHandler.Get)

	apiGroup.GET("/treatment-methods", methodHandler.List)
	apiGroup.POST("/treatment-methods", methodHandler.Create)

	apiGroup.GET("/treatments", treatmentHandler.List)
	apiGroup.POST("/treatments", treatmentHandler.Create)

	apiGroup.GET("/invoices", invoiceHandler.List)
	apiGroup.POST("/invoices/generate", invoiceHandler.Generate)
	apiGroup.GET("/invoices/:id", invoiceHandler.Get)
	apiGroup.POST("/invoices/:id/status", invoiceHandler.Transition)
	apiGroup.GET("/invoices/:id/pdf", exportHandler.PDF)
	apiGroup.GET("/invoices/:id/xls", exportHandler.XLSX)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
