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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/repository"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/cache"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/events"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/export"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/memory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/metrics"
	infrapdf "github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/pdf"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/postgres"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/scheduler"
	httpRouter "github.com/emanueliriarte-arch/mi-app-inventario/internal/interfaces/http"
	"github.com/emanueliriarte-arch/mi-app-inventario/pkg/config"
	"github.com/emanueliriarte-arch/mi-app-inventario/pkg/logger"
)

// storage repositorios del ledger según STORAGE_DRIVER.
type storage struct {
	tx        inventory.TxRunner
	products  repository.ProductRepository
	movements repository.MovementRepository
	stats     repository.StatsRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	units, locations := cfg.Ledger.Units, cfg.Ledger.Locations
	if len(units) == 0 {
		units = inventory.DefaultUnits
	}
	if len(locations) == 0 {
		locations = inventory.DefaultLocations
	}

	rec := metrics.NewRecorder()
	opts := []inventory.Option{
		inventory.WithRecorder(rec),
		inventory.WithLogger(log.Component("ledger")),
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		opts = append(opts, inventory.WithStatsCache(cache.NewRedisStatsCache(client, cfg.Redis.TTL)))
	}

	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		opts = append(opts, inventory.WithPublisher(publisher))
	}

	ledger := inventory.NewLedgerUseCase(store.tx, store.products, store.movements, store.stats,
		inventory.LedgerConfig{
			Actor:     cfg.Ledger.Actor,
			SKUPrefix: cfg.Ledger.SKUPrefix,
			Vocab:     inventory.NewVocabulary(units, locations, cfg.Ledger.FreeFormUnits),
		},
		opts...,
	)

	csvWriter, err := export.NewCSVWriter(cfg.Reports.CSVCharset)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de exportación")
	}
	reportUC := report.NewUseCase(ledger, csvWriter, infrapdf.NewStockReportGenerator(cfg.App.Name))

	if cfg.Reports.Cron != "" {
		sched := scheduler.NewReportScheduler(ledger, reportUC, cfg.Reports.Dir, log.Component("scheduler"))
		if err := sched.Start(ctx, cfg.Reports.Cron); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Reports.Cron).Msg("programar reporte")
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "Inventario API",
		}))
	} else {
		log.Warn().Str("path", cfg.HTTP.DocsPath).Msg("documento OpenAPI no encontrado, /docs desactivado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         ledger,
		Reports:        reportUC,
		CSVContentType: csvWriter.ContentType(),
		Metrics:        promhttp.HandlerFor(rec.Registry, promhttp.HandlerOpts{}),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (crea y verifica el esquema) o el store en memoria.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		s := memory.NewStore()
		return &storage{tx: s, products: s.Products(), movements: s.Movements(), stats: s, close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if err := postgres.VerifySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool, cfg.Ledger.LockKey),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		stats:     postgres.NewStatsRepository(pool),
		close:     pool.Close,
	}, nil
}
