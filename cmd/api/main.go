package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/events"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Ubicaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Ubicaciones-api/pkg/config"
	"github.com/jhoicas/Ubicaciones-api/pkg/logger"
	"github.com/jhoicas/Ubicaciones-api/pkg/tracing"
)

const version = "1.0.0"

type publisherCloser interface {
	allocation.EventPublisher
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger_driver", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.App.Name, version, cfg.Tracing.Output); err != nil {
			log.Fatal().Err(err).Msg("inicializar tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracing.Shutdown(ctx)
		}()
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento del ledger")
	}
	defer store.Close()

	var publisher publisherCloser = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de asignación hacia Kafka")
	}
	defer publisher.Close()

	allocationSvc := allocation.NewService(
		store.Ledger(),
		publisher,
		allocation.RetryPolicy{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay},
		log.Component("allocation"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ubicaciones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ledger_driver": store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AllocationService: allocationSvc,
		JWTSecret:         cfg.JWT.Secret,
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
