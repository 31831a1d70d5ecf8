package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/finwire/walletd/internal/adapter/http"
	"github.com/finwire/walletd/internal/adapter/http/handler"
	"github.com/finwire/walletd/internal/adapter/http/middleware"
	"github.com/finwire/walletd/internal/adapter/notifier"
	postgresRepo "github.com/finwire/walletd/internal/adapter/repository/postgres"
	"github.com/finwire/walletd/internal/infrastructure/config"
	"github.com/finwire/walletd/internal/infrastructure/logger"
	"github.com/finwire/walletd/internal/infrastructure/metrics"
	"github.com/finwire/walletd/internal/infrastructure/postgres"
	"github.com/finwire/walletd/internal/infrastructure/redis"
	"github.com/finwire/walletd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	m := metrics.New()

	// Notification sink: Kafka when brokers are configured, otherwise
	// events go to the log.
	var sink usecase.NotificationSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	} else {
		sink = notifier.NewLogNotifier(log.Logger)
		log.Info().Msg("no kafka brokers configured, logging events")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, retrier, sink, idGen)

	// Initialize handlers
	transferHandler := handler.NewTransferHandler(transferUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransferHandler: transferHandler,
		HealthHandler:   healthHandler,
		Logging:         middleware.NewLoggingMiddleware(log.Logger),
		Metrics:         middleware.NewMetricsMiddleware(m),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
