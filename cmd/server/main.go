package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/propledger/internal/adapter/http"
	"github.com/iho/propledger/internal/adapter/http/handler"
	"github.com/iho/propledger/internal/adapter/http/middleware"
	"github.com/iho/propledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/propledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/propledger/internal/adapter/repository/redis"
	"github.com/iho/propledger/internal/adapter/ws"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/infrastructure/config"
	"github.com/iho/propledger/internal/infrastructure/logger"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/infrastructure/postgres"
	redisClient "github.com/iho/propledger/internal/infrastructure/redis"
	"github.com/iho/propledger/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	m := metrics.New()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		Metrics:         m,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	// Redis backs the cache, idempotency keys and the chat relay; without it they stay in process
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		broadcaster      *redisRepo.Broadcaster
		redisPinger      handler.Pinger
	)
	if cfg.RedisEnabled {
		rc, err := redisClient.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()
		logger.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(rc)
		idempotencyStore = redisRepo.NewIdempotencyStore(rc)
		broadcaster = redisRepo.NewBroadcaster(rc, instanceID(cfg), logger)
		redisPinger = pingRedis(rc)
	} else {
		logger.Warn().Msg("redis disabled, using in-process cache and idempotency store")
		cache = memory.NewCache(cfg.ReportCacheTTL, time.Minute)
		idempotencyStore = memory.NewIdempotencyStore(time.Minute)
	}

	// Initialize repositories
	idGen := postgresRepo.NewULIDGenerator()
	txManager := postgresRepo.NewTxManager(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository()
	paymentRepo := postgresRepo.NewPaymentRepository(idGen)
	messageRepo := postgresRepo.NewMessageRepository(pool)
	retrier := postgresRepo.NewRetrier(cfg.DatabaseMaxRetries, m)

	// Initialize use cases
	snapshots := usecase.NewSnapshotLoader(snapshotRepo, cache, cfg.ReportCacheTTL, m)
	reportUC := usecase.NewReportUseCase(snapshots, loc, m)
	reconcileUC := usecase.NewReconciliationUseCase(snapshots, m)
	paymentUC := usecase.NewPaymentUseCase(txManager, invoiceRepo, paymentRepo, retrier, idGen, snapshots, m)
	layoutUC := usecase.NewLayoutUseCase(snapshots)
	chatUC := usecase.NewChatUseCase(messageRepo, idGen, nil, m)

	// Chat hub; events from other instances are broadcast locally only
	hubCfg := ws.Config{AllowedOrigins: cfg.CORSOrigins, Metrics: m, Logger: logger}
	if broadcaster != nil {
		hubCfg.Relay = broadcaster
	}
	hub := ws.NewHub(chatUC, hubCfg)
	chatUC.SetPublisher(hub)
	defer hub.Close()

	if broadcaster != nil {
		go func() {
			if err := broadcaster.Subscribe(ctx, hub.Broadcast); err != nil {
				logger.Error().Err(err).Msg("chat relay stopped")
			}
		}()
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
	go rateLimiter.RunCleanup(ctx, rateLimiterIdle)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ReportHandler:    handler.NewReportHandler(reportUC, reconcileUC, loc),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		ChatHandler:      handler.NewChatHandler(chatUC),
		LayoutHandler:    handler.NewLayoutHandler(layoutUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisPinger),
		ChatSocket:       hub.ServeWS,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		JWTManager:       jwtManager,
		CORSOrigins:      cfg.CORSOrigins,
		Logger:           logger,
		Metrics:          m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return logger.WithContext(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	// Sockets are hijacked connections, so Shutdown does not wait for them
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// instanceID names this process on the chat relay.
func instanceID(cfg *config.Config) string {
	if cfg.InstanceID != "" {
		return cfg.InstanceID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fmt.Sprintf("propledger-%d", os.Getpid())
}

func pingRedis(c *redis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return c.Ping(ctx).Err()
	}
}
