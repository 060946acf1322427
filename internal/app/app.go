package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/order"
	"github.com/xenking/tapsilat-checkout/internal/domain/subscription"
	"github.com/xenking/tapsilat-checkout/internal/domain/term"
	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
	"github.com/xenking/tapsilat-checkout/internal/handler"
	"github.com/xenking/tapsilat-checkout/internal/storage/file"
	"github.com/xenking/tapsilat-checkout/internal/storage/postgres"
	"github.com/xenking/tapsilat-checkout/internal/storage/redis"
	"github.com/xenking/tapsilat-checkout/internal/tapsilat"
	"github.com/xenking/tapsilat-checkout/pkg/health"
	"github.com/xenking/tapsilat-checkout/pkg/httpmiddleware"
)

const serviceName = "tapsilat-checkout"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("webhooks_backend", cfg.Webhooks.Backend),
		zap.Bool("database", cfg.DatabaseURL != ""),
		zap.Bool("redis", cfg.Redis.Enabled()),
	)
	if cfg.Provider.APIKey == "" {
		lg.Warn("Provider API key is not set, payment calls will fail",
			zap.String("hint", "set CHECKOUT_PROVIDER_API_KEY or TAPSILAT_API_KEY"),
		)
	}

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))

	// PostgreSQL pool + migrations, when configured.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	}

	// Redis backs Idempotency-Key handling, when configured.
	var idempotency httpmiddleware.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, redis.Options{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()

		idempotency = redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		healthSvc.AddReadinessCheck("redis", 2*time.Second, redisPing(rdb))
	}

	// Webhook store.
	store, err := newWebhookStore(cfg.Webhooks, pool)
	if err != nil {
		return errors.Wrap(err, "create webhook store")
	}
	if fs, ok := store.(*file.WebhookStore); ok {
		healthSvc.AddReadinessCheck("webhooks_dir", time.Second, health.DirWritableCheck(fs.Dir()))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Payment provider.
	client := tapsilat.NewClient(tapsilat.Options{
		BaseURL:        cfg.Provider.BaseURL,
		APIKey:         cfg.Provider.APIKey,
		Timeout:        cfg.Provider.Timeout,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})

	// Domain services.
	assembler := checkout.NewAssembler(cfg.Checkout.Assembler())
	var ledger order.Repository
	if pool != nil {
		ledger = postgres.NewCheckoutRepository(pool)
	}
	broker := webhook.NewBroker(cfg.Webhooks.StreamBuffer)

	metrics, err := handler.NewMetrics(m.MeterProvider().Meter(serviceName))
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}

	// HTTP handlers.
	h, err := handler.NewHandler(
		handler.Config{
			PublicURL:       cfg.PublicURL,
			StreamHeartbeat: cfg.Webhooks.StreamHeartbeat,
		},
		handler.Services{
			Orders:        order.NewService(assembler, client, ledger),
			Subscriptions: subscription.NewService(client, client, assembler.Config()),
			Terms:         term.NewService(client, client),
			Webhooks:      webhook.NewService(store, broker),
			Broker:        broker,
			Provider:      client,
			Idempotency:   idempotency,
			Metrics:       metrics,
		},
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	// Router: health endpoints + API routes on one server.
	router := h.Routes()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	routeFinder := httpmiddleware.MakeRouteFinder(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Longer than the provider timeout so relayed provider errors reach
		// the caller. The event stream clears its own deadline.
		WriteTimeout:   cfg.Provider.Timeout + 10*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{
					"Content-Type",
					"Authorization",
					httpmiddleware.IdempotencyKeyHeader,
					httpmiddleware.RequestIDHeader,
				},
				ExposeHeaders: []string{
					httpmiddleware.RequestIDHeader,
					httpmiddleware.IdempotentReplayedHeader,
				},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
				Skip:   handler.IsCallback,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument(serviceName, routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newWebhookStore opens the configured webhook store backend.
func newWebhookStore(cfg WebhooksConfig, pool *pgxpool.Pool) (webhook.Store, error) {
	switch cfg.Backend {
	case WebhookBackendPostgres:
		if pool == nil {
			return nil, errors.New("postgres backend requires a database")
		}
		return postgres.NewWebhookStore(pool), nil
	case WebhookBackendFile:
		return file.NewWebhookStore(cfg.Dir)
	default:
		return nil, errors.Errorf("unknown backend %q", cfg.Backend)
	}
}

func redisPing(rdb *goredis.Client) health.CheckFunc {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
