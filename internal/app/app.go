// Package app wires the storefront API server: configuration, storage,
// domain services, the outbox relay, and the HTTP stack.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storely/storefront/internal/api"
	"github.com/storely/storefront/internal/domain/client"
	"github.com/storely/storefront/internal/domain/order"
	"github.com/storely/storefront/internal/events"
	"github.com/storely/storefront/internal/storage/postgres"
	"github.com/storely/storefront/pkg/health"
	"github.com/storely/storefront/pkg/httpmiddleware"
)

// phoneIndexCapacity sizes the bloom filter for known client phone
// numbers. At a 1% false positive rate this costs under 2 MB.
const (
	phoneIndexCapacity = 1_000_000
	phoneIndexFPR      = 0.01
)

// Run creates all dependencies, starts the HTTP server and the outbox
// relay, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Bloom fast path for client phone lookups, warmed from the database.
	phoneIdx := client.NewPhoneIndex(phoneIndexCapacity, phoneIndexFPR)
	phones, err := clientRepo.ListPhones(ctx)
	if err != nil {
		return errors.Wrap(err, "warm phone index")
	}
	phoneIdx.Warm(phones)
	lg.Info("Phone index warmed", zap.Int("phones", len(phones)))

	// Domain services.
	orderService := order.NewService(storeRepo, productRepo, clientRepo, orderRepo, txRunner, outboxRepo)
	orderService.UsePhoneIndex(phoneIdx)

	// Event publishing: Kafka when brokers are configured, no-op otherwise.
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		lg.Info("Kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		lg.Warn("No Kafka brokers configured, events stay in the outbox")
	}
	defer func() {
		_ = publisher.Close()
	}()
	relay := events.NewRelay(outboxRepo, publisher, lg.Named("relay"), cfg.Outbox.Interval, cfg.Outbox.Batch)

	// HTTP handlers.
	h := api.NewHandler(
		orderService,
		productRepo,
		storeRepo,
		apikeyRepo,
		outboxRepo,
		txRunner,
		[]byte(cfg.APIKeyPepper),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return relay.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	// Graceful shutdown: drain readiness, wait, then stop the server.
	g.Go(func() error {
		<-gctx.Done()
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
		return nil
	})

	return g.Wait()
}
