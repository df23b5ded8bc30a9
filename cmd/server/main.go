package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fiscalid/internal/audit"
	"fiscalid/internal/platform/config"
	"fiscalid/internal/platform/httpserver"
	"fiscalid/internal/platform/kafka"
	"fiscalid/internal/platform/logger"
	"fiscalid/internal/platform/metrics"
	"fiscalid/internal/platform/otel"
	"fiscalid/internal/platform/postgres"
	"fiscalid/internal/platform/redis"
	profilehandler "fiscalid/internal/profile/handler"
	profilemetrics "fiscalid/internal/profile/metrics"
	profileservice "fiscalid/internal/profile/service"
	ratelimitmetrics "fiscalid/internal/ratelimit/metrics"
	ratelimit "fiscalid/internal/ratelimit/middleware"
	ratelimitmodels "fiscalid/internal/ratelimit/models"
	"fiscalid/internal/ratelimit/store/bucket"
	"fiscalid/internal/recordstore"
	"fiscalid/internal/taxpayer/cache"
	"fiscalid/internal/taxpayer/client"
	taxpayerhandler "fiscalid/internal/taxpayer/handler"
	taxpayermetrics "fiscalid/internal/taxpayer/metrics"
	taxpayerservice "fiscalid/internal/taxpayer/service"
	httptransport "fiscalid/internal/transport/http"
	"fiscalid/pkg/platform/circuit"
)

// main wires dependencies and runs the server until SIGINT/SIGTERM.
// Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fiscalid stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	var health []httptransport.HealthCheck

	customers, metafields, db, err := buildStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		health = append(health, httptransport.HealthCheck{Name: "store", Check: db.PingContext})
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if rc != nil {
		defer rc.Close()
		health = append(health, httptransport.HealthCheck{Name: "redis", Check: rc.Health})
	}

	tpMetrics := taxpayermetrics.New()
	lookupCache := buildCache(cfg.Registry, rc, tpMetrics, log)
	limiter := buildRateLimiter(cfg.RateLimit, rc, log)

	breaker := circuit.New("taxpayer-registry",
		circuit.WithFailureThreshold(cfg.Registry.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.Registry.SuccessThreshold),
		circuit.WithCooldown(cfg.Registry.BreakerCooldown),
	)
	registry := client.New(client.Config{
		BaseURL:     cfg.Registry.BaseURL,
		APIKey:      cfg.Registry.APIKey,
		CompanyCode: cfg.Registry.CompanyCode,
		Timeout:     cfg.Registry.Timeout,
	},
		client.WithBreaker(breaker),
		client.WithLogger(log),
		client.WithMetrics(tpMetrics),
	)
	if !registry.Configured() {
		log.Warn("taxpayer registry api key is not set; registry lookups will fail")
	}
	validator := taxpayerservice.New(registry,
		taxpayerservice.WithCache(lookupCache),
		taxpayerservice.WithLogger(log),
		taxpayerservice.WithMetrics(tpMetrics),
	)

	sink, closeSink, err := buildAuditSink(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeSink()
	auditor := audit.NewPublisher(sink,
		audit.WithAsyncBuffer(cfg.Kafka.AuditQueue),
		audit.WithLogger(log),
	)
	defer auditor.Close()

	profiles := profileservice.New(customers, metafields, validator,
		profileservice.WithAuditor(auditor),
		profileservice.WithLogger(log),
		profileservice.WithMetrics(profilemetrics.New()),
	)

	proxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	if len(proxies) == 0 {
		log.Warn("no trusted proxies configured; rate limits key on the peer address")
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         health,
		TrustedProxies: proxies,
	},
		profilehandler.New(profiles, log,
			profilehandler.WithWriteGuards(limiter.RateLimit(ratelimitmodels.ClassProfileWrite)),
		),
		taxpayerhandler.New(validator, log,
			taxpayerhandler.WithGuards(limiter.RateLimit(ratelimitmodels.ClassRegistryLookup)),
		),
	)

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting fiscalid", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildStore returns the db handle only for the postgres driver.
func buildStore(ctx context.Context, cfg config.Store, log *slog.Logger) (recordstore.CustomerStore, recordstore.MetafieldStore, *sql.DB, error) {
	if cfg.Driver != "postgres" {
		log.Info("using in-memory record store")
		s := recordstore.NewMemoryStore()
		return s, s, nil, nil
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("record store: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("record store: %w", err)
	}
	s := recordstore.NewPostgres(db)
	return s, s, db, nil
}

func buildCache(cfg config.Registry, rc *redis.Client, m *taxpayermetrics.Metrics, log *slog.Logger) cache.Cache {
	if rc == nil {
		log.Info("redis not configured; using in-memory registry cache")
		return cache.NewMemoryCache(cfg.CacheTTL, cache.WithMemoryMetrics(m))
	}
	return cache.NewRedisCache(rc.Client, cfg.CacheTTL, m)
}

// buildRateLimiter keeps buckets in Redis when available, falling back to
// process memory if Redis errors mid-flight.
func buildRateLimiter(cfg config.RateLimit, rc *redis.Client, log *slog.Logger) *ratelimit.Middleware {
	limits := map[ratelimitmodels.Class]ratelimitmodels.Limit{
		ratelimitmodels.ClassRegistryLookup: {Requests: cfg.Lookups, Window: cfg.Window},
		ratelimitmodels.ClassProfileWrite:   {Requests: cfg.Writes, Window: cfg.Window},
	}
	opts := []ratelimit.Option{
		ratelimit.WithDisabled(cfg.Disabled),
		ratelimit.WithMetrics(ratelimitmetrics.New()),
	}
	if rc == nil {
		return ratelimit.New(bucket.NewMemoryStore(), limits, log, opts...)
	}
	opts = append(opts, ratelimit.WithFallback(bucket.NewMemoryStore()))
	return ratelimit.New(bucket.NewRedisStore(rc.Client), limits, log, opts...)
}

func buildAuditSink(ctx context.Context, cfg config.Kafka, log *slog.Logger) (audit.Sink, func(), error) {
	kc, err := kafka.NewProducer(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("audit producer: %w", err)
	}
	if kc == nil {
		log.Info("kafka not configured; audit events go to the log")
		return audit.NewLogSink(log), func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, kc, cfg.AuditTopic, cfg.Partitions); err != nil {
		kc.Close()
		return nil, nil, err
	}
	return audit.NewKafkaSink(kc, cfg.AuditTopic), kc.Close, nil
}
