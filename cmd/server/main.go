// Package main provides the unified vendor dashboard server:
// - HTTP API (analysis, streak, actions, proofs, notifications, leaderboard)
// - Websocket notification hub
// - Midnight streak reset scheduler
// - Prometheus metrics, health and status endpoints
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/actions"
	"watch2give-vendor/internal/analysis"
	"watch2give-vendor/internal/config"
	"watch2give-vendor/internal/httpapi"
	"watch2give-vendor/internal/leaderboard"
	"watch2give-vendor/internal/ledger"
	"watch2give-vendor/internal/notify"
	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/proofs"
	"watch2give-vendor/internal/queue"
	"watch2give-vendor/internal/storage"
	chstore "watch2give-vendor/internal/storage/clickhouse"
	"watch2give-vendor/internal/storage/memory"
	"watch2give-vendor/internal/storage/migrations"
	pgstore "watch2give-vendor/internal/storage/postgres"
	redisstore "watch2give-vendor/internal/storage/redis"
	"watch2give-vendor/internal/streak"
)

// connectTimeout bounds backend connection retries at startup.
const connectTimeout = 30 * time.Second

// allStores holds all storage implementations.
type allStores struct {
	kvStore           storage.KVStore
	actionStore       storage.ActionStore
	actionStatsStore  storage.ActionStatsStore
	notificationStore storage.NotificationStore
	proofStore        storage.ProofStore
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	// Flags override the environment
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "API HTTP address")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics HTTP address")
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Storage backend (memory, postgres)")
	flag.StringVar(&cfg.StreakBackend, "streak-storage", cfg.StreakBackend, "Streak backend (memory, postgres, redis)")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string (optional)")
	flag.BoolVar(&cfg.Migrate, "migrate", cfg.Migrate, "Apply embedded SQL migrations at startup")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid flags")
	}

	logger := cfg.NewLogger()
	log := logger.WithField("component", "server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		log.WithError(err).Fatal("failed to create stores")
	}
	defer cleanup()

	publisher := queue.New(queue.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close publisher")
		}
	}()

	l := ledger.NewStub(ledger.StubOptions{
		Accounts: []string{cfg.VendorAddress},
		Price:    cfg.TokenPrice(),
		Logger:   logger,
	})

	hub := notify.NewHub(notify.HubOptions{Logger: logger})
	defer hub.Close()

	notifications := notify.NewService(notify.Options{
		Store:       stores.notificationStore,
		Prices:      l,
		Broadcaster: hub,
		Logger:      logger,
	})
	if cfg.StorageBackend == config.BackendMemory {
		if err := notifications.Seed(ctx); err != nil {
			log.WithError(err).Warn("failed to seed notifications")
		}
	}

	scheduler := streak.NewCronScheduler(logger)
	scheduler.Start()
	defer scheduler.Stop()

	tracker := streak.NewTracker(streak.Options{
		Store:     stores.kvStore,
		Key:       cfg.StreakKey,
		Sink:      notify.NewNotifier(notifications),
		Scheduler: scheduler,
		Logger:    logger,
	})
	defer tracker.Stop()

	actionService := actions.NewService(actions.Options{
		Vendor:    cfg.VendorAddress,
		Ledger:    l,
		Store:     stores.actionStore,
		Stats:     stores.actionStatsStore,
		Publisher: publisher,
		Logger:    logger,
	})

	api := httpapi.NewServer(httpapi.Options{
		Analyzer:      analysis.New(),
		Tracker:       tracker,
		Ledger:        l,
		Actions:       actionService,
		Proofs:        proofs.NewService(proofs.Options{Store: stores.proofStore, MaxBytes: cfg.MaxProofBytes, Logger: logger}),
		Notifications: notifications,
		Hub:           hub,
		Board:         leaderboard.New(leaderboard.Options{Counter: stores.actionStore, Name: cfg.VendorName}),
		Vendor:        cfg.VendorAddress,
		RateLimit:     httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:        logger,
	})

	apiServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux(api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{apiServer, metricsServer} {
		go func(srv *http.Server) {
			log.WithField("addr", srv.Addr).Info("starting HTTP server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	log.WithFields(logrus.Fields{
		"vendor":  cfg.VendorAddress,
		"storage": cfg.StorageBackend,
		"streak":  cfg.StreakBackend,
	}).Info("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("received signal, initiating graceful shutdown")
	case err := <-errCh:
		log.WithError(err).Error("server error, shutting down")
	}
	cancel()

	// Wait for second signal for immediate shutdown
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Warn("received second signal, forcing immediate shutdown")
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	for _, srv := range []*http.Server{apiServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).WithField("addr", srv.Addr).Warn("HTTP server shutdown")
		}
	}

	log.Info("shutdown complete")
}

// metricsMux serves /metrics, /health and /status on the metrics address.
func metricsMux(api *httpapi.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Status())
	})
	return mux
}

// createStores creates all required stores.
func createStores(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*allStores, func(), error) {
	log := logger.WithField("component", "server")
	stores := &allStores{
		kvStore:           memory.NewKVStore(),
		actionStore:       memory.NewActionStore(),
		actionStatsStore:  memory.NewActionStatsStore(),
		notificationStore: memory.NewNotificationStore(),
		proofStore:        memory.NewProofStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*allStores, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// PostgreSQL
	if cfg.StorageBackend == config.BackendPostgres || cfg.StreakBackend == config.BackendPostgres {
		pool, err := pgstore.ConnectWithRetry(ctx, cfg.PostgresDSN, connectTimeout)
		if err != nil {
			return fail(fmt.Errorf("connect to postgres: %w", err))
		}
		closers = append(closers, pool.Close)

		if cfg.Migrate {
			applied, err := migrations.RunPostgresMigrations(ctx, pool, logger)
			if err != nil {
				return fail(fmt.Errorf("postgres migrations: %w", err))
			}
			log.WithField("applied", len(applied)).Info("postgres schema up to date")
		}

		if cfg.StorageBackend == config.BackendPostgres {
			stores.actionStore = pgstore.NewActionStore(pool)
			stores.notificationStore = pgstore.NewNotificationStore(pool)
			stores.proofStore = pgstore.NewProofStore(pool)
		}
		if cfg.StreakBackend == config.BackendPostgres {
			stores.kvStore = pgstore.NewKVStore(pool)
		}
	}

	// Redis
	if cfg.StreakBackend == config.BackendRedis {
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, connectTimeout)
		if err != nil {
			return fail(fmt.Errorf("connect to redis: %w", err))
		}
		closers = append(closers, func() { closeRedis(client, log) })
		stores.kvStore = redisstore.NewKVStore(client)
	}

	// ClickHouse analytics are optional
	if cfg.ClickHouseDSN != "" {
		var conn *chstore.Conn
		var err error
		if cfg.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN, logger)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickHouseDSN)
		}
		if err != nil {
			return fail(fmt.Errorf("connect to clickhouse: %w", err))
		}
		closers = append(closers, func() { _ = conn.Close() })
		stores.actionStatsStore = chstore.NewActionStatsStore(conn)
	}

	return stores, cleanup, nil
}

func closeRedis(client *goredis.Client, log logrus.FieldLogger) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis client")
	}
}
