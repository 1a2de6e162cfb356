package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"watch2give-vendor/internal/config"
	"watch2give-vendor/internal/storage"
	pgstore "watch2give-vendor/internal/storage/postgres"
	redisstore "watch2give-vendor/internal/storage/redis"
	"watch2give-vendor/internal/streak"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags
	backend := flag.String("backend", cfg.StreakBackend, "Streak backend (postgres, redis)")
	key := flag.String("key", cfg.StreakKey, "Storage key of the streak record")
	resetDaily := flag.Bool("reset-daily", false, "Clear the updated-today flag instead of recording activity")
	timeout := flag.Duration("timeout", 30*time.Second, "Connection and operation timeout")
	flag.Parse()

	logger := cfg.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, *backend, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	tracker := streak.NewTracker(streak.Options{Store: store, Key: *key, Logger: logger})

	if *resetDaily {
		if err := tracker.ResetDaily(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error resetting streak: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Daily flag cleared")
		return
	}

	res, err := tracker.GetOrUpdate(ctx, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating streak: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Streak: %d\n", res.Count)
	if res.MilestoneReached {
		fmt.Println("Milestone reached!")
	}
}

// openStore connects to the persistent backend holding the streak record.
func openStore(ctx context.Context, cfg *config.Config, backend string, timeout time.Duration) (storage.KVStore, func(), error) {
	switch backend {
	case config.BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
		pool, err := pgstore.ConnectWithRetry(ctx, cfg.PostgresDSN, timeout)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewKVStore(pool), pool.Close, nil
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, timeout)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewKVStore(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("backend %q does not persist between runs; use postgres or redis", backend)
	}
}
