package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/db"
	"github.com/fritter/fritter/internal/feed"
	"github.com/fritter/fritter/pkg/config"
	"github.com/fritter/fritter/pkg/logging"
)

// The reaper closes the liveness gap of lazy audit resolution: a freet under
// audit that stops receiving votes would otherwise stay in testing forever.
// It periodically resolves every audit whose window has elapsed. The server
// never schedules this; it is an opt-in companion process.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger().With(zap.String("component", "reaper"))
	logger.Info("Starting Fritter audit reaper")

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	store := db.NewStore(database)
	clock := feed.SystemClock{}
	policy := feed.PolicyFromConfig(&cfg.Feed)
	audits := feed.NewAuditProcess(store, clock, policy, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down reaper...")
		cancel()
	}()

	if err := run(ctx, audits, cfg.Reaper.IntervalSeconds, logger); err != nil && err != context.Canceled {
		logger.Fatal("Reaper failed", zap.Error(err))
	}

	logger.Info("Reaper exited")
}

// run sweeps expired audits until the context is cancelled
func run(ctx context.Context, audits *feed.AuditProcess, intervalSeconds int, logger *zap.Logger) error {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resolved, err := audits.ResolveExpired(ctx)
			if err != nil {
				logger.Error("Failed to resolve expired audits", zap.Error(err))
				continue
			}
			if resolved > 0 {
				logger.Info("Resolved expired audits", zap.Int("count", resolved))
			}
		}
	}
}
