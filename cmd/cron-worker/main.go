package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pmcollective/pmc-backend/internal/buddies"
	"github.com/pmcollective/pmc-backend/internal/cron"
	"github.com/pmcollective/pmc-backend/internal/digest"
	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/config"
	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/email"
	"github.com/pmcollective/pmc-backend/pkg/logger"
	"github.com/pmcollective/pmc-backend/pkg/metrics"
	"github.com/pmcollective/pmc-backend/pkg/migrate"
	"github.com/pmcollective/pmc-backend/pkg/redis"
)

const lockKeyFormat = "pmc:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mailer, err := email.NewClient(cfg.Resend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	digestService, err := digest.NewService(digest.ServiceParams{
		BuddiesRepo: buddies.NewRepository(dbClient.DB()),
		UsersRepo:   users.NewRepository(dbClient.DB()),
		Mailer:      mailer,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	digestJob, err := cron.NewDigestJob(digestService, metricsCollector)
	if err != nil {
		logg.Error(context.Background(), "failed to create digest job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(digestJob)

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Digest.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Digest.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
