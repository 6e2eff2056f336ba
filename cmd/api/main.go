package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/pmcollective/pmc-backend/api/routes"
	"github.com/pmcollective/pmc-backend/internal/buddies"
	"github.com/pmcollective/pmc-backend/internal/events"
	"github.com/pmcollective/pmc-backend/internal/messaging"
	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/config"
	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/email"
	"github.com/pmcollective/pmc-backend/pkg/logger"
	"github.com/pmcollective/pmc-backend/pkg/migrate"
	"github.com/pmcollective/pmc-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	usersRepo := users.NewRepository(dbClient.DB())
	buddiesRepo := buddies.NewRepository(dbClient.DB())

	usersService, err := users.NewService(users.ServiceParams{Repo: usersRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	buddiesService, err := buddies.NewService(buddies.ServiceParams{
		Repo:      buddiesRepo,
		UsersRepo: usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create buddies service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.ServiceParams{
		Repo:        messaging.NewRepository(dbClient.DB()),
		BuddiesRepo: buddiesRepo,
		UsersRepo:   usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create messaging service", err)
		os.Exit(1)
	}

	eventsService, err := events.NewService(events.ServiceParams{
		Repo:   events.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Mailer: mailer,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient,
			usersService, buddiesService, messagingService, eventsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
