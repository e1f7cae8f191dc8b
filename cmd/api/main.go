package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rationsetu/rationsetu-backend/api/routes"
	"github.com/rationsetu/rationsetu-backend/internal/allocations"
	"github.com/rationsetu/rationsetu-backend/internal/auth"
	"github.com/rationsetu/rationsetu-backend/internal/complaints"
	"github.com/rationsetu/rationsetu-backend/internal/cron"
	"github.com/rationsetu/rationsetu-backend/internal/notifications"
	"github.com/rationsetu/rationsetu-backend/internal/stocks"
	"github.com/rationsetu/rationsetu-backend/internal/timeslots"
	"github.com/rationsetu/rationsetu-backend/internal/users"
	"github.com/rationsetu/rationsetu-backend/pkg/auth/session"
	"github.com/rationsetu/rationsetu-backend/pkg/config"
	"github.com/rationsetu/rationsetu-backend/pkg/db"
	"github.com/rationsetu/rationsetu-backend/pkg/logger"
	"github.com/rationsetu/rationsetu-backend/pkg/metrics"
	"github.com/rationsetu/rationsetu-backend/pkg/migrate"
	"github.com/rationsetu/rationsetu-backend/pkg/pubsub"
	"github.com/rationsetu/rationsetu-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	// Broadcast fan-out is optional; without GCP config notifications are
	// stored but not pushed.
	var notificationPublisher notifications.Publisher
	if cfg.GCP.ProjectID != "" {
		pubsubClient, psErr := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if psErr != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", psErr)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		if publisher := pubsubClient.NotificationPublisher(); publisher != nil {
			notificationPublisher = publisher
		}
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	stocksService, err := stocks.NewService(stocks.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create stocks service", err)
		os.Exit(1)
	}

	allocationsService, err := allocations.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocations service", err)
		os.Exit(1)
	}

	timeslotsService, err := timeslots.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create timeslots service", err)
		os.Exit(1)
	}

	complaintsService, err := complaints.NewService(complaints.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create complaints service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:      notifications.NewRepository(gormDB),
		Publisher: notificationPublisher,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionChecker: sessionManager,
		HTTPMetrics:    httpMetrics,

		Auth:          authService,
		Users:         usersService,
		Stocks:        stocksService,
		Allocations:   allocationsService,
		TimeSlots:     timeslotsService,
		Complaints:    complaintsService,
		Notifications: notificationsService,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
		lock, lockErr := cron.NewRedisLock(redisClient, "slot-completion", cfg.Cron.LockTTL)
		if lockErr != nil {
			logg.Error(ctx, "failed to create cron lock", lockErr)
			os.Exit(1)
		}

		slotJob, jobErr := cron.NewSlotCompletionJob(cron.SlotCompletionJobParams{
			Logger:    logg,
			TimeSlots: timeslotsService,
		})
		if jobErr != nil {
			logg.Error(ctx, "failed to create slot completion job", jobErr)
			os.Exit(1)
		}

		cronService, cronErr := cron.NewService(cron.ServiceParams{
			Logger:   logg,
			Registry: cron.NewRegistry(slotJob),
			Lock:     lock,
			Metrics:  cronMetrics,
			Interval: cfg.Cron.SlotCompletionEvery,
		})
		if cronErr != nil {
			logg.Error(ctx, "failed to create cron service", cronErr)
			os.Exit(1)
		}

		go func() {
			if err := cronService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "cron loop stopped unexpectedly", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Cron.ShutdownGracePeriod)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(logCtx, "api server shut down gracefully")
	}
}
