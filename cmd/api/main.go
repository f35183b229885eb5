// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/habitflow/internal/admin"
	"github.com/carterperez-dev/habitflow/internal/auth"
	"github.com/carterperez-dev/habitflow/internal/badge"
	"github.com/carterperez-dev/habitflow/internal/billing"
	"github.com/carterperez-dev/habitflow/internal/challenge"
	"github.com/carterperez-dev/habitflow/internal/config"
	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/habit"
	"github.com/carterperez-dev/habitflow/internal/health"
	"github.com/carterperez-dev/habitflow/internal/jobs"
	"github.com/carterperez-dev/habitflow/internal/leaderboard"
	"github.com/carterperez-dev/habitflow/internal/mail"
	"github.com/carterperez-dev/habitflow/internal/middleware"
	"github.com/carterperez-dev/habitflow/internal/period"
	"github.com/carterperez-dev/habitflow/internal/server"
	"github.com/carterperez-dev/habitflow/internal/stats"
	"github.com/carterperez-dev/habitflow/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.RunMigrations(cfg.Database.MigrationsURL); err != nil {
		return err
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	mailer := mail.NewMailer(cfg.Mail)
	if mailer.Enabled() {
		logger.Info("mailer enabled", "host", cfg.Mail.Host)
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(
		userRepo,
		cfg.Billing.FreeHabitLimit,
		cfg.Jobs.PurgeAfterDays,
	)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	badgeRepo := badge.NewRepository(db.DB)
	badgeSvc := badge.NewService(badgeRepo, userSvc)
	if err := badgeSvc.SeedCatalog(ctx); err != nil {
		return err
	}
	badgeHandler := badge.NewHandler(badgeSvc, db.DB)

	habitRepo := habit.NewRepository(db.DB)
	habitSvc := habit.NewService(db.DB, habitRepo, userSvc, badgeSvc)
	habitHandler := habit.NewHandler(habitSvc, userSvc)

	statsRepo := stats.NewRepository(db.DB)
	statsSvc := stats.NewService(statsRepo, userSvc)
	statsHandler := stats.NewHandler(statsSvc)

	leaderboardRepo := leaderboard.NewRepository(db.DB)
	leaderboardSvc := leaderboard.NewService(
		leaderboardRepo,
		redis.Client,
		cfg.Leaderboard.CacheTTL,
		cfg.Leaderboard.PageSize,
	)
	leaderboardHandler := leaderboard.NewHandler(leaderboardSvc)

	challengeRepo := challenge.NewRepository(db.DB)
	challengeSvc := challenge.NewService(
		db.DB,
		challengeRepo,
		userSvc,
		habitSvc,
		cfg.App.FrontendURL,
	)
	challengeHandler := challenge.NewHandler(challengeSvc)
	habitSvc.SetCompletionHook(challengeSvc)

	periodRepo := period.NewRepository(db.DB)
	periodSvc := period.NewService(db.DB, periodRepo, userSvc)
	periodHandler := period.NewHandler(periodSvc)

	billingRepo := billing.NewRepository(db.DB)
	reconciler := billing.NewReconciler(
		db.DB, billingRepo, userRepo, habitRepo, mailer, cfg.Billing,
	)
	stripeClient := billing.NewStripeClient(cfg.Payments.Stripe)
	paypalClient := billing.NewPayPalClient(cfg.Payments.PayPal)
	coinbaseClient := billing.NewCoinbaseClient(cfg.Payments.Coinbase)
	tilopayClient := billing.NewTiloPayClient(cfg.Payments.TiloPay)
	billingSvc := billing.NewService(
		billingRepo, userRepo, reconciler,
		stripeClient, paypalClient, coinbaseClient, tilopayClient,
		cfg.Billing, cfg.App.FrontendURL,
	)
	billingHandler := billing.NewHandler(billingSvc)
	webhookHandler := billing.NewWebhookHandler(
		reconciler, userRepo, paypalClient, cfg.Payments,
	)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	// Provider callbacks carry their own signatures instead of JWTs.
	webhookHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		r.Post("/users", authHandler.Register)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		habitHandler.RegisterRoutes(r, authenticator)
		badgeHandler.RegisterRoutes(r, authenticator)
		statsHandler.RegisterRoutes(r, authenticator)
		leaderboardHandler.RegisterRoutes(r, authenticator)
		challengeHandler.RegisterRoutes(r, authenticator)
		periodHandler.RegisterRoutes(r, authenticator)
		billingHandler.RegisterRoutes(r, authenticator)
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(
			cfg.Jobs, userRepo, habitRepo, reconciler, mailer,
		)
		if err := scheduler.Start(); err != nil {
			return err
		}
		logger.Info("job scheduler started")
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
		logger.Info("job scheduler stopped")
	}

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler
	level := slog.LevelInfo

	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
