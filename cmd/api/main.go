package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/covercellhq/covercell-backend/api/controllers"
	"github.com/covercellhq/covercell-backend/api/routes"
	"github.com/covercellhq/covercell-backend/internal/auth"
	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/detection"
	"github.com/covercellhq/covercell-backend/internal/media"
	"github.com/covercellhq/covercell-backend/internal/payments"
	"github.com/covercellhq/covercell-backend/internal/policies"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/internal/users"
	"github.com/covercellhq/covercell-backend/internal/wizard"
	"github.com/covercellhq/covercell-backend/pkg/auth/session"
	"github.com/covercellhq/covercell-backend/pkg/config"
	"github.com/covercellhq/covercell-backend/pkg/db"
	"github.com/covercellhq/covercell-backend/pkg/logger"
	"github.com/covercellhq/covercell-backend/pkg/metrics"
	"github.com/covercellhq/covercell-backend/pkg/migrate"
	"github.com/covercellhq/covercell-backend/pkg/redis"
	"github.com/covercellhq/covercell-backend/pkg/security"
	pkgstripe "github.com/covercellhq/covercell-backend/pkg/stripe"
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

	cat, err := catalog.New()
	if err != nil {
		logg.Error(context.Background(), "failed to build product catalog", err)
		os.Exit(1)
	}
	calc := pricing.NewCalculator(cat)

	mediaStore, err := media.NewStore(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads directory", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	policyRepo := policies.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:      dbClient,
		Catalog: cat,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	hash := func(password string) (string, error) {
		return security.HashPassword(password, cfg.Password)
	}

	wizardService := wizard.NewService(
		wizard.NewRedisStore(redisClient),
		cat,
		calc,
		registerService,
		hash,
		cfg.Wizard,
		logg,
	)

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:   payments.NewRepository(dbClient.DB()),
		Stripe: payments.NewStripeClient(stripeClient),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	detector := detection.NewStubDetector(cat, cfg.Detection)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	registerParams := controllers.RegisterParams{
		Registrar: registerService,
		Auth:      authService,
		Calc:      calc,
		Media:     mediaStore,
		Hash:      hash,
		Logger:    logg,
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
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			metricsHandler,
			cat,
			calc,
			wizardService,
			authService,
			registerParams,
			paymentService,
			detector,
			mediaStore,
			userRepo,
			policyRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
