package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/covercellhq/covercell-backend/api/controllers"
	"github.com/covercellhq/covercell-backend/api/middleware"
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
	"github.com/covercellhq/covercell-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	cat *catalog.Catalog,
	calc *pricing.Calculator,
	wizardSvc *wizard.Service,
	authSvc auth.Service,
	registerParams controllers.RegisterParams,
	paymentsSvc payments.Service,
	detector detection.Detector,
	mediaStore *media.Store,
	userRepo *users.Repository,
	policyRepo *policies.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	if mediaStore != nil {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(mediaStore.Dir())))
		r.Method(http.MethodGet, "/uploads/*", uploads)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/devices", controllers.CatalogDevices(cat))
			r.Get("/plans", controllers.CatalogPlans(cat))
			r.Get("/addons", controllers.CatalogAddOns(cat))
			r.Get("/pricing/{model}", controllers.CatalogPricing(cat, logg))
		})

		r.Post("/quotes", controllers.QuoteCompute(calc, logg))
		r.Post("/detect", controllers.Detect(detector, mediaStore.MaxBytes(), logg))

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/", controllers.WizardStart(wizardSvc, logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.WizardGet(wizardSvc, logg))
				r.Put("/device-plan", controllers.WizardDevicePlan(wizardSvc, logg))
				r.Put("/personal-info", controllers.WizardPersonalInfo(wizardSvc, logg))
				r.Post("/photos", controllers.WizardPhotos(wizardSvc, mediaStore, logg))
				r.Post("/advance", controllers.WizardAdvance(wizardSvc, logg))
				r.Post("/back", controllers.WizardBack(wizardSvc, logg))
				r.Post("/submit", controllers.WizardSubmit(wizardSvc, authSvc, logg))
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authSvc, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerParams))
			r.Post("/logout", controllers.AuthLogout(authSvc, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(authSvc, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/payments", controllers.PaymentCreate(paymentsSvc, logg))
			r.Get("/payments", controllers.PaymentList(paymentsSvc, logg))
			r.Get("/me", controllers.Me(userRepo, policyRepo, logg))
		})
	})

	return r
}
