package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pricing-profiles-backend/api/controllers"
	"github.com/angelmondragon/pricing-profiles-backend/api/middleware"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	"github.com/angelmondragon/pricing-profiles-backend/internal/worksheet"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Redis and Registry may be
// nil; without Redis the idempotency middleware is disabled.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	Registry   *prometheus.Registry
	Catalog    controllers.ProductLister
	Profiles   profiles.Service
	Worksheets worksheet.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	readiness := []controllers.Dependency{{Name: "database", Pinger: deps.DB}}
	var idempotencyStore redis.IdempotencyStore
	if deps.Redis != nil {
		readiness = append(readiness, controllers.Dependency{Name: "redis", Pinger: deps.Redis})
		idempotencyStore = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, cfg.Profiles.IdempotencyTTL, logg)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/catalog/facets", controllers.CatalogFacets())

		r.Get("/profiles", controllers.ListProfiles(deps.Profiles, logg))
		r.With(idempotent).Post("/profiles", controllers.CreateProfile(deps.Profiles, logg))
		r.Get("/profiles/{ref}", controllers.GetProfile(deps.Profiles, logg))
		r.With(idempotent).Put("/profiles/{ref}", controllers.ReplaceProfile(deps.Profiles, logg))

		r.Post("/v1/worksheets/preview", controllers.PreviewWorksheet(deps.Worksheets, logg))
		r.With(idempotent).Post("/v1/worksheets/save", controllers.SaveWorksheet(deps.Worksheets, logg))
	})

	return r
}
