package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds everything the HTTP surface is built from
type RouterConfig struct {
	Handlers       *Handlers
	Webhooks       http.Handler
	Merchants      MerchantResolver
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	SwaggerFile    string
	Logger         zerolog.Logger
}

// NewRouter builds the chi router with public, merchant-scoped and webhook routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", headerMerchantID, headerAPIKey, headerSessionID},
		ExposedHeaders:   []string{headerSessionID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	swaggerFile := cfg.SwaggerFile
	if swaggerFile == "" {
		swaggerFile = "./docs/swagger.json"
	}
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, swaggerFile)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if cfg.Webhooks != nil {
		r.Method(http.MethodPost, "/webhooks/shopify/{merchantId}", cfg.Webhooks)
	}

	h := cfg.Handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(merchantIdentity(cfg.Merchants, cfg.Logger))

		r.Post("/chat", h.Chat)

		r.Group(func(r chi.Router) {
			r.Use(requireAPIKey(cfg.Merchants, cfg.Logger))

			r.Get("/products", h.ListProducts)
			r.Post("/products/sync", h.SyncProducts)
			r.Post("/products/rescrape", h.RescrapeProducts)

			r.Get("/usage", h.GetUsage)
			r.Get("/abandoned-carts", h.ListAbandonedCarts)
			r.Get("/analytics/outcomes", h.GetOutcomes)
		})
	})

	return r
}
