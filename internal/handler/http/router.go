package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/render"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// catalogMaxAge is the public cache lifetime of catalog reads, in seconds.
const catalogMaxAge = 60

// RouterDeps is everything the HTTP surface calls into.
type RouterDeps struct {
	Catalogs  CatalogService
	Sessions  Sessions
	Assembler Assembler
	Renderer  *render.Renderer
	Tags      TagService
	Images    ImageService
	Health    *health.Handler

	Cookie            session.CookieConfig
	Currency          string
	PprofAllowedCIDRs []string

	// Per-IP limit on the AI assist endpoints; zero disables it.
	AssistRPS   float64
	AssistBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Ops endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.MountDebug(r, deps.PprofAllowedCIDRs, logger)

	catalogHandler := NewCatalogHandler(deps.Catalogs, logger)
	cartHandler := NewCartHandler(deps.Sessions, deps.Catalogs, deps.Currency, logger)
	checkoutHandler := NewCheckoutHandler(deps.Sessions, deps.Assembler, deps.Renderer, deps.Currency, logger)
	assistHandler := NewAssistHandler(deps.Tags, deps.Images, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Shared, session-free reads
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.CacheControl(catalogMaxAge))

			r.Get("/catalogs", catalogHandler.ListCatalogs)
			r.Get("/catalogs/{catalogId}", catalogHandler.GetCatalog)
			r.Get("/catalogs/{catalogId}/items", catalogHandler.ListItems)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.NoStore)
			r.Use(middleware.RateLimit(deps.AssistRPS, deps.AssistBurst, logger))

			r.Post("/assist/tags", assistHandler.SuggestTags)
			r.Post("/assist/image", assistHandler.GenerateImage)
		})

		// Per-shopper state
		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(deps.Cookie))
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.NoStore)

			r.Get("/cart", cartHandler.GetCart)
			r.Delete("/cart", cartHandler.ClearCart)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Put("/cart/items/{itemId}", cartHandler.UpdateQuantity)
			r.Delete("/cart/items/{itemId}", cartHandler.RemoveItem)

			r.Get("/checkout/prefill", checkoutHandler.Prefill)
			r.Post("/checkout", checkoutHandler.Submit)

			r.Get("/orders/current", checkoutHandler.CurrentOrder)
			r.Get("/orders/current/pdf", checkoutHandler.OrderPDF)
			r.Get("/orders/current/share", checkoutHandler.ShareOrder)
		})
	})

	return r
}
