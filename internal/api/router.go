package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"booklake/internal/middleware"
)

// RouterConfig holds the cross-cutting knobs the router needs.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimit          middleware.RateLimitConfig
	// Dashboard, when set, is mounted at /dashboard with / redirecting to it.
	Dashboard http.Handler
}

// NewRouter assembles the full route table with middleware.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit))
	}

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sales/daily", h.DailySales)
		r.Get("/sales/summary", h.SalesSummary)
		r.Get("/books/top", h.TopBooks)
		r.Get("/books/top-by-category", h.TopBooksByCategory)
		r.Get("/users/{id}/history", h.UserHistory)
		r.Get("/users/{id}/analytics", h.UserAnalytics)
		r.Get("/analytics/categories", h.CategoryPerformance)
		r.Get("/analytics/customer-segments", h.CustomerSegments)
		r.Get("/analytics/comprehensive", h.Comprehensive)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/daily-sales-trends", h.LegacyDailyTrends)
		r.Get("/daily-sales-trends-range", h.LegacyDailyTrendsRange)
		r.Get("/top-books", h.LegacyTopBooks)
		r.Get("/user-analytics", h.LegacyUserActivity)
		r.Get("/monthly-trends", h.LegacyMonthlyTrends)
		r.Get("/sales-summary", h.LegacySalesSummary)
		r.Get("/category-performance", h.LegacyCategoryPerformance)
		r.Get("/customer-segments", h.LegacyCustomerSegments)
	})

	r.Get("/debug/data-status", h.DataStatus)

	if cfg.Dashboard != nil {
		r.Mount("/dashboard", cfg.Dashboard)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
	}

	return r
}
