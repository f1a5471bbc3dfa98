// Package ui serves the server-rendered analytics dashboard: one overview
// page plus fragment endpoints that datastar polls to keep it fresh.
package ui

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gomponents "maragu.dev/gomponents"

	"booklake/internal/domain"
	"booklake/internal/service/analytics"
	"booklake/internal/service/books"
	"booklake/internal/service/sales"
)

// basePath is where the router mounts the dashboard.
const basePath = "/dashboard"

// revenueWindowDays is how much daily history the revenue chart shows.
const revenueWindowDays = 30

// Handler renders the dashboard pages.
type Handler struct {
	sales     *sales.Service
	books     *books.Service
	analytics *analytics.Service
	logger    *slog.Logger
}

// NewHandler creates the dashboard handler.
func NewHandler(salesSvc *sales.Service, booksSvc *books.Service, analyticsSvc *analytics.Service, logger *slog.Logger) *Handler {
	return &Handler{
		sales:     salesSvc,
		books:     booksSvc,
		analytics: analyticsSvc,
		logger:    logger.With("component", "ui"),
	}
}

// Routes returns the dashboard route table, relative to the mount point.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Dashboard)
	r.Get("/fragments/overview", h.OverviewFragment)
	r.Get("/fragments/revenue", h.RevenueFragment)
	r.Get("/fragments/top-books", h.TopBooksFragment)
	r.Get("/fragments/categories", h.CategoriesFragment)
	return r
}

// Dashboard renders the full page with all sections populated.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.analytics.Overview(ctx)
	if err != nil {
		h.renderError(w, err)
		return
	}
	daily, err := h.recentDaily(r)
	if err != nil {
		h.renderError(w, err)
		return
	}
	top, err := h.books.TopBooks(ctx, books.Query{Limit: 10, Metric: domain.MetricRevenue})
	if err != nil {
		h.renderError(w, err)
		return
	}
	categories, err := h.analytics.CategoryPerformance(ctx, domain.DateRange{})
	if err != nil {
		h.renderError(w, err)
		return
	}

	renderHTML(w, http.StatusOK, dashboardPage(dashboardData{
		Overview:   *overview,
		Daily:      daily,
		TopBooks:   top.Data,
		Categories: categories,
	}))
}

// OverviewFragment re-renders the headline cards.
func (h *Handler) OverviewFragment(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Overview(r.Context())
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, overviewSection(*overview))
}

// RevenueFragment re-renders the revenue chart.
func (h *Handler) RevenueFragment(w http.ResponseWriter, r *http.Request) {
	daily, err := h.recentDaily(r)
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, revenueSection(daily))
}

// TopBooksFragment re-renders the top-books table.
func (h *Handler) TopBooksFragment(w http.ResponseWriter, r *http.Request) {
	top, err := h.books.TopBooks(r.Context(), books.Query{Limit: 10, Metric: domain.MetricRevenue})
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, topBooksSection(top.Data))
}

// CategoriesFragment re-renders the market-share table.
func (h *Handler) CategoriesFragment(w http.ResponseWriter, r *http.Request) {
	categories, err := h.analytics.CategoryPerformance(r.Context(), domain.DateRange{})
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, categoriesSection(categories))
}

func (h *Handler) recentDaily(r *http.Request) ([]domain.DailySales, error) {
	result, err := h.sales.DailySales(r.Context(), sales.Query{
		Page: domain.Page{Limit: revenueWindowDays, Offset: 0},
	})
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (h *Handler) renderError(w http.ResponseWriter, err error) {
	h.logger.Error("dashboard render failed", "error", err)
	renderHTML(w, http.StatusInternalServerError,
		errorPage("Dashboard Unavailable", "The warehouse could not be queried. Try again shortly."))
}

func (h *Handler) fragmentError(w http.ResponseWriter, err error) {
	h.logger.Warn("fragment refresh failed", "error", err)
	// Empty body: datastar leaves the previous fragment in place.
	w.WriteHeader(http.StatusNoContent)
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}
