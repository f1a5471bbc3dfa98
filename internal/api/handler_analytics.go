package api

import (
	"net/http"
	"time"

	"booklake/internal/domain"
	"booklake/internal/service/books"
)

// CategoryPerformance handles GET /api/v1/analytics/categories.
func (h *Handler) CategoryPerformance(w http.ResponseWriter, r *http.Request) {
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	categories, err := h.analytics.CategoryPerformance(r.Context(), dates)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":             categories,
		"total_categories": len(categories),
	})
}

// CustomerSegments handles GET /api/v1/analytics/customer-segments.
func (h *Handler) CustomerSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.analytics.CustomerSegments(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":           segments,
		"total_segments": len(segments),
	})
}

// Comprehensive handles GET /api/v1/analytics/comprehensive: the combined
// dashboard payload assembled from the individual analytics calls.
func (h *Handler) Comprehensive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.analytics.Overview(ctx)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	categories, err := h.analytics.CategoryPerformance(ctx, domain.DateRange{})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	segments, err := h.analytics.CustomerSegments(ctx)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	topPerformers := make(map[string][]domain.TopBook, 2)
	for _, m := range []struct {
		key    string
		metric domain.Metric
	}{
		{"by_revenue", domain.MetricRevenue},
		{"by_sales_count", domain.MetricSalesCount},
	} {
		result, err := h.books.TopBooks(ctx, books.Query{Limit: 5, Metric: m.metric})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		topPerformers[m.key] = result.Data
	}

	writeJSON(w, http.StatusOK, domain.ComprehensiveAnalytics{
		Overview:            *overview,
		CategoryPerformance: categories,
		CustomerSegments:    segments,
		TopPerformers:       topPerformers,
		GeneratedAt:         time.Now().UTC(),
	})
}
