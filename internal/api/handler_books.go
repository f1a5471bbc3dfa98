package api

import (
	"net/http"

	"booklake/internal/domain"
	"booklake/internal/service/books"
)

// TopBooks handles GET /api/v1/books/top.
func (h *Handler) TopBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 5, 1, 100)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	metricRaw := r.URL.Query().Get("metric")
	if metricRaw == "" {
		metricRaw = string(domain.MetricRevenue)
	}
	metric, err := domain.ParseMetric(metricRaw)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	timeRange, err := domain.ParseTimeRange(r.URL.Query().Get("time_range"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.books.TopBooks(r.Context(), books.Query{
		Limit:     limit,
		Metric:    metric,
		Category:  r.URL.Query().Get("category"),
		TimeRange: timeRange,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TopBooksByCategory handles GET /api/v1/books/top-by-category.
func (h *Handler) TopBooksByCategory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10, 1, 100)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	category := r.URL.Query().Get("category")

	result, err := h.books.TopByCategory(r.Context(), category, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":          category,
		"books":             result.Data,
		"total_books_found": len(result.Data),
	})
}
