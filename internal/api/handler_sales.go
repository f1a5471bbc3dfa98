package api

import (
	"net/http"

	"booklake/internal/domain"
	"booklake/internal/service/sales"
)

// DailySales handles GET /api/v1/sales/daily.
func (h *Handler) DailySales(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 100, 1, 1000)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	offset, err := intParam(r, "offset", 0, 0, 1<<31-1)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.sales.DailySales(r.Context(), sales.Query{
		Page:        domain.Page{Limit: limit, Offset: offset},
		Dates:       dates,
		Category:    r.URL.Query().Get("category"),
		UserSegment: r.URL.Query().Get("user_segment"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SalesSummary handles GET /api/v1/sales/summary.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	category := r.URL.Query().Get("category")

	summary, err := h.sales.Summary(r.Context(), dates, category)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filters := map[string]any{}
	if !dates.Start.IsZero() {
		filters["start_date"] = dates.Start.Format("2006-01-02")
	}
	if !dates.End.IsZero() {
		filters["end_date"] = dates.End.Format("2006-01-02")
	}
	if category != "" {
		filters["category"] = category
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":         summary,
		"filters_applied": filters,
	})
}
