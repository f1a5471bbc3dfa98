package api

import (
	"net/http"
)

// The /analytics routes are the first-generation endpoint surface: raw query
// rows wrapped in an envelope, kept for consumers that predate /api/v1.

// LegacyDailyTrends handles GET /analytics/daily-sales-trends.
func (h *Handler) LegacyDailyTrends(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", 30, 1, 365)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	env, err := h.analytics.DailyTrends(r.Context(), days)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyDailyTrendsRange handles GET /analytics/daily-sales-trends-range.
func (h *Handler) LegacyDailyTrendsRange(w http.ResponseWriter, r *http.Request) {
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	env, err := h.analytics.DailyTrendsRange(r.Context(), dates)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyTopBooks handles GET /analytics/top-books.
func (h *Handler) LegacyTopBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10, 1, 100)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	env, err := h.analytics.TopBooksSnapshot(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyUserActivity handles GET /analytics/user-analytics.
func (h *Handler) LegacyUserActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 100, 1, 1000)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	env, err := h.analytics.UserActivity(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyMonthlyTrends handles GET /analytics/monthly-trends.
func (h *Handler) LegacyMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", 12, 1, 120)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	env, err := h.analytics.MonthlySnapshot(r.Context(), months)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacySalesSummary handles GET /analytics/sales-summary.
func (h *Handler) LegacySalesSummary(w http.ResponseWriter, r *http.Request) {
	env, err := h.analytics.SummarySnapshot(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyCategoryPerformance handles GET /analytics/category-performance.
func (h *Handler) LegacyCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	env, err := h.analytics.CategorySnapshot(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// LegacyCustomerSegments handles GET /analytics/customer-segments.
func (h *Handler) LegacyCustomerSegments(w http.ResponseWriter, r *http.Request) {
	env, err := h.analytics.SegmentSnapshot(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// DataStatus handles GET /debug/data-status.
func (h *Handler) DataStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.DataStatus(r.Context()))
}
