package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"booklake/internal/domain"
	"booklake/internal/service/users"
)

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation("user_id must be a positive integer")
	}
	return id, nil
}

// UserHistory handles GET /api/v1/users/{id}/history.
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	limit, err := intParam(r, "limit", 50, 1, 500)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	offset, err := intParam(r, "offset", 0, 0, 1<<31-1)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	includeAnalytics, err := boolParam(r, "include_analytics", true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.users.History(r.Context(), userID, users.Query{
		Page:             domain.Page{Limit: limit, Offset: offset},
		Dates:            dates,
		IncludeAnalytics: includeAnalytics,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UserAnalytics handles GET /api/v1/users/{id}/analytics.
func (h *Handler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	dates, err := dateRangeParams(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	info, analytics, err := h.users.Analytics(r.Context(), userID, dates)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":   userID,
		"user_info": info,
		"analytics": analytics,
	})
}
