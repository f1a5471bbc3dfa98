package api

import (
	"net/http"
	"strconv"
	"time"

	"booklake/internal/domain"
)

// intParam reads an integer query parameter with a default and an inclusive
// allowed window.
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrValidation("%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, domain.ErrValidation("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

// boolParam reads a boolean query parameter with a default.
func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.ErrValidation("%s must be a boolean", name)
	}
	return v, nil
}

// dateRangeParams reads optional start_date/end_date parameters in YYYY-MM-DD.
func dateRangeParams(r *http.Request) (domain.DateRange, error) {
	var dates domain.DateRange
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start_date", &dates.Start},
		{"end_date", &dates.End},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.DateRange{}, domain.ErrValidation("%s must be in YYYY-MM-DD format", p.name)
		}
		*p.dst = t
	}
	return dates, nil
}
