package domain

import (
	"context"
	"strconv"
)

// Row is a single result row keyed by column name. Cell values are one of
// string, int64, float64, bool, or nil, matching the typed cells the
// warehouse statement API returns.
type Row map[string]any

// Executor runs SQL against the warehouse. Implementations: the Redshift
// Data API executor (submit + poll) and the local DuckDB executor.
// Statements are executed independently — idempotency is the caller's job.
type Executor interface {
	// Query runs a SELECT and returns all rows. An empty result set returns
	// an empty, non-nil slice.
	Query(ctx context.Context, sqlText string) ([]Row, error)

	// Exec runs a DDL/DML statement and discards any result set.
	Exec(ctx context.Context, sqlText string) error
}

// Str returns the named cell as a string, or "" when absent or NULL.
func (r Row) Str(col string) string {
	if v, ok := r[col].(string); ok {
		return v
	}
	return ""
}

// Int returns the named cell as an int64, coercing doubles and numeric
// strings. Warehouse aggregates (SUM, COUNT over DECIMAL) come back under
// varying numeric types depending on the backend.
func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Float returns the named cell as a float64, coercing integers and numeric
// strings (Redshift returns DECIMAL cells as strings).
func (r Row) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}
