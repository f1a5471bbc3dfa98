package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"booklake/internal/domain"
)

var _ domain.Executor = (*LocalExecutor)(nil)

// LocalExecutor wraps a *sql.DB (DuckDB) and implements the executor contract
// for local development and tests. No polling — statements run synchronously.
type LocalExecutor struct {
	db *sql.DB
}

// NewLocalExecutor creates a LocalExecutor backed by the given database handle.
func NewLocalExecutor(db *sql.DB) *LocalExecutor {
	return &LocalExecutor{db: db}
}

// DB exposes the underlying handle for migration tooling.
func (e *LocalExecutor) DB() *sql.DB { return e.db }

// Exec runs a DDL/DML statement.
func (e *LocalExecutor) Exec(ctx context.Context, sqlText string) error {
	if _, err := e.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Query runs a SELECT and scans every row into a column-name→value map,
// normalising cell types to the same set the Data API executor produces.
func (e *LocalExecutor) Query(ctx context.Context, sqlText string) ([]domain.Row, error) {
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := []domain.Row{}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(domain.Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeCell(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeCell widens driver-specific scan types to string/int64/float64/bool/nil.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", x)
	}
}
