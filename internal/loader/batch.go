package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booklake/internal/domain"
	"booklake/internal/warehouse"
)

// batchSize is the number of rows per multi-row INSERT.
const batchSize = 1000

// batchInsert writes rows into table in fixed-size batches using multi-row
// INSERT statements with conflict-ignore semantics. A failed batch falls back
// to row-by-row inserts so one bad record cannot sink its batch; per-row
// failures are counted, never raised.
func batchInsert(ctx context.Context, exec domain.Executor, logger *slog.Logger, table string, columns []string, rows [][]any) (inserted, failed int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := rows[start:end]

		if err := exec.Exec(ctx, insertSQL(table, columns, batch)); err != nil {
			if ctx.Err() != nil {
				return inserted, failed, ctx.Err()
			}
			logger.Warn("batch insert failed, retrying row by row",
				"table", table, "batch_start", start, "error", err)
			ok, bad := insertRows(ctx, exec, logger, table, columns, batch)
			inserted += ok
			failed += bad
			continue
		}
		inserted += len(batch)
	}
	return inserted, failed, nil
}

// insertRows inserts each row of a failed batch individually.
func insertRows(ctx context.Context, exec domain.Executor, logger *slog.Logger, table string, columns []string, batch [][]any) (inserted, failed int) {
	for _, row := range batch {
		if ctx.Err() != nil {
			failed += len(batch) - inserted - failed
			return inserted, failed
		}
		if err := exec.Exec(ctx, insertSQL(table, columns, [][]any{row})); err != nil {
			failed++
			logger.Debug("skipped row", "table", table, "error", err)
			continue
		}
		inserted++
	}
	logger.Info("row-by-row insert finished",
		"table", table, "inserted", inserted, "failed", failed)
	return inserted, failed
}

// insertSQL renders a multi-row conflict-ignoring INSERT.
func insertSQL(table string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(warehouse.Literal(v))
		}
		b.WriteByte(')')
	}
	b.WriteString(" ON CONFLICT DO NOTHING")
	return b.String()
}
