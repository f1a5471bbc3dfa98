// Package sales serves daily sales data from the pre-aggregated summary
// table, with filtering, pagination, and an aggregate summary block.
package sales

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booklake/internal/domain"
	"booklake/internal/warehouse"
)

// Service runs sales queries against the warehouse.
type Service struct {
	exec   domain.Executor
	logger *slog.Logger
}

// New creates a sales service.
func New(exec domain.Executor, logger *slog.Logger) *Service {
	return &Service{exec: exec, logger: logger.With("component", "sales")}
}

// Query holds the filters for a daily-sales request.
type Query struct {
	Page        domain.Page
	Dates       domain.DateRange
	Category    string
	UserSegment string
}

const dailyBase = `SELECT
    d.full_date AS date,
    ds.total_revenue,
    ds.transaction_count,
    ds.unique_users AS unique_customers,
    ds.average_transaction_value,
    ds.total_quantity AS total_books_sold
FROM fact_daily_sales_summary ds
JOIN dim_date d ON ds.date_id = d.date_id
WHERE 1=1`

const summaryBase = `SELECT
    SUM(ds.total_revenue) AS total_revenue,
    SUM(ds.transaction_count) AS total_transactions,
    AVG(ds.average_transaction_value) AS avg_transaction_value,
    COUNT(DISTINCT ds.date_id) AS days_with_sales
FROM fact_daily_sales_summary ds
JOIN dim_date d ON ds.date_id = d.date_id
WHERE 1=1`

// DailySales returns one row per day within the filters, newest first, plus
// pagination info and summary statistics over the whole filtered window.
func (s *Service) DailySales(ctx context.Context, q Query) (*domain.SalesResult, error) {
	if err := q.Dates.Validate(); err != nil {
		return nil, err
	}

	filters, args := q.filterClauses()
	filtered := dailyBase + filters

	countSQL := fmt.Sprintf("SELECT COUNT(*) AS total FROM (%s) AS filtered_data", filtered)
	countRows, err := s.exec.Query(ctx, warehouse.Interpolate(countSQL, args...))
	if err != nil {
		return nil, fmt.Errorf("count daily sales: %w", err)
	}
	var total int64
	if len(countRows) > 0 {
		total = countRows[0].Int("total")
	}

	dataSQL := fmt.Sprintf("%s ORDER BY d.full_date DESC LIMIT $%d OFFSET $%d",
		filtered, len(args)+1, len(args)+2)
	dataArgs := append(args, q.Page.Limit, q.Page.Offset)

	rows, err := s.exec.Query(ctx, warehouse.Interpolate(dataSQL, dataArgs...))
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}

	data := make([]domain.DailySales, 0, len(rows))
	for _, row := range rows {
		data = append(data, domain.DailySales{
			Date:                    dateOnly(row.Str("date")),
			TotalRevenue:            row.Float("total_revenue"),
			TransactionCount:        row.Int("transaction_count"),
			UniqueCustomers:         row.Int("unique_customers"),
			AverageTransactionValue: row.Float("average_transaction_value"),
			TotalBooksSold:          row.Int("total_books_sold"),
		})
	}

	summary, err := s.summarize(ctx, q)
	if err != nil {
		// The summary block is best effort, matching the data path's
		// tolerance for partially aggregated warehouses.
		s.logger.Warn("sales summary failed", "error", err)
		summary = domain.SalesSummary{}
	}

	return &domain.SalesResult{
		Data: data,
		Page: domain.PageInfo{
			TotalRecords: total,
			Limit:        q.Page.Limit,
			Offset:       q.Page.Offset,
			HasMore:      int64(q.Page.Offset+q.Page.Limit) < total,
		},
		Summary: summary,
	}, nil
}

// Summary returns the aggregate summary block alone.
func (s *Service) Summary(ctx context.Context, dates domain.DateRange, category string) (*domain.SalesSummary, error) {
	if err := dates.Validate(); err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, Query{Dates: dates, Category: category})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) summarize(ctx context.Context, q Query) (domain.SalesSummary, error) {
	filters, args := q.filterClauses()
	rows, err := s.exec.Query(ctx, warehouse.Interpolate(summaryBase+filters, args...))
	if err != nil {
		return domain.SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}
	if len(rows) == 0 {
		return domain.SalesSummary{}, nil
	}
	row := rows[0]
	return domain.SalesSummary{
		TotalRevenue:        row.Float("total_revenue"),
		TotalTransactions:   row.Int("total_transactions"),
		AvgTransactionValue: row.Float("avg_transaction_value"),
		DaysWithSales:       row.Int("days_with_sales"),
	}, nil
}

// filterClauses renders the shared WHERE fragment with a running positional
// parameter counter.
func (q Query) filterClauses() (string, []any) {
	var b strings.Builder
	var args []any

	if !q.Dates.Start.IsZero() {
		args = append(args, q.Dates.Start.Format("2006-01-02"))
		fmt.Fprintf(&b, " AND d.full_date >= $%d", len(args))
	}
	if !q.Dates.End.IsZero() {
		args = append(args, q.Dates.End.Format("2006-01-02"))
		fmt.Fprintf(&b, " AND d.full_date <= $%d", len(args))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		fmt.Fprintf(&b, ` AND EXISTS (
    SELECT 1 FROM fact_sales f
    JOIN dim_books b ON f.book_id = b.book_id
    WHERE f.date_id = ds.date_id AND b.category = $%d
)`, len(args))
	}
	if q.UserSegment != "" {
		args = append(args, q.UserSegment)
		fmt.Fprintf(&b, ` AND EXISTS (
    SELECT 1 FROM fact_sales f
    JOIN dim_users u ON f.user_id = u.user_id
    WHERE f.date_id = ds.date_id AND u.user_segment = $%d
)`, len(args))
	}
	return b.String(), args
}

// dateOnly trims a timestamp rendering down to its date part. Backends
// disagree on whether DATE columns come back as dates or midnight timestamps.
func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
