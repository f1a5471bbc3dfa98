// Package books ranks books by performance metrics, either from the
// pre-aggregated fact_book_performance table or live from fact_sales when a
// relative time window is requested.
package books

import (
	"context"
	"fmt"
	"log/slog"

	"booklake/internal/domain"
	"booklake/internal/warehouse"
)

// Service runs book ranking queries against the warehouse.
type Service struct {
	exec   domain.Executor
	logger *slog.Logger
}

// New creates a books service.
func New(exec domain.Executor, logger *slog.Logger) *Service {
	return &Service{exec: exec, logger: logger.With("component", "books")}
}

// Query holds the parameters for a top-books request.
type Query struct {
	Limit     int
	Metric    domain.Metric
	Category  string
	TimeRange domain.TimeRange
}

// metricColumn maps a ranking metric to the aggregate column it orders by.
func metricColumn(m domain.Metric) string {
	switch m {
	case domain.MetricCustomers:
		return "unique_customers"
	case domain.MetricSalesCount, domain.MetricBooksSold:
		return "total_sales"
	default:
		return "total_revenue"
	}
}

// timeRangeFilter maps a relative window to its date predicate.
func timeRangeFilter(tr domain.TimeRange) string {
	switch tr {
	case domain.RangeDaily:
		return "d.full_date = CURRENT_DATE"
	case domain.RangeWeekly:
		return "d.full_date >= CURRENT_DATE - INTERVAL '7 days'"
	case domain.RangeMonthly:
		return "d.full_date >= CURRENT_DATE - INTERVAL '30 days'"
	default:
		return "d.full_date >= CURRENT_DATE - INTERVAL '1 year'"
	}
}

// TopBooks ranks books by the requested metric. Without a time range the
// pre-aggregated all-time performance table serves the ranking; with one, the
// aggregates are computed live from fact_sales over the window.
func (s *Service) TopBooks(ctx context.Context, q Query) (*domain.TopBooksResult, error) {
	metric := metricColumn(q.Metric)

	var sqlText string
	var args []any

	if q.TimeRange == "" {
		sqlText = fmt.Sprintf(`SELECT
    b.book_id,
    b.title,
    b.author,
    b.category,
    bp.total_revenue,
    bp.total_sales,
    bp.average_price,
    bp.unique_customers,
    ROW_NUMBER() OVER (ORDER BY bp.%s DESC) AS rank
FROM fact_book_performance bp
JOIN dim_books b ON bp.book_id = b.book_id
WHERE 1=1`, metric)
		if q.Category != "" {
			args = append(args, q.Category)
			sqlText += fmt.Sprintf(" AND b.category = $%d", len(args))
		}
		sqlText += fmt.Sprintf(" ORDER BY bp.%s DESC LIMIT $%d", metric, len(args)+1)
	} else {
		sqlText = fmt.Sprintf(`SELECT
    b.book_id,
    b.title,
    b.author,
    b.category,
    SUM(f.amount) AS total_revenue,
    COUNT(f.transaction_id) AS total_sales,
    AVG(f.amount) AS average_price,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    ROW_NUMBER() OVER (ORDER BY %s DESC) AS rank
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
JOIN dim_date d ON f.date_id = d.date_id
WHERE %s`, windowMetricExpr(metric), timeRangeFilter(q.TimeRange))
		if q.Category != "" {
			args = append(args, q.Category)
			sqlText += fmt.Sprintf(" AND b.category = $%d", len(args))
		}
		sqlText += " GROUP BY b.book_id, b.title, b.author, b.category"
		sqlText += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d", metric, len(args)+1)
	}
	args = append(args, q.Limit)

	rows, err := s.exec.Query(ctx, warehouse.Interpolate(sqlText, args...))
	if err != nil {
		return nil, fmt.Errorf("query top books: %w", err)
	}

	data := make([]domain.TopBook, 0, len(rows))
	for _, row := range rows {
		data = append(data, domain.TopBook{
			BookID:          row.Int("book_id"),
			Title:           row.Str("title"),
			Author:          row.Str("author"),
			Category:        row.Str("category"),
			TotalRevenue:    row.Float("total_revenue"),
			TotalSales:      row.Int("total_sales"),
			AveragePrice:    row.Float("average_price"),
			UniqueCustomers: row.Int("unique_customers"),
			Rank:            row.Int("rank"),
		})
	}

	return &domain.TopBooksResult{
		Data:           data,
		MetricUsed:     q.Metric,
		TimeRange:      q.TimeRange,
		CategoryFilter: q.Category,
	}, nil
}

// windowMetricExpr returns the aggregate expression behind a metric alias for
// use inside the window function, where the alias is not yet in scope.
func windowMetricExpr(metric string) string {
	switch metric {
	case "total_sales":
		return "COUNT(f.transaction_id)"
	case "unique_customers":
		return "COUNT(DISTINCT f.user_id)"
	default:
		return "SUM(f.amount)"
	}
}

// TopByCategory ranks the best sellers of one category by revenue.
func (s *Service) TopByCategory(ctx context.Context, category string, limit int) (*domain.TopBooksResult, error) {
	if category == "" {
		return nil, domain.ErrValidation("category is required")
	}
	return s.TopBooks(ctx, Query{Limit: limit, Metric: domain.MetricRevenue, Category: category})
}
