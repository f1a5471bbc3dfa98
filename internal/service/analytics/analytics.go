// Package analytics serves cross-cutting rollups: category performance with
// market share, customer segmentation, monthly trends, and the overall
// warehouse overview.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booklake/internal/domain"
	"booklake/internal/warehouse"
)

// retentionRate is a fixed placeholder; computing real retention needs
// longitudinal data the warehouse does not keep.
const retentionRate = 0.75

// Service runs analytics queries against the warehouse.
type Service struct {
	exec   domain.Executor
	logger *slog.Logger
}

// New creates an analytics service.
func New(exec domain.Executor, logger *slog.Logger) *Service {
	return &Service{exec: exec, logger: logger.With("component", "analytics")}
}

// CategoryPerformance breaks revenue down by category over an optional date
// window. Market share is each category's percentage of the window's total
// revenue; shares sum to 100 unless total revenue is zero, in which case every
// share is zero.
func (s *Service) CategoryPerformance(ctx context.Context, dates domain.DateRange) ([]domain.CategoryPerformance, error) {
	if err := dates.Validate(); err != nil {
		return nil, err
	}

	sqlText := `SELECT
    b.category,
    SUM(f.amount) AS total_revenue,
    COUNT(f.transaction_id) AS total_sales,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    AVG(f.amount) AS average_price
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
JOIN dim_date d ON f.date_id = d.date_id
WHERE 1=1`
	var args []any
	if !dates.Start.IsZero() {
		args = append(args, dates.Start.Format("2006-01-02"))
		sqlText += fmt.Sprintf(" AND d.full_date >= $%d", len(args))
	}
	if !dates.End.IsZero() {
		args = append(args, dates.End.Format("2006-01-02"))
		sqlText += fmt.Sprintf(" AND d.full_date <= $%d", len(args))
	}
	sqlText += " GROUP BY b.category ORDER BY total_revenue DESC"

	rows, err := s.exec.Query(ctx, warehouse.Interpolate(sqlText, args...))
	if err != nil {
		return nil, fmt.Errorf("query category performance: %w", err)
	}

	var totalRevenue float64
	for _, row := range rows {
		totalRevenue += row.Float("total_revenue")
	}

	out := make([]domain.CategoryPerformance, 0, len(rows))
	for _, row := range rows {
		revenue := row.Float("total_revenue")
		share := 0.0
		if totalRevenue > 0 {
			share = revenue / totalRevenue * 100
		}
		out = append(out, domain.CategoryPerformance{
			Category:        row.Str("category"),
			TotalRevenue:    revenue,
			TotalSales:      row.Int("total_sales"),
			UniqueCustomers: row.Int("unique_customers"),
			AveragePrice:    row.Float("average_price"),
			MarketShare:     share,
		})
	}
	return out, nil
}

// CustomerSegments summarises the customer base per dimension segment. Users
// with no purchases still count toward their segment with zero revenue.
func (s *Service) CustomerSegments(ctx context.Context) ([]domain.CustomerSegment, error) {
	rows, err := s.exec.Query(ctx, `SELECT
    u.user_segment,
    COUNT(DISTINCT u.user_id) AS customer_count,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS average_order_value
FROM dim_users u
LEFT JOIN fact_sales f ON u.user_id = f.user_id
GROUP BY u.user_segment
ORDER BY total_revenue DESC`)
	if err != nil {
		return nil, fmt.Errorf("query customer segments: %w", err)
	}

	out := make([]domain.CustomerSegment, 0, len(rows))
	for _, row := range rows {
		count := row.Int("customer_count")
		revenue := row.Float("total_revenue")
		ltv := 0.0
		if count > 0 {
			ltv = revenue / float64(count)
		}
		out = append(out, domain.CustomerSegment{
			Segment:           row.Str("user_segment"),
			CustomerCount:     count,
			TotalRevenue:      revenue,
			AverageOrderValue: row.Float("average_order_value"),
			RetentionRate:     retentionRate,
			LifetimeValue:     ltv,
		})
	}
	return out, nil
}

// Overview aggregates the whole fact table into headline numbers.
func (s *Service) Overview(ctx context.Context) (*domain.Overview, error) {
	rows, err := s.exec.Query(ctx, `SELECT
    COUNT(DISTINCT f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_transaction_value,
    COUNT(DISTINCT f.user_id) AS total_customers,
    COUNT(DISTINCT f.book_id) AS total_books,
    MIN(f.transaction_timestamp) AS first_sale_date,
    MAX(f.transaction_timestamp) AS last_sale_date,
    COUNT(DISTINCT d.full_date) AS days_with_sales
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id`)
	if err != nil {
		return nil, fmt.Errorf("query overview: %w", err)
	}
	if len(rows) == 0 {
		return &domain.Overview{}, nil
	}
	row := rows[0]
	return &domain.Overview{
		TotalTransactions:   row.Int("total_transactions"),
		TotalRevenue:        row.Float("total_revenue"),
		AvgTransactionValue: row.Float("avg_transaction_value"),
		TotalCustomers:      row.Int("total_customers"),
		TotalBooks:          row.Int("total_books"),
		FirstSaleDate:       row.Str("first_sale_date"),
		LastSaleDate:        row.Str("last_sale_date"),
		DaysWithSales:       row.Int("days_with_sales"),
	}, nil
}

// MonthlyTrends returns per-month aggregates for the trailing window.
func (s *Service) MonthlyTrends(ctx context.Context, months int) ([]domain.MonthlyTrend, error) {
	if months <= 0 {
		months = 12
	}
	sqlText := fmt.Sprintf(`SELECT
    d.year,
    d.month,
    d.month_name,
    COUNT(f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_revenue,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    COUNT(DISTINCT f.book_id) AS unique_books
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
WHERE d.full_date >= CURRENT_DATE - INTERVAL '%d months'
GROUP BY d.year, d.month, d.month_name
ORDER BY d.year, d.month`, months)

	rows, err := s.exec.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query monthly trends: %w", err)
	}

	out := make([]domain.MonthlyTrend, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MonthlyTrend{
			Year:              row.Int("year"),
			Month:             row.Int("month"),
			MonthName:         strings.TrimSpace(row.Str("month_name")),
			TotalTransactions: row.Int("total_transactions"),
			TotalRevenue:      row.Float("total_revenue"),
			UniqueCustomers:   row.Int("unique_customers"),
			UniqueBooks:       row.Int("unique_books"),
		})
	}
	return out, nil
}
