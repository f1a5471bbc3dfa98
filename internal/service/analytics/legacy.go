package analytics

import (
	"context"
	"fmt"
	"time"

	"booklake/internal/domain"
)

// Envelope is the raw-row payload of the first-generation analytics
// endpoints: untyped rows plus query metadata.
type Envelope struct {
	Data      []domain.Row `json:"data"`
	QueryType string       `json:"query_type"`
	Timestamp time.Time    `json:"timestamp"`
	RowCount  int          `json:"row_count"`
}

func (s *Service) envelope(ctx context.Context, queryType, sqlText string) (*Envelope, error) {
	rows, err := s.exec.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryType, err)
	}
	return &Envelope{
		Data:      rows,
		QueryType: queryType,
		Timestamp: time.Now(),
		RowCount:  len(rows),
	}, nil
}

// DailyTrends returns per-day aggregates for the last N days of actual data,
// anchored on the newest sale rather than the wall clock.
func (s *Service) DailyTrends(ctx context.Context, days int) (*Envelope, error) {
	if days <= 0 {
		days = 30
	}
	return s.envelope(ctx, "daily_sales_trends", fmt.Sprintf(`WITH latest_sales_date AS (
    SELECT MAX(d.full_date) AS max_date
    FROM fact_sales f
    JOIN dim_date d ON f.date_id = d.date_id
)
SELECT
    d.full_date AS date,
    d.year,
    d.month,
    d.day_name,
    COUNT(f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_transaction_value,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    SUM(f.quantity) AS total_books_sold
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
CROSS JOIN latest_sales_date lsd
WHERE d.full_date >= lsd.max_date - INTERVAL '%d days'
AND d.full_date <= lsd.max_date
GROUP BY d.full_date, d.year, d.month, d.day_name
ORDER BY d.full_date DESC`, days))
}

// DailyTrendsRange returns per-day aggregates for an explicit date window.
func (s *Service) DailyTrendsRange(ctx context.Context, dates domain.DateRange) (*Envelope, error) {
	if dates.Start.IsZero() || dates.End.IsZero() {
		return nil, domain.ErrValidation("start_date and end_date are required")
	}
	if err := dates.Validate(); err != nil {
		return nil, err
	}
	return s.envelope(ctx, "daily_sales_trends_by_range", fmt.Sprintf(`SELECT
    d.full_date AS date,
    d.year,
    d.month,
    d.day_name,
    COUNT(f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_transaction_value,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    SUM(f.quantity) AS total_books_sold
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
WHERE d.full_date >= '%s'
AND d.full_date <= '%s'
GROUP BY d.full_date, d.year, d.month, d.day_name
ORDER BY d.full_date DESC`,
		dates.Start.Format("2006-01-02"), dates.End.Format("2006-01-02")))
}

// TopBooksSnapshot ranks books by all-time revenue straight from the facts.
func (s *Service) TopBooksSnapshot(ctx context.Context, limit int) (*Envelope, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.envelope(ctx, "top_books", fmt.Sprintf(`SELECT
    b.book_id,
    b.title,
    b.author,
    b.category,
    COUNT(f.transaction_id) AS total_sales,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_price,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    MIN(f.transaction_timestamp) AS first_sale_date,
    MAX(f.transaction_timestamp) AS last_sale_date
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
GROUP BY b.book_id, b.title, b.author, b.category
ORDER BY total_revenue DESC
LIMIT %d`, limit))
}

// UserActivity ranks buying customers by total spend.
func (s *Service) UserActivity(ctx context.Context, limit int) (*Envelope, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.envelope(ctx, "user_analytics", fmt.Sprintf(`SELECT
    u.user_id,
    u.name,
    u.location,
    u.signup_date,
    COUNT(f.transaction_id) AS total_purchases,
    SUM(f.amount) AS total_spent,
    AVG(f.amount) AS avg_purchase_value,
    MIN(f.transaction_timestamp) AS first_purchase_date,
    MAX(f.transaction_timestamp) AS last_purchase_date,
    DATEDIFF(day, MIN(f.transaction_timestamp), MAX(f.transaction_timestamp)) AS customer_lifespan_days
FROM dim_users u
JOIN fact_sales f ON u.user_id = f.user_id
GROUP BY u.user_id, u.name, u.location, u.signup_date
HAVING SUM(f.amount) > 0
ORDER BY total_spent DESC
LIMIT %d`, limit))
}

// CategorySnapshot returns per-category aggregates without market share.
func (s *Service) CategorySnapshot(ctx context.Context) (*Envelope, error) {
	return s.envelope(ctx, "category_performance", `SELECT
    b.category,
    COUNT(f.transaction_id) AS total_sales,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_price,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    COUNT(DISTINCT f.book_id) AS unique_books
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
GROUP BY b.category
ORDER BY total_revenue DESC`)
}

// SummarySnapshot returns the headline numbers as raw rows.
func (s *Service) SummarySnapshot(ctx context.Context) (*Envelope, error) {
	return s.envelope(ctx, "sales_summary", `SELECT
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
}

// MonthlySnapshot returns per-month aggregates as raw rows.
func (s *Service) MonthlySnapshot(ctx context.Context, months int) (*Envelope, error) {
	if months <= 0 {
		months = 12
	}
	return s.envelope(ctx, "monthly_trends", fmt.Sprintf(`SELECT
    d.year,
    d.month,
    d.month_name,
    COUNT(DISTINCT d.full_date) AS days_in_month,
    COUNT(f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS avg_transaction_value,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    COUNT(DISTINCT f.book_id) AS unique_books
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
WHERE d.full_date >= CURRENT_DATE - INTERVAL '%d months'
GROUP BY d.year, d.month, d.month_name
ORDER BY d.year, d.month`, months))
}

// SegmentSnapshot segments buying customers by spend bands computed from the
// facts, independent of the dimension's signup-age segments.
func (s *Service) SegmentSnapshot(ctx context.Context) (*Envelope, error) {
	return s.envelope(ctx, "customer_segments", `WITH user_totals AS (
    SELECT
        u.user_id,
        SUM(f.amount) AS total_spent,
        COUNT(f.transaction_id) AS total_purchases
    FROM dim_users u
    JOIN fact_sales f ON u.user_id = f.user_id
    GROUP BY u.user_id
),
customer_segments AS (
    SELECT
        CASE
            WHEN total_spent >= 1000 THEN 'High Value'
            WHEN total_spent >= 500 THEN 'Medium Value'
            WHEN total_spent >= 100 THEN 'Low Value'
            ELSE 'New Customer'
        END AS segment,
        COUNT(*) AS customer_count,
        SUM(total_spent) AS total_revenue,
        AVG(total_spent) AS avg_spent,
        AVG(total_purchases) AS avg_purchases
    FROM user_totals
    GROUP BY
        CASE
            WHEN total_spent >= 1000 THEN 'High Value'
            WHEN total_spent >= 500 THEN 'Medium Value'
            WHEN total_spent >= 100 THEN 'Low Value'
            ELSE 'New Customer'
        END
)
SELECT
    segment,
    customer_count,
    total_revenue,
    avg_spent,
    avg_purchases,
    ROUND((customer_count * 100.0 / SUM(customer_count) OVER()), 2) AS percentage
FROM customer_segments
ORDER BY total_revenue DESC`)
}

// DataStatus runs a battery of row-count and freshness checks for the debug
// endpoint. Individual check failures are reported inline, not raised.
func (s *Service) DataStatus(ctx context.Context) map[string]any {
	checks := []struct {
		name string
		sql  string
	}{
		{"fact_sales_count", "SELECT COUNT(*) AS count FROM fact_sales"},
		{"dim_date_count", "SELECT COUNT(*) AS count FROM dim_date"},
		{"dim_books_count", "SELECT COUNT(*) AS count FROM dim_books"},
		{"dim_users_count", "SELECT COUNT(*) AS count FROM dim_users"},
		{"fact_sales_date_range", `SELECT
    MIN(d.full_date) AS earliest_date,
    MAX(d.full_date) AS latest_date,
    COUNT(DISTINCT d.full_date) AS unique_dates
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id`},
		{"current_date", "SELECT CURRENT_DATE AS current_date"},
		{"recent_sales", `SELECT
    d.full_date,
    COUNT(f.transaction_id) AS transactions,
    SUM(f.amount) AS revenue
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
WHERE d.full_date >= CURRENT_DATE - INTERVAL '30 days'
GROUP BY d.full_date
ORDER BY d.full_date DESC
LIMIT 10`},
	}

	results := make(map[string]any, len(checks))
	for _, c := range checks {
		env, err := s.envelope(ctx, c.name, c.sql)
		if err != nil {
			s.logger.Warn("data status check failed", "check", c.name, "error", err)
			results[c.name] = map[string]string{"error": err.Error()}
			continue
		}
		results[c.name] = env
	}
	return results
}
