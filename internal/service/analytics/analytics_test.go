package analytics

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklake/internal/domain"
)

type fakeExecutor struct {
	queries []string
	rows    []domain.Row
	err     error
}

func (f *fakeExecutor) Query(_ context.Context, sqlText string) ([]domain.Row, error) {
	f.queries = append(f.queries, sqlText)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeExecutor) Exec(_ context.Context, _ string) error { return nil }

func newService(exec domain.Executor) *Service {
	return New(exec, slog.New(slog.DiscardHandler))
}

func TestCategoryPerformanceMarketShare(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{
		{"category": "Fiction", "total_revenue": 600.0, "total_sales": int64(30),
			"unique_customers": int64(20), "average_price": 20.0},
		{"category": "Science Fiction", "total_revenue": "300.00", "total_sales": int64(10),
			"unique_customers": int64(8), "average_price": 30.0},
		{"category": "Mystery", "total_revenue": 100.0, "total_sales": int64(5),
			"unique_customers": int64(5), "average_price": 20.0},
	}}

	out, err := newService(exec).CategoryPerformance(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 60.0, out[0].MarketShare)
	assert.Equal(t, 30.0, out[1].MarketShare)
	assert.Equal(t, 10.0, out[2].MarketShare)

	var sum float64
	for _, c := range out {
		sum += c.MarketShare
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestCategoryPerformanceZeroRevenue(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{
		{"category": "Fiction", "total_revenue": 0.0, "total_sales": int64(0),
			"unique_customers": int64(0), "average_price": 0.0},
		{"category": "Mystery", "total_revenue": 0.0, "total_sales": int64(0),
			"unique_customers": int64(0), "average_price": 0.0},
	}}

	out, err := newService(exec).CategoryPerformance(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	for _, c := range out {
		assert.Zero(t, c.MarketShare)
	}
}

func TestCategoryPerformanceDateFilters(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := newService(exec).CategoryPerformance(context.Background(), domain.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, exec.queries[0], "d.full_date >= '2024-01-01'")
	assert.Contains(t, exec.queries[0], "d.full_date <= '2024-03-31'")
	assert.Contains(t, exec.queries[0], "GROUP BY b.category ORDER BY total_revenue DESC")
}

func TestCustomerSegments(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{
		{"user_segment": "High Value", "customer_count": int64(4),
			"total_revenue": "1000.00", "average_order_value": 25.0},
		{"user_segment": "Low Value", "customer_count": int64(10),
			"total_revenue": nil, "average_order_value": nil},
	}}

	out, err := newService(exec).CustomerSegments(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "High Value", out[0].Segment)
	assert.Equal(t, 250.0, out[0].LifetimeValue)
	assert.Equal(t, retentionRate, out[0].RetentionRate)

	// Segments with no sales report zero revenue, not an error.
	assert.Zero(t, out[1].TotalRevenue)
	assert.Zero(t, out[1].LifetimeValue)
}

func TestOverview(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{{
		"total_transactions": int64(500), "total_revenue": "10000.00",
		"avg_transaction_value": 20.0, "total_customers": int64(200),
		"total_books": int64(80), "first_sale_date": "2023-01-01 08:00:00",
		"last_sale_date": "2024-06-01 17:30:00", "days_with_sales": int64(300),
	}}}

	overview, err := newService(exec).Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), overview.TotalTransactions)
	assert.Equal(t, 10000.0, overview.TotalRevenue)
	assert.Equal(t, int64(300), overview.DaysWithSales)
}

func TestMonthlyTrends(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{
		{"year": int64(2024), "month": int64(1), "month_name": "January ",
			"total_transactions": int64(40), "total_revenue": 800.0,
			"unique_customers": int64(25), "unique_books": int64(12)},
	}}

	out, err := newService(exec).MonthlyTrends(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	// Fixed-width month names are trimmed.
	assert.Equal(t, "January", out[0].MonthName)
	// Zero months falls back to the 12-month default.
	assert.Contains(t, exec.queries[0], "INTERVAL '12 months'")
}

func TestDailyTrendsAnchorsOnLatestSale(t *testing.T) {
	exec := &fakeExecutor{rows: []domain.Row{{"date": "2024-06-01"}}}
	env, err := newService(exec).DailyTrends(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "daily_sales_trends", env.QueryType)
	assert.Equal(t, 1, env.RowCount)
	assert.Contains(t, exec.queries[0], "WITH latest_sales_date")
	assert.Contains(t, exec.queries[0], "INTERVAL '7 days'")
}

func TestDailyTrendsRangeRequiresBothDates(t *testing.T) {
	_, err := newService(&fakeExecutor{}).DailyTrendsRange(context.Background(), domain.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestDataStatusToleratesFailures(t *testing.T) {
	exec := &fakeExecutor{err: domain.ErrStatement("FAILED", "no such table")}
	results := newService(exec).DataStatus(context.Background())

	require.Len(t, results, 7)
	status, ok := results["fact_sales_count"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, status["error"], "no such table")
}

func TestSegmentSnapshotBandsBySpend(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := newService(exec).SegmentSnapshot(context.Background())
	require.NoError(t, err)
	sql := exec.queries[0]
	assert.Contains(t, sql, "WHEN total_spent >= 1000 THEN 'High Value'")
	assert.True(t, strings.Contains(sql, "SUM(customer_count) OVER()"))
}
