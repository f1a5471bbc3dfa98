package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklake/internal/domain"
	"booklake/internal/service/analytics"
	"booklake/internal/service/books"
	"booklake/internal/service/sales"
	"booklake/internal/service/users"
)

// fakeExecutor serves scripted rows: the first script whose substring matches
// the SQL wins. A non-nil err fails every query.
type fakeExecutor struct {
	queries []string
	scripts []script
	err     error
}

type script struct {
	match string
	rows  []domain.Row
}

func (f *fakeExecutor) Query(_ context.Context, sqlText string) ([]domain.Row, error) {
	f.queries = append(f.queries, sqlText)
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.scripts {
		if strings.Contains(sqlText, s.match) {
			return s.rows, nil
		}
	}
	return []domain.Row{}, nil
}

func (f *fakeExecutor) Exec(_ context.Context, _ string) error { return f.err }

func newTestServer(exec domain.Executor) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	h := NewHandler(
		sales.New(exec, logger),
		books.New(exec, logger),
		users.New(exec, logger),
		analytics.New(exec, logger),
		exec,
		"2.0.0",
		logger,
	)
	return NewRouter(h, RouterConfig{CORSAllowedOrigins: []string{"*"}})
}

func doGet(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthHealthy(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database_status"])
	assert.Equal(t, "2.0.0", body["version"])
	assert.Contains(t, body, "uptime_seconds")
}

func TestHealthDegraded(t *testing.T) {
	exec := &fakeExecutor{err: domain.ErrStatement("FAILED", "cluster paused")}
	rec, body := doGet(t, newTestServer(exec), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Contains(t, body["database_status"], "cluster paused")
}

func TestDailySalesOK(t *testing.T) {
	exec := &fakeExecutor{scripts: []script{
		{match: "COUNT(*) AS total", rows: []domain.Row{{"total": int64(1)}}},
		{match: "ORDER BY d.full_date DESC", rows: []domain.Row{
			{"date": "2024-01-15", "total_revenue": "100.50", "transaction_count": int64(4),
				"unique_customers": int64(3), "average_transaction_value": 25.125, "total_books_sold": int64(4)},
		}},
	}}
	rec, body := doGet(t, newTestServer(exec),
		"/api/v1/sales/daily?limit=10&start_date=2024-01-01&end_date=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "2024-01-15", data[0].(map[string]any)["date"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total_records"])
	assert.Equal(t, false, pagination["has_more"])
	assert.Contains(t, body, "summary")
}

func TestDailySalesInvalidLimit(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/sales/daily?limit=5000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "limit must be between 1 and 1000")
}

func TestDailySalesInvertedDateRange(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}),
		"/api/v1/sales/daily?start_date=2024-02-01&end_date=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "end_date must not be before start_date")
}

func TestDailySalesBadDateFormat(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/sales/daily?start_date=01-02-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "YYYY-MM-DD")
}

func TestSalesSummaryFiltersApplied(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}),
		"/api/v1/sales/summary?start_date=2024-01-01&category=Fiction")
	require.Equal(t, http.StatusOK, rec.Code)
	filters := body["filters_applied"].(map[string]any)
	assert.Equal(t, "2024-01-01", filters["start_date"])
	assert.Equal(t, "Fiction", filters["category"])
	assert.NotContains(t, filters, "end_date")
}

func TestTopBooksDefaultsToRevenue(t *testing.T) {
	exec := &fakeExecutor{}
	rec, body := doGet(t, newTestServer(exec), "/api/v1/books/top")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revenue", body["metric_used"])
	assert.Contains(t, exec.queries[0], "LIMIT 5")
}

func TestTopBooksInvalidMetric(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/books/top?metric=popularity")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "invalid metric")
}

func TestTopBooksInvalidTimeRange(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/books/top?time_range=hourly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "invalid time_range")
}

func TestTopBooksByCategory(t *testing.T) {
	exec := &fakeExecutor{scripts: []script{
		{match: "b.category = 'Mystery'", rows: []domain.Row{
			{"book_id": int64(7), "title": "Gone", "author": "A. Writer", "category": "Mystery",
				"total_revenue": 50.0, "total_sales": int64(2), "average_price": 25.0,
				"unique_customers": int64(2), "rank": int64(1)},
		}},
	}}
	rec, body := doGet(t, newTestServer(exec), "/api/v1/books/top-by-category?category=Mystery")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mystery", body["category"])
	assert.Equal(t, float64(1), body["total_books_found"])
}

func TestTopBooksByCategoryRequiresCategory(t *testing.T) {
	rec, _ := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/books/top-by-category")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHistoryUnknownUser(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/users/42/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["detail"], "42")
}

func TestUserHistoryBadID(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/users/abc/history")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "user_id")
}

func TestUserAnalyticsShape(t *testing.T) {
	exec := &fakeExecutor{scripts: []script{
		{match: "FROM dim_users WHERE user_id = 1", rows: []domain.Row{
			{"user_id": int64(1), "name": "Alice", "email": "alice@example.com",
				"signup_date": "2022-03-01", "user_segment": "High Value"},
		}},
		{match: "total_transactions", rows: []domain.Row{
			{"total_transactions": int64(2), "total_spent": 40.0,
				"average_transaction_value": 20.0, "unique_books_purchased": int64(2)},
		}},
	}}
	rec, body := doGet(t, newTestServer(exec), "/api/v1/users/1/analytics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "Alice", body["user_info"].(map[string]any)["name"])
	assert.Equal(t, float64(2), body["analytics"].(map[string]any)["total_transactions"])
}

func TestStatementFailureHidesDetail(t *testing.T) {
	exec := &fakeExecutor{err: domain.ErrStatement("FAILED", "relation fact_sales does not exist")}
	rec, body := doGet(t, newTestServer(exec), "/api/v1/sales/daily")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to retrieve data", body["detail"])
	assert.NotContains(t, body["detail"], "fact_sales")
}

func TestStatementTimeoutHidesDetail(t *testing.T) {
	exec := &fakeExecutor{err: domain.ErrStatementTimeout("statement abc-123 timed out after 300s")}
	rec, body := doGet(t, newTestServer(exec), "/api/v1/analytics/categories")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to retrieve data", body["detail"])
}

func TestComprehensiveShape(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/api/v1/analytics/comprehensive")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "overview")
	assert.Contains(t, body, "category_performance")
	assert.Contains(t, body, "customer_segments")
	assert.Contains(t, body, "generated_at")

	performers := body["top_performers"].(map[string]any)
	assert.Contains(t, performers, "by_revenue")
	assert.Contains(t, performers, "by_sales_count")
}

func TestLegacyDailyTrendsEnvelope(t *testing.T) {
	exec := &fakeExecutor{scripts: []script{
		{match: "WITH latest_sales_date", rows: []domain.Row{{"date": "2024-06-01"}}},
	}}
	rec, body := doGet(t, newTestServer(exec), "/analytics/daily-sales-trends?days=7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "daily_sales_trends", body["query_type"])
	assert.Equal(t, float64(1), body["row_count"])
	assert.Contains(t, body, "timestamp")
}

func TestLegacyDailyTrendsRangeMissingDates(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/analytics/daily-sales-trends-range")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "required")
}

func TestDebugDataStatus(t *testing.T) {
	rec, body := doGet(t, newTestServer(&fakeExecutor{}), "/debug/data-status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body, 7)
	assert.Contains(t, body, "fact_sales_count")
	assert.Contains(t, body, "recent_sales")
}

func TestRequestIDHeaderSet(t *testing.T) {
	rec, _ := doGet(t, newTestServer(&fakeExecutor{}), "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
