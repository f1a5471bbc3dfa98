package domain

import "time"

// Metric enumerates the ranking metrics accepted by the top-books queries.
type Metric string

// Valid ranking metrics.
const (
	MetricRevenue    Metric = "revenue"
	MetricSalesCount Metric = "sales_count"
	MetricCustomers  Metric = "customers"
	MetricBooksSold  Metric = "books_sold"
)

// TimeRange enumerates the relative windows accepted by the top-books queries.
type TimeRange string

// Valid time ranges.
const (
	RangeDaily   TimeRange = "daily"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
	RangeYearly  TimeRange = "yearly"
)

// ParseMetric validates a metric string.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricRevenue, MetricSalesCount, MetricCustomers, MetricBooksSold:
		return Metric(s), nil
	}
	return "", ErrValidation("invalid metric %q: must be one of revenue, sales_count, customers, books_sold", s)
}

// ParseTimeRange validates a time range string. Empty input means "all time".
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return "", nil
	}
	switch TimeRange(s) {
	case RangeDaily, RangeWeekly, RangeMonthly, RangeYearly:
		return TimeRange(s), nil
	}
	return "", ErrValidation("invalid time_range %q: must be one of daily, weekly, monthly, yearly", s)
}

// Page holds validated limit/offset pagination parameters.
type Page struct {
	Limit  int
	Offset int
}

// DateRange holds an optional inclusive date window. Zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejects inverted windows.
func (d DateRange) Validate() error {
	if !d.Start.IsZero() && !d.End.IsZero() && d.End.Before(d.Start) {
		return ErrValidation("end_date must not be before start_date")
	}
	return nil
}

// PageInfo reports pagination state on a response.
type PageInfo struct {
	TotalRecords int64 `json:"total_records"`
	Limit        int   `json:"limit"`
	Offset       int   `json:"offset"`
	HasMore      bool  `json:"has_more"`
}

// DailySales is one day of aggregated sales.
type DailySales struct {
	Date                    string  `json:"date"`
	TotalRevenue            float64 `json:"total_revenue"`
	TransactionCount        int64   `json:"transaction_count"`
	UniqueCustomers         int64   `json:"unique_customers"`
	AverageTransactionValue float64 `json:"average_transaction_value"`
	TotalBooksSold          int64   `json:"total_books_sold"`
}

// SalesSummary aggregates a filtered sales window.
type SalesSummary struct {
	TotalRevenue        float64 `json:"total_revenue"`
	TotalTransactions   int64   `json:"total_transactions"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
	DaysWithSales       int64   `json:"days_with_sales"`
}

// SalesResult is the full daily-sales response.
type SalesResult struct {
	Data    []DailySales `json:"data"`
	Page    PageInfo     `json:"pagination"`
	Summary SalesSummary `json:"summary"`
}

// TopBook is one ranked book.
type TopBook struct {
	BookID          int64   `json:"book_id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Category        string  `json:"category"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalSales      int64   `json:"total_sales"`
	AveragePrice    float64 `json:"average_price"`
	UniqueCustomers int64   `json:"unique_customers"`
	Rank            int64   `json:"rank"`
}

// TopBooksResult is the ranked-books response.
type TopBooksResult struct {
	Data           []TopBook `json:"data"`
	MetricUsed     Metric    `json:"metric_used"`
	TimeRange      TimeRange `json:"time_range,omitempty"`
	CategoryFilter string    `json:"category_filter,omitempty"`
}

// Purchase is one row of a user's purchase history.
type Purchase struct {
	TransactionID   int64   `json:"transaction_id"`
	TransactionDate string  `json:"transaction_date"`
	BookTitle       string  `json:"book_title"`
	BookCategory    string  `json:"book_category"`
	BookAuthor      string  `json:"book_author"`
	Amount          float64 `json:"amount"`
	Quantity        int64   `json:"quantity"`
}

// UserAnalytics summarises one user's purchasing behaviour.
type UserAnalytics struct {
	TotalTransactions       int64   `json:"total_transactions"`
	TotalSpent              float64 `json:"total_spent"`
	AverageTransactionValue float64 `json:"average_transaction_value"`
	FirstPurchaseDate       string  `json:"first_purchase_date,omitempty"`
	LastPurchaseDate        string  `json:"last_purchase_date,omitempty"`
	UniqueBooksPurchased    int64   `json:"unique_books_purchased"`
	FavoriteCategory        string  `json:"favorite_category,omitempty"`
	UserSegment             string  `json:"user_segment"`
}

// UserInfo is the dimension record for one user.
type UserInfo struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	SignupDate  string `json:"signup_date"`
	UserSegment string `json:"user_segment"`
}

// UserHistoryResult is the purchase-history response.
type UserHistoryResult struct {
	UserID    int64          `json:"user_id"`
	UserName  string         `json:"user_name"`
	UserEmail string         `json:"user_email"`
	Purchases []Purchase     `json:"purchases"`
	Analytics *UserAnalytics `json:"analytics,omitempty"`
	Page      PageInfo       `json:"pagination"`
}

// CategoryPerformance is one category's revenue breakdown. MarketShare is a
// percentage of total revenue across all categories in the window.
type CategoryPerformance struct {
	Category        string  `json:"category"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalSales      int64   `json:"total_sales"`
	UniqueCustomers int64   `json:"unique_customers"`
	AveragePrice    float64 `json:"average_price"`
	MarketShare     float64 `json:"market_share"`
}

// CustomerSegment is one segment of the customer base.
type CustomerSegment struct {
	Segment           string  `json:"segment"`
	CustomerCount     int64   `json:"customer_count"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	RetentionRate     float64 `json:"retention_rate"`
	LifetimeValue     float64 `json:"lifetime_value"`
}

// MonthlyTrend is one month of aggregated sales.
type MonthlyTrend struct {
	Year              int64   `json:"year"`
	Month             int64   `json:"month"`
	MonthName         string  `json:"month_name"`
	TotalTransactions int64   `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	UniqueCustomers   int64   `json:"unique_customers"`
	UniqueBooks       int64   `json:"unique_books"`
}

// Overview aggregates the whole warehouse.
type Overview struct {
	TotalTransactions   int64   `json:"total_transactions"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
	TotalCustomers      int64   `json:"total_customers"`
	TotalBooks          int64   `json:"total_books"`
	FirstSaleDate       string  `json:"first_sale_date,omitempty"`
	LastSaleDate        string  `json:"last_sale_date,omitempty"`
	DaysWithSales       int64   `json:"days_with_sales"`
}

// ComprehensiveAnalytics is the combined dashboard payload.
type ComprehensiveAnalytics struct {
	Overview            Overview              `json:"overview"`
	CategoryPerformance []CategoryPerformance `json:"category_performance"`
	CustomerSegments    []CustomerSegment     `json:"customer_segments"`
	TopPerformers       map[string][]TopBook  `json:"top_performers"`
	GeneratedAt         time.Time             `json:"generated_at"`
}
