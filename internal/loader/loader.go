// Package loader populates the star schema from cleaned ETL output: dimension
// tables first, then facts, then the pre-aggregated summary tables. Rows go in
// through batched conflict-ignoring inserts, or through S3 staging and COPY
// when the warehouse and bucket are configured.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"booklake/internal/domain"
	"booklake/internal/etl"
)

// Loader writes a cleaned dataset into the warehouse.
type Loader struct {
	exec   domain.Executor
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Loader over the given executor.
func New(exec domain.Executor, logger *slog.Logger) *Loader {
	return &Loader{
		exec:   exec,
		logger: logger.With("component", "loader"),
		now:    time.Now,
	}
}

// LoadAll loads the full dataset: date dimension, users, books, sales facts,
// then the summary tables. Constraint checks are relaxed around the fact load
// and restored even when loading fails partway.
func (l *Loader) LoadAll(ctx context.Context, ds *etl.Dataset) (report *domain.LoadReport, err error) {
	report = &domain.LoadReport{StartedAt: l.now()}
	l.logger.Info("starting warehouse load")

	if err := l.loadDimDate(ctx, report); err != nil {
		return report, err
	}
	if err := l.loadDimUsers(ctx, ds.Users, report); err != nil {
		return report, err
	}
	if err := l.loadDimBooks(ctx, ds.Books, report); err != nil {
		return report, err
	}

	l.relaxConstraints(ctx)
	defer l.restoreConstraints(ctx)

	if err := l.loadFactSales(ctx, ds.Transactions, report); err != nil {
		return report, err
	}

	if err := l.RefreshSummaries(ctx); err != nil {
		return report, err
	}

	report.FinishedAt = l.now()
	l.logger.Info("warehouse load finished",
		"inserted", report.TotalInserted(),
		"failed", report.TotalFailed(),
		"negative_skipped", report.NegativeSkipped,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// SeedDates loads only the date dimension. The COPY-based load path stages
// every other table through S3 but still needs the calendar generated here.
func (l *Loader) SeedDates(ctx context.Context) (*domain.LoadReport, error) {
	report := &domain.LoadReport{StartedAt: l.now()}
	if err := l.loadDimDate(ctx, report); err != nil {
		return report, err
	}
	report.FinishedAt = l.now()
	return report, nil
}

// dateDimStart and dateDimEnd bound the generated date dimension.
var (
	dateDimStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	dateDimEnd   = time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)
)

var dimDateColumns = []string{
	"date_id", "full_date", "year", "quarter", "month", "month_name",
	"day", "day_of_week", "day_name", "is_weekend", "is_holiday",
	"fiscal_year", "fiscal_quarter",
}

func (l *Loader) loadDimDate(ctx context.Context, report *domain.LoadReport) error {
	l.logger.Info("loading date dimension")

	var rows [][]any
	for d := dateDimStart; !d.After(dateDimEnd); d = d.AddDate(0, 0, 1) {
		rows = append(rows, dimDateRow(d))
	}

	inserted, failed, err := batchInsert(ctx, l.exec, l.logger, "dim_date", dimDateColumns, rows)
	report.Add("dim_date", inserted, failed)
	if err != nil {
		return fmt.Errorf("load dim_date: %w", err)
	}
	return nil
}

// dimDateRow derives all calendar attributes for one day. The fiscal year
// starts in April.
func dimDateRow(d time.Time) []any {
	month := int(d.Month())
	quarter := (month-1)/3 + 1
	isoWeekday := int(d.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	fiscalYear := d.Year()
	fiscalQuarter := quarter
	if month < 4 {
		fiscalYear--
		fiscalQuarter = (month+8)/3 + 1
	}
	return []any{
		DateID(d),
		d.Format("2006-01-02"),
		d.Year(),
		quarter,
		month,
		d.Month().String(),
		d.Day(),
		isoWeekday,
		d.Weekday().String(),
		isoWeekday >= 6,
		false,
		fiscalYear,
		fiscalQuarter,
	}
}

// DateID converts a time to the YYYYMMDD surrogate key of dim_date.
func DateID(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

var dimUserColumns = []string{
	"user_id", "name", "email", "location", "signup_date",
	"state", "city", "user_segment",
}

func (l *Loader) loadDimUsers(ctx context.Context, users []domain.UserRecord, report *domain.LoadReport) error {
	l.logger.Info("loading users dimension", "count", len(users))

	today := l.now()
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		city, state := splitLocation(u.Location)
		rows = append(rows, []any{
			u.ID, u.Name, u.Email, u.Location, u.SignupDate.Format("2006-01-02"),
			state, city, userSegment(u.SignupDate, today),
		})
	}

	inserted, failed, err := batchInsert(ctx, l.exec, l.logger, "dim_users", dimUserColumns, rows)
	report.Add("dim_users", inserted, failed)
	if err != nil {
		return fmt.Errorf("load dim_users: %w", err)
	}
	return nil
}

// splitLocation parses "City, ST" into its parts. Without a comma the whole
// value is the city and the state is empty.
func splitLocation(location string) (city, state string) {
	city, state, ok := strings.Cut(location, ",")
	city = strings.TrimSpace(city)
	if !ok {
		return city, ""
	}
	return city, strings.TrimSpace(state)
}

// userSegment classifies a user by account age.
func userSegment(signup, today time.Time) string {
	days := int(today.Sub(signup).Hours() / 24)
	switch {
	case days > 365:
		return "High Value"
	case days > 90:
		return "Medium Value"
	default:
		return "Low Value"
	}
}

var dimBookColumns = []string{
	"book_id", "title", "author", "category", "isbn", "publisher",
	"publication_year", "pages", "base_price", "price_tier", "age_category",
}

func (l *Loader) loadDimBooks(ctx context.Context, books []domain.BookRecord, report *domain.LoadReport) error {
	l.logger.Info("loading books dimension", "count", len(books))

	currentYear := l.now().Year()
	rows := make([][]any, 0, len(books))
	for _, b := range books {
		rows = append(rows, []any{
			b.BookID, b.Title, b.Author, b.Category, b.ISBN, b.Publisher,
			b.PublicationYear, b.Pages, b.BasePrice,
			priceTier(b.BasePrice), ageCategory(b.PublicationYear, currentYear),
		})
	}

	inserted, failed, err := batchInsert(ctx, l.exec, l.logger, "dim_books", dimBookColumns, rows)
	report.Add("dim_books", inserted, failed)
	if err != nil {
		return fmt.Errorf("load dim_books: %w", err)
	}
	return nil
}

func priceTier(price float64) string {
	switch {
	case price < 10:
		return "Low"
	case price < 25:
		return "Medium"
	default:
		return "High"
	}
}

func ageCategory(pubYear int64, currentYear int) string {
	switch {
	case pubYear >= int64(currentYear-5):
		return "Recent"
	case pubYear >= int64(currentYear-20):
		return "Classic"
	default:
		return "Vintage"
	}
}

var factSalesColumns = []string{
	"transaction_id", "user_id", "book_id", "date_id",
	"amount", "quantity", "discount_amount", "transaction_timestamp",
}

func (l *Loader) loadFactSales(ctx context.Context, txns []domain.TransactionRecord, report *domain.LoadReport) error {
	l.logger.Info("loading sales facts", "count", len(txns))

	rows := make([][]any, 0, len(txns))
	for _, t := range txns {
		// Negative amounts never reach the fact table. The cleaner already
		// drops them, but the fact load guards independently.
		if t.Amount < 0 {
			report.NegativeSkipped++
			continue
		}
		rows = append(rows, []any{
			t.TransactionID, t.UserID, t.BookID, DateID(t.Timestamp),
			t.Amount, 1, 0.0, t.Timestamp,
		})
	}
	if report.NegativeSkipped > 0 {
		l.logger.Info("skipped negative amounts", "count", report.NegativeSkipped)
	}

	inserted, failed, err := batchInsert(ctx, l.exec, l.logger, "fact_sales", factSalesColumns, rows)
	report.Add("fact_sales", inserted, failed)
	if err != nil {
		return fmt.Errorf("load fact_sales: %w", err)
	}
	return nil
}

const dailySummarySQL = `
INSERT INTO fact_daily_sales_summary (
    date_id, total_revenue, transaction_count, unique_users,
    average_transaction_value, total_quantity
)
SELECT
    f.date_id,
    SUM(f.amount) AS total_revenue,
    COUNT(f.transaction_id) AS transaction_count,
    COUNT(DISTINCT f.user_id) AS unique_users,
    AVG(f.amount) AS average_transaction_value,
    SUM(f.quantity) AS total_quantity
FROM fact_sales f
GROUP BY f.date_id
ON CONFLICT (date_id) DO UPDATE SET
    total_revenue = EXCLUDED.total_revenue,
    transaction_count = EXCLUDED.transaction_count,
    unique_users = EXCLUDED.unique_users,
    average_transaction_value = EXCLUDED.average_transaction_value,
    total_quantity = EXCLUDED.total_quantity,
    updated_at = CURRENT_TIMESTAMP`

const bookPerformanceSQL = `
INSERT INTO fact_book_performance (
    book_id, total_sales, total_revenue, average_price,
    unique_customers, first_sale_date, last_sale_date
)
SELECT
    f.book_id,
    COUNT(f.transaction_id) AS total_sales,
    SUM(f.amount) AS total_revenue,
    AVG(f.amount) AS average_price,
    COUNT(DISTINCT f.user_id) AS unique_customers,
    MIN(d.full_date) AS first_sale_date,
    MAX(d.full_date) AS last_sale_date
FROM fact_sales f
JOIN dim_date d ON f.date_id = d.date_id
GROUP BY f.book_id
ON CONFLICT (book_id) DO UPDATE SET
    total_sales = EXCLUDED.total_sales,
    total_revenue = EXCLUDED.total_revenue,
    average_price = EXCLUDED.average_price,
    unique_customers = EXCLUDED.unique_customers,
    first_sale_date = EXCLUDED.first_sale_date,
    last_sale_date = EXCLUDED.last_sale_date,
    updated_at = CURRENT_TIMESTAMP`

// RefreshSummaries rebuilds the pre-aggregated summary tables from the current
// fact rows. Existing summary rows are upserted in place.
func (l *Loader) RefreshSummaries(ctx context.Context) error {
	l.logger.Info("refreshing summary tables")
	if err := l.exec.Exec(ctx, dailySummarySQL); err != nil {
		return fmt.Errorf("refresh daily sales summary: %w", err)
	}
	if err := l.exec.Exec(ctx, bookPerformanceSQL); err != nil {
		return fmt.Errorf("refresh book performance: %w", err)
	}
	return nil
}

// relaxConstraints turns off referential checks for the fact load. Not every
// backend supports the statement; failure downgrades to a warning because the
// batch path tolerates constraint rejects row by row anyway.
func (l *Loader) relaxConstraints(ctx context.Context) {
	if err := l.exec.Exec(ctx, "SET session_replication_role = replica"); err != nil {
		l.logger.Warn("could not relax constraint checks", "error", err)
	}
}

func (l *Loader) restoreConstraints(ctx context.Context) {
	if err := l.exec.Exec(ctx, "SET session_replication_role = DEFAULT"); err != nil {
		l.logger.Warn("could not restore constraint checks", "error", err)
	}
}
