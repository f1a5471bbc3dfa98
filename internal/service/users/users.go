// Package users serves per-user purchase history and behaviour analytics.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booklake/internal/domain"
	"booklake/internal/warehouse"
)

// Service runs user queries against the warehouse.
type Service struct {
	exec   domain.Executor
	logger *slog.Logger
}

// New creates a users service.
func New(exec domain.Executor, logger *slog.Logger) *Service {
	return &Service{exec: exec, logger: logger.With("component", "users")}
}

// Query holds the parameters for a purchase-history request.
type Query struct {
	Page             domain.Page
	Dates            domain.DateRange
	IncludeAnalytics bool
}

// ByID looks up one user in the dimension table.
func (s *Service) ByID(ctx context.Context, userID int64) (*domain.UserInfo, error) {
	sqlText := warehouse.Interpolate(
		"SELECT user_id, name, email, signup_date, user_segment FROM dim_users WHERE user_id = $1",
		userID)
	rows, err := s.exec.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound("User %d not found", userID)
	}
	row := rows[0]
	return &domain.UserInfo{
		UserID:      row.Int("user_id"),
		Name:        row.Str("name"),
		Email:       row.Str("email"),
		SignupDate:  dateOnly(row.Str("signup_date")),
		UserSegment: row.Str("user_segment"),
	}, nil
}

// History returns a user's purchases, newest first, with pagination and an
// optional analytics block. Unknown users fail with not-found.
func (s *Service) History(ctx context.Context, userID int64, q Query) (*domain.UserHistoryResult, error) {
	if err := q.Dates.Validate(); err != nil {
		return nil, err
	}

	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	base := `SELECT
    f.transaction_id,
    f.transaction_timestamp AS transaction_date,
    b.title AS book_title,
    b.category AS book_category,
    b.author AS book_author,
    f.amount,
    f.quantity
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
WHERE f.user_id = $1`
	args := []any{userID}
	base, args = appendDateFilters(base, args, q.Dates)

	countSQL := fmt.Sprintf("SELECT COUNT(*) AS total FROM (%s) AS filtered_data", base)
	countRows, err := s.exec.Query(ctx, warehouse.Interpolate(countSQL, args...))
	if err != nil {
		return nil, fmt.Errorf("count purchases: %w", err)
	}
	var total int64
	if len(countRows) > 0 {
		total = countRows[0].Int("total")
	}

	dataSQL := fmt.Sprintf("%s ORDER BY f.transaction_timestamp DESC LIMIT $%d OFFSET $%d",
		base, len(args)+1, len(args)+2)
	dataArgs := append(args, q.Page.Limit, q.Page.Offset)

	rows, err := s.exec.Query(ctx, warehouse.Interpolate(dataSQL, dataArgs...))
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}

	purchases := make([]domain.Purchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, domain.Purchase{
			TransactionID:   row.Int("transaction_id"),
			TransactionDate: row.Str("transaction_date"),
			BookTitle:       row.Str("book_title"),
			BookCategory:    row.Str("book_category"),
			BookAuthor:      row.Str("book_author"),
			Amount:          row.Float("amount"),
			Quantity:        row.Int("quantity"),
		})
	}

	result := &domain.UserHistoryResult{
		UserID:    userID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Purchases: purchases,
		Page: domain.PageInfo{
			TotalRecords: total,
			Limit:        q.Page.Limit,
			Offset:       q.Page.Offset,
			HasMore:      int64(q.Page.Offset+q.Page.Limit) < total,
		},
	}

	if q.IncludeAnalytics {
		analytics, err := s.analytics(ctx, userID, user.UserSegment, q.Dates)
		if err != nil {
			// Analytics is a bonus block on the history payload.
			s.logger.Warn("user analytics failed", "user_id", userID, "error", err)
		} else {
			result.Analytics = analytics
		}
	}

	return result, nil
}

// Analytics returns a user's behaviour summary over an optional date window.
// Unknown users fail with not-found.
func (s *Service) Analytics(ctx context.Context, userID int64, dates domain.DateRange) (*domain.UserInfo, *domain.UserAnalytics, error) {
	if err := dates.Validate(); err != nil {
		return nil, nil, err
	}
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	analytics, err := s.analytics(ctx, userID, user.UserSegment, dates)
	if err != nil {
		return nil, nil, err
	}
	return user, analytics, nil
}

func (s *Service) analytics(ctx context.Context, userID int64, segment string, dates domain.DateRange) (*domain.UserAnalytics, error) {
	base := `SELECT
    COUNT(f.transaction_id) AS total_transactions,
    SUM(f.amount) AS total_spent,
    AVG(f.amount) AS average_transaction_value,
    MIN(f.transaction_timestamp) AS first_purchase_date,
    MAX(f.transaction_timestamp) AS last_purchase_date,
    COUNT(DISTINCT f.book_id) AS unique_books_purchased
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
WHERE f.user_id = $1`
	args := []any{userID}
	base, args = appendDateFilters(base, args, dates)

	rows, err := s.exec.Query(ctx, warehouse.Interpolate(base, args...))
	if err != nil {
		return nil, fmt.Errorf("query user analytics: %w", err)
	}

	analytics := &domain.UserAnalytics{UserSegment: segment}
	if len(rows) > 0 {
		row := rows[0]
		analytics.TotalTransactions = row.Int("total_transactions")
		analytics.TotalSpent = row.Float("total_spent")
		analytics.AverageTransactionValue = row.Float("average_transaction_value")
		analytics.FirstPurchaseDate = row.Str("first_purchase_date")
		analytics.LastPurchaseDate = row.Str("last_purchase_date")
		analytics.UniqueBooksPurchased = row.Int("unique_books_purchased")
	}

	favSQL := warehouse.Interpolate(`SELECT b.category, COUNT(*) AS purchase_count
FROM fact_sales f
JOIN dim_books b ON f.book_id = b.book_id
WHERE f.user_id = $1
GROUP BY b.category
ORDER BY purchase_count DESC
LIMIT 1`, userID)
	favRows, err := s.exec.Query(ctx, favSQL)
	if err != nil {
		return nil, fmt.Errorf("query favorite category: %w", err)
	}
	if len(favRows) > 0 {
		analytics.FavoriteCategory = favRows[0].Str("category")
	}

	return analytics, nil
}

// appendDateFilters extends a WHERE clause with timestamp bounds, continuing
// the positional parameter numbering.
func appendDateFilters(sqlText string, args []any, dates domain.DateRange) (string, []any) {
	var b strings.Builder
	b.WriteString(sqlText)
	if !dates.Start.IsZero() {
		args = append(args, dates.Start.Format("2006-01-02"))
		fmt.Fprintf(&b, " AND f.transaction_timestamp >= $%d", len(args))
	}
	if !dates.End.IsZero() {
		args = append(args, dates.End.Format("2006-01-02"))
		fmt.Fprintf(&b, " AND f.transaction_timestamp <= $%d", len(args))
	}
	return b.String(), args
}

func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
