// Package etl reads the raw CSV extracts (users, books, transactions), cleans
// and type-coerces them, and drops rows that cannot be repaired. Coercion is
// lenient per field: an unparseable cell nulls the field, and a null in a
// required field drops the row. Dropped counts are reported, never raised.
package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"booklake/internal/domain"
)

// Amounts outside this window are treated as data-entry errors and dropped.
const (
	minAmount = 0
	maxAmount = 10000
)

// rawUser mirrors the users.csv header.
type rawUser struct {
	ID         string `csv:"id"`
	Name       string `csv:"name"`
	Email      string `csv:"email"`
	Location   string `csv:"location"`
	SignupDate string `csv:"signup_date"`
}

// rawBook mirrors the books.csv header.
type rawBook struct {
	BookID          string `csv:"book_id"`
	Title           string `csv:"title"`
	Author          string `csv:"author"`
	Category        string `csv:"category"`
	ISBN            string `csv:"isbn"`
	Publisher       string `csv:"publisher"`
	PublicationYear string `csv:"publication_year"`
	Pages           string `csv:"pages"`
	BasePrice       string `csv:"base_price"`
}

// rawTransaction mirrors the transactions.csv header.
type rawTransaction struct {
	TransactionID string `csv:"transaction_id"`
	UserID        string `csv:"user_id"`
	BookID        string `csv:"book_id"`
	Amount        string `csv:"amount"`
	Timestamp     string `csv:"timestamp"`
}

// Cleaner loads and cleans the three CSV extracts from a data directory.
type Cleaner struct {
	dataDir string
	logger  *slog.Logger
}

// NewCleaner creates a Cleaner reading from dataDir.
func NewCleaner(dataDir string, logger *slog.Logger) *Cleaner {
	return &Cleaner{dataDir: dataDir, logger: logger.With("component", "etl")}
}

// Dataset is the cleaned, referentially consistent output of one ETL pass.
type Dataset struct {
	Users        []domain.UserRecord
	Books        []domain.BookRecord
	Transactions []domain.TransactionRecord
	Report       domain.CleanReport
}

// CleanAll reads users.csv, books.csv, and transactions.csv, cleans each, and
// removes transactions referencing unknown users or books.
func (c *Cleaner) CleanAll() (*Dataset, error) {
	var rawUsers []rawUser
	if err := c.readCSV("users.csv", &rawUsers); err != nil {
		return nil, err
	}
	var rawBooks []rawBook
	if err := c.readCSV("books.csv", &rawBooks); err != nil {
		return nil, err
	}
	var rawTxns []rawTransaction
	if err := c.readCSV("transactions.csv", &rawTxns); err != nil {
		return nil, err
	}

	c.logger.Info("raw data loaded",
		"users", len(rawUsers), "books", len(rawBooks), "transactions", len(rawTxns))

	ds := &Dataset{}
	ds.Users = c.cleanUsers(rawUsers, &ds.Report)
	ds.Books = c.cleanBooks(rawBooks, &ds.Report)
	ds.Transactions = c.cleanTransactions(rawTxns, &ds.Report)

	validUsers := make(map[int64]struct{}, len(ds.Users))
	for _, u := range ds.Users {
		validUsers[u.ID] = struct{}{}
	}
	validBooks := make(map[int64]struct{}, len(ds.Books))
	for _, b := range ds.Books {
		validBooks[b.BookID] = struct{}{}
	}

	kept := ds.Transactions[:0]
	for _, t := range ds.Transactions {
		if _, ok := validUsers[t.UserID]; !ok {
			ds.Report.OrphanedTransactions++
			continue
		}
		if _, ok := validBooks[t.BookID]; !ok {
			ds.Report.OrphanedTransactions++
			continue
		}
		kept = append(kept, t)
	}
	ds.Transactions = kept
	ds.Report.TransactionsKept = len(kept)

	if ds.Report.OrphanedTransactions > 0 {
		c.logger.Info("removed orphaned transactions", "count", ds.Report.OrphanedTransactions)
	}
	c.logger.Info("data cleaning completed",
		"users", ds.Report.UsersKept,
		"books", ds.Report.BooksKept,
		"transactions", ds.Report.TransactionsKept)
	return ds, nil
}

// readCSV decodes one CSV file into a slice of raw records. Unknown columns
// are ignored so extra PII columns in the extracts never reach the pipeline.
func (c *Cleaner) readCSV(name string, out any) error {
	path := filepath.Join(c.dataDir, name)
	f, err := os.Open(path) //nolint:gosec // path is config-controlled
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.LazyQuotes = true
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("%s: empty file", name)
		}
		return fmt.Errorf("read %s header: %w", name, err)
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (c *Cleaner) cleanUsers(raw []rawUser, report *domain.CleanReport) []domain.UserRecord {
	users := make([]domain.UserRecord, 0, len(raw))
	for _, r := range raw {
		id, ok := parseID(r.ID)
		if !ok {
			report.UsersDropped++
			continue
		}
		signup, ok := parseDate(r.SignupDate)
		if !ok {
			report.UsersDropped++
			continue
		}
		users = append(users, domain.UserRecord{
			ID:         id,
			Name:       strings.TrimSpace(r.Name),
			Email:      strings.TrimSpace(r.Email),
			Location:   strings.TrimSpace(r.Location),
			SignupDate: signup,
		})
	}
	report.UsersKept = len(users)
	return users
}

func (c *Cleaner) cleanBooks(raw []rawBook, report *domain.CleanReport) []domain.BookRecord {
	books := make([]domain.BookRecord, 0, len(raw))
	for _, r := range raw {
		id, ok := parseID(r.BookID)
		if !ok {
			report.BooksDropped++
			continue
		}
		// Numeric attributes are best-effort: a bad cell zeroes the field
		// rather than dropping the book.
		year, _ := parseID(r.PublicationYear)
		pages, _ := parseID(r.Pages)
		price, _ := parseFloat(r.BasePrice)
		books = append(books, domain.BookRecord{
			BookID:          id,
			Title:           strings.TrimSpace(r.Title),
			Author:          strings.TrimSpace(r.Author),
			Category:        strings.TrimSpace(r.Category),
			ISBN:            strings.TrimSpace(r.ISBN),
			Publisher:       strings.TrimSpace(r.Publisher),
			PublicationYear: year,
			Pages:           pages,
			BasePrice:       price,
		})
	}
	report.BooksKept = len(books)
	return books
}

func (c *Cleaner) cleanTransactions(raw []rawTransaction, report *domain.CleanReport) []domain.TransactionRecord {
	txns := make([]domain.TransactionRecord, 0, len(raw))
	for _, r := range raw {
		txnID, ok1 := parseID(r.TransactionID)
		userID, ok2 := parseID(r.UserID)
		bookID, ok3 := parseID(r.BookID)
		ts, ok4 := parseTimestamp(r.Timestamp)
		amount, ok5 := parseAmount(r.Amount)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			report.TransactionsDropped++
			continue
		}
		txns = append(txns, domain.TransactionRecord{
			TransactionID: txnID,
			UserID:        userID,
			BookID:        bookID,
			Amount:        amount,
			Timestamp:     ts,
		})
	}
	return txns
}

// parseID accepts integers in plain or float form ("42", "42.0"). Exports
// sometimes round-trip ids through floating point.
func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseAmount parses and range-checks a transaction amount.
func parseAmount(s string) (float64, bool) {
	f, ok := parseFloat(s)
	if !ok || f < minAmount || f > maxAmount {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
