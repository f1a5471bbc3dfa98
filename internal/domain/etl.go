package domain

import "time"

// UserRecord is a cleaned row from users.csv.
type UserRecord struct {
	ID         int64
	Name       string
	Email      string
	Location   string
	SignupDate time.Time
}

// BookRecord is a cleaned row from books.csv.
type BookRecord struct {
	BookID          int64
	Title           string
	Author          string
	Category        string
	ISBN            string
	Publisher       string
	PublicationYear int64
	Pages           int64
	BasePrice       float64
}

// TransactionRecord is a cleaned row from transactions.csv.
type TransactionRecord struct {
	TransactionID int64
	UserID        int64
	BookID        int64
	Amount        float64
	Timestamp     time.Time
}

// CleanReport counts what the cleaning pass kept and dropped.
type CleanReport struct {
	UsersKept            int
	UsersDropped         int
	BooksKept            int
	BooksDropped         int
	TransactionsKept     int
	TransactionsDropped  int
	OrphanedTransactions int
}

// TableReport counts the outcome of loading one table.
type TableReport struct {
	Table    string
	Inserted int
	Failed   int
}

// LoadReport aggregates per-table load outcomes for one warehouse load.
type LoadReport struct {
	Tables          []TableReport
	NegativeSkipped int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Add records one table's outcome.
func (r *LoadReport) Add(table string, inserted, failed int) {
	r.Tables = append(r.Tables, TableReport{Table: table, Inserted: inserted, Failed: failed})
}

// TotalInserted sums inserted rows across tables.
func (r *LoadReport) TotalInserted() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Inserted
	}
	return n
}

// TotalFailed sums failed rows across tables.
func (r *LoadReport) TotalFailed() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Failed
	}
	return n
}
