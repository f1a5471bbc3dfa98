package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"booklake/internal/config"
	"booklake/internal/domain"
	"booklake/internal/etl"
)

// s3API is the subset of the S3 client the stager uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Stager uploads cleaned datasets to S3 and bulk-loads them with COPY. This is
// the fast path for remote warehouses; the batch-insert path stays as the
// fallback when staging is not configured.
type Stager struct {
	s3      s3API
	exec    domain.Executor
	bucket  string
	roleARN string
	logger  *slog.Logger
	now     func() time.Time
}

// NewStager builds a Stager from config. Call only when cfg.HasS3Config().
func NewStager(cfg *config.Config, exec domain.Executor, logger *slog.Logger) *Stager {
	client := s3.New(s3.Options{
		Region: aws.ToString(cfg.S3Region),
		Credentials: credentials.NewStaticCredentialsProvider(
			aws.ToString(cfg.S3KeyID), aws.ToString(cfg.S3Secret), ""),
	})
	return newStager(client, exec, aws.ToString(cfg.S3Bucket), cfg.S3RoleARN, logger)
}

func newStager(client s3API, exec domain.Executor, bucket, roleARN string, logger *slog.Logger) *Stager {
	return &Stager{
		s3:      client,
		exec:    exec,
		bucket:  bucket,
		roleARN: roleARN,
		logger:  logger.With("component", "stager"),
		now:     time.Now,
	}
}

// StageAndCopy uploads the three cleaned datasets under processed/ and issues
// COPY statements in dependency order: dimensions before facts.
func (s *Stager) StageAndCopy(ctx context.Context, ds *etl.Dataset) error {
	uploads := []struct {
		key  string
		body []byte
	}{
		{"processed/users.csv", s.usersCSV(ds.Users)},
		{"processed/books.csv", s.booksCSV(ds.Books)},
		{"processed/transactions.csv", s.transactionsCSV(ds.Transactions)},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uploads {
		g.Go(func() error {
			return s.upload(gctx, u.key, u.body)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stage to s3: %w", err)
	}

	for _, c := range s.copyCommands() {
		s.logger.Info("copying staged data", "table", c.table)
		if err := s.exec.Exec(ctx, c.sql); err != nil {
			return fmt.Errorf("copy %s: %w", c.table, err)
		}
	}
	return nil
}

func (s *Stager) upload(ctx context.Context, key string, body []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Info("uploaded staging file", "key", key, "bytes", len(body))
	return nil
}

func (s *Stager) usersCSV(users []domain.UserRecord) []byte {
	today := s.now()
	return writeCSV(dimUserColumns, len(users), func(w *csv.Writer) {
		for _, u := range users {
			city, state := splitLocation(u.Location)
			w.Write([]string{ //nolint:errcheck // bytes.Buffer writes cannot fail
				formatInt(u.ID), u.Name, u.Email, u.Location,
				u.SignupDate.Format("2006-01-02"),
				state, city, userSegment(u.SignupDate, today),
			})
		}
	})
}

func (s *Stager) booksCSV(books []domain.BookRecord) []byte {
	currentYear := s.now().Year()
	return writeCSV(dimBookColumns, len(books), func(w *csv.Writer) {
		for _, b := range books {
			w.Write([]string{ //nolint:errcheck
				formatInt(b.BookID), b.Title, b.Author, b.Category, b.ISBN, b.Publisher,
				formatInt(b.PublicationYear), formatInt(b.Pages),
				formatFloat(b.BasePrice),
				priceTier(b.BasePrice), ageCategory(b.PublicationYear, currentYear),
			})
		}
	})
}

func (s *Stager) transactionsCSV(txns []domain.TransactionRecord) []byte {
	return writeCSV(factSalesColumns, len(txns), func(w *csv.Writer) {
		for _, t := range txns {
			if t.Amount < 0 {
				continue
			}
			w.Write([]string{ //nolint:errcheck
				formatInt(t.TransactionID), formatInt(t.UserID), formatInt(t.BookID),
				formatInt(DateID(t.Timestamp)), formatFloat(t.Amount),
				"1", "0",
				t.Timestamp.Format("2006-01-02 15:04:05"),
			})
		}
	})
}

func writeCSV(header []string, rowHint int, writeRows func(*csv.Writer)) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 64*rowHint))
	w := csv.NewWriter(buf)
	w.Write(header) //nolint:errcheck
	writeRows(w)
	w.Flush()
	return buf.Bytes()
}

func formatInt(n int64) string     { return strconv.FormatInt(n, 10) }
func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

type copyCommand struct {
	table string
	sql   string
}

// copyCommands renders the COPY statements in load order.
func (s *Stager) copyCommands() []copyCommand {
	opts := "CSV IGNOREHEADER 1 DELIMITER ',' NULL AS '' ACCEPTINVCHARS TRUNCATECOLUMNS"
	return []copyCommand{
		{
			table: "dim_users",
			sql: fmt.Sprintf("COPY dim_users (%s) FROM 's3://%s/processed/users.csv' IAM_ROLE '%s' %s",
				columnList(dimUserColumns), s.bucket, s.roleARN, opts),
		},
		{
			table: "dim_books",
			sql: fmt.Sprintf("COPY dim_books (%s) FROM 's3://%s/processed/books.csv' IAM_ROLE '%s' %s",
				columnList(dimBookColumns), s.bucket, s.roleARN, opts),
		},
		{
			table: "fact_sales",
			sql: fmt.Sprintf("COPY fact_sales (%s) FROM 's3://%s/processed/transactions.csv' IAM_ROLE '%s' %s TIMEFORMAT 'YYYY-MM-DD HH24:MI:SS'",
				columnList(factSalesColumns), s.bucket, s.roleARN, opts),
		},
	}
}

func columnList(cols []string) string { return strings.Join(cols, ", ") }
