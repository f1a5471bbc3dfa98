// Package warehouse implements SQL statement execution against the analytics
// warehouse: a polling executor over the Redshift Data API for remote mode,
// and a database/sql executor over embedded DuckDB for local mode.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"

	"booklake/internal/config"
	"booklake/internal/domain"
)

// Compile-time check: RedshiftExecutor implements the executor contract.
var _ domain.Executor = (*RedshiftExecutor)(nil)

// statementAPI is the subset of the Redshift Data API client the executor
// uses. Narrowed for testability.
type statementAPI interface {
	ExecuteStatement(ctx context.Context, params *redshiftdata.ExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
	GetStatementResult(ctx context.Context, params *redshiftdata.GetStatementResultInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.GetStatementResultOutput, error)
}

// RedshiftExecutor submits statements through the Redshift Data API and polls
// until they reach a terminal status. Statements keep running remotely if the
// caller's context is cancelled — there is no remote abort.
type RedshiftExecutor struct {
	client       statementAPI
	clusterID    string
	database     string
	dbUser       string
	pollInterval time.Duration
	timeout      time.Duration
	logger       *slog.Logger
}

// NewRedshiftExecutor creates an executor from config, constructing the Data
// API client for the configured region.
func NewRedshiftExecutor(cfg *config.Config, logger *slog.Logger) *RedshiftExecutor {
	client := redshiftdata.New(redshiftdata.Options{
		Region: cfg.Redshift.Region,
	})
	return newRedshiftExecutor(client, cfg, logger)
}

func newRedshiftExecutor(client statementAPI, cfg *config.Config, logger *slog.Logger) *RedshiftExecutor {
	return &RedshiftExecutor{
		client:       client,
		clusterID:    cfg.Redshift.ClusterIdentifier(),
		database:     cfg.Redshift.Database,
		dbUser:       cfg.Redshift.User,
		pollInterval: cfg.Redshift.PollInterval,
		timeout:      cfg.Redshift.Timeout,
		logger:       logger,
	}
}

// Exec submits a statement and waits for completion, discarding any result set.
func (e *RedshiftExecutor) Exec(ctx context.Context, sqlText string) error {
	_, err := e.submitAndWait(ctx, sqlText)
	return err
}

// Query submits a statement, waits for completion, and decodes the typed
// result set into rows. An empty result set yields an empty, non-nil slice.
func (e *RedshiftExecutor) Query(ctx context.Context, sqlText string) ([]domain.Row, error) {
	id, err := e.submitAndWait(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return e.fetchResult(ctx, id)
}

// submitAndWait runs the submit-then-poll loop and returns the statement id
// once the statement is FINISHED.
func (e *RedshiftExecutor) submitAndWait(ctx context.Context, sqlText string) (string, error) {
	out, err := e.client.ExecuteStatement(ctx, &redshiftdata.ExecuteStatementInput{
		ClusterIdentifier: aws.String(e.clusterID),
		Database:          aws.String(e.database),
		DbUser:            aws.String(e.dbUser),
		Sql:               aws.String(sqlText),
	})
	if err != nil {
		return "", fmt.Errorf("execute statement: %w", err)
	}
	id := aws.ToString(out.Id)
	e.logger.Debug("statement submitted", "id", id)

	deadline := time.Now().Add(e.timeout)
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		desc, err := e.client.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(id)})
		if err != nil {
			return "", fmt.Errorf("describe statement %s: %w", id, err)
		}

		switch desc.Status {
		case types.StatusStringFinished:
			return id, nil
		case types.StatusStringFailed, types.StatusStringAborted:
			msg := aws.ToString(desc.Error)
			if msg == "" {
				msg = "unknown error"
			}
			e.logger.Error("statement failed", "id", id, "status", desc.Status, "error", msg)
			return "", domain.ErrStatement(string(desc.Status), "%s", msg)
		}

		if time.Now().After(deadline) {
			return "", domain.ErrStatementTimeout("statement %s timed out after %s", id, e.timeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// fetchResult pages through GetStatementResult and reshapes records into
// column-name→value rows.
func (e *RedshiftExecutor) fetchResult(ctx context.Context, id string) ([]domain.Row, error) {
	rows := []domain.Row{}
	var cols []string
	var next *string

	for {
		out, err := e.client.GetStatementResult(ctx, &redshiftdata.GetStatementResultInput{
			Id:        aws.String(id),
			NextToken: next,
		})
		if err != nil {
			return nil, fmt.Errorf("get statement result %s: %w", id, err)
		}

		if cols == nil {
			cols = make([]string, len(out.ColumnMetadata))
			for i, c := range out.ColumnMetadata {
				cols[i] = aws.ToString(c.Name)
			}
		}

		for _, record := range out.Records {
			row := make(domain.Row, len(cols))
			for i, field := range record {
				if i >= len(cols) {
					break
				}
				row[cols[i]] = decodeField(field)
			}
			rows = append(rows, row)
		}

		if out.NextToken == nil {
			return rows, nil
		}
		next = out.NextToken
	}
}

// decodeField maps a Data API field union member to a Go value.
func decodeField(f types.Field) any {
	switch v := f.(type) {
	case *types.FieldMemberStringValue:
		return v.Value
	case *types.FieldMemberLongValue:
		return v.Value
	case *types.FieldMemberDoubleValue:
		return v.Value
	case *types.FieldMemberBooleanValue:
		return v.Value
	case *types.FieldMemberBlobValue:
		return v.Value
	default:
		// FieldMemberIsNull and unknown members.
		return nil
	}
}
