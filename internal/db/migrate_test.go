package db

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklake/internal/domain"
)

type fakeExecutor struct {
	statements []string
	applied    []int64
}

func (f *fakeExecutor) Exec(_ context.Context, sqlText string) error {
	f.statements = append(f.statements, sqlText)
	return nil
}

func (f *fakeExecutor) Query(_ context.Context, _ string) ([]domain.Row, error) {
	rows := []domain.Row{}
	for _, v := range f.applied {
		rows = append(rows, domain.Row{"version": v})
	}
	return rows, nil
}

func TestRunRemoteMigrationsAppliesAllUpStatements(t *testing.T) {
	exec := &fakeExecutor{}
	require.NoError(t, RunRemoteMigrations(context.Background(), exec, slog.New(slog.DiscardHandler)))

	var tables, views, records int
	for _, s := range exec.statements {
		switch {
		case strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"):
			tables++
		case strings.HasPrefix(s, "CREATE OR REPLACE VIEW"):
			views++
		case strings.HasPrefix(s, "INSERT INTO schema_migrations"):
			records++
		}
	}
	// schema_migrations itself plus four star-schema and two summary tables.
	assert.Equal(t, 7, tables)
	assert.Equal(t, 2, views)
	assert.Equal(t, 3, records)

	// No Down statements leak through.
	for _, s := range exec.statements {
		assert.NotContains(t, s, "DROP TABLE")
		assert.NotContains(t, s, "DROP VIEW")
	}
}

func TestRunRemoteMigrationsSkipsApplied(t *testing.T) {
	exec := &fakeExecutor{applied: []int64{1, 2}}
	require.NoError(t, RunRemoteMigrations(context.Background(), exec, slog.New(slog.DiscardHandler)))

	for _, s := range exec.statements {
		assert.NotContains(t, s, "CREATE TABLE IF NOT EXISTS dim_date")
		assert.NotContains(t, s, "fact_book_performance")
	}

	var records []string
	for _, s := range exec.statements {
		if strings.HasPrefix(s, "INSERT INTO schema_migrations") {
			records = append(records, s)
		}
	}
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "(3)")
}

func TestMigrationVersion(t *testing.T) {
	v, err := migrationVersion("00002_summary_tables.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = migrationVersion("nope.sql")
	assert.Error(t, err)
}

func TestUpStatements(t *testing.T) {
	content := `-- +goose Up
CREATE TABLE a (
    id INTEGER
);
CREATE TABLE b (id INTEGER);

-- comment inside up
INSERT INTO a VALUES (1);

-- +goose Down
DROP TABLE b;
DROP TABLE a;
`
	stmts := upStatements(content)
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.Equal(t, "CREATE TABLE b (id INTEGER)", stmts[1])
	assert.Equal(t, "INSERT INTO a VALUES (1)", stmts[2])
}

func TestUpStatementsStatementBlock(t *testing.T) {
	content := `-- +goose Up
-- +goose StatementBegin
CREATE FUNCTION f() AS $$
SELECT 1;
SELECT 2;
$$;
-- +goose StatementEnd
-- +goose Down
`
	stmts := upStatements(content)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "SELECT 1;")
	assert.Contains(t, stmts[0], "SELECT 2;")
}
