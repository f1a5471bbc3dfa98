// Package db holds the embedded schema migrations and the two ways of
// applying them: goose against a local database handle, and a replay of the
// migration Up sections through the statement executor for warehouses that
// are only reachable through a statement API.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"booklake/internal/domain"
)

// RunMigrations executes all pending goose migrations against the local
// DuckDB database.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("duckdb"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// RunRemoteMigrations replays the embedded migrations through the statement
// executor. The remote warehouse is reachable only through a statement API,
// so goose cannot drive it directly; applied versions are tracked in a
// schema_migrations table instead of goose's version table.
func RunRemoteMigrations(ctx context.Context, exec domain.Executor, logger *slog.Logger) error {
	if err := exec.Exec(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version BIGINT NOT NULL)"); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, exec)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		logger.Info("applying migration", "version", m.version, "file", m.name)
		for _, stmt := range m.upStatements {
			if err := exec.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s: %w", m.name, err)
			}
		}
		record := fmt.Sprintf("INSERT INTO schema_migrations (version) VALUES (%d)", m.version)
		if err := exec.Exec(ctx, record); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, exec domain.Executor) (map[int64]bool, error) {
	rows, err := exec.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	applied := make(map[int64]bool, len(rows))
	for _, row := range rows {
		applied[row.Int("version")] = true
	}
	return applied, nil
}

type migration struct {
	version      int64
	name         string
	upStatements []string
}

// loadMigrations reads the embedded files in version order and extracts each
// Up section.
func loadMigrations() ([]migration, error) {
	entries, err := EmbedMigrations.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]migration, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		version, err := migrationVersion(name)
		if err != nil {
			return nil, err
		}
		content, err := EmbedMigrations.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{
			version:      version,
			name:         name,
			upStatements: upStatements(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

// migrationVersion parses the numeric prefix of a goose migration filename
// (NNNNN_description.sql).
func migrationVersion(name string) (int64, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: missing version prefix", name)
	}
	version, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("migration %s: bad version prefix: %w", name, err)
	}
	return version, nil
}

// upStatements extracts the statements between the goose Up and Down markers,
// splitting on trailing semicolons. StatementBegin/StatementEnd blocks are
// passed through whole.
func upStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
		inUp       bool
		inBlock    bool
	)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		current.Reset()
		stmt = strings.TrimSuffix(stmt, ";")
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-- +goose Up"):
			inUp = true
			continue
		case strings.HasPrefix(trimmed, "-- +goose Down"):
			flush()
			return statements
		case strings.HasPrefix(trimmed, "-- +goose StatementBegin"):
			inBlock = true
			continue
		case strings.HasPrefix(trimmed, "-- +goose StatementEnd"):
			inBlock = false
			flush()
			continue
		}
		if !inUp || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if !inBlock && strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()
	return statements
}
