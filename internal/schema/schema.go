package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed sql/*.sql
var files embed.FS

// NormalizeDriver maps Postgres aliases to "pgx", the name pgx/stdlib
// registers with database/sql.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql":
		return "pgx"
	case "mysql":
		return "mysql"
	}
	return driver
}

// Statements returns the DDL statements for driver ("mysql" or "pgx").
func Statements(driver string) ([]string, error) {
	var name string
	switch NormalizeDriver(driver) {
	case "mysql":
		name = "sql/mysql.sql"
	case "pgx":
		name = "sql/postgres.sql"
	default:
		return nil, fmt.Errorf("schema: unsupported driver %q", driver)
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, stmt := range strings.Split(string(data), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out, nil
}

// Apply executes every statement inside one transaction. The DDL is
// idempotent so re-running it is safe.
func Apply(ctx context.Context, db *sql.DB, driver string) (int, error) {
	stmts, err := Statements(driver)
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("schema: statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stmts), nil
}
