package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the bundled schema definition for a dialect
func Schema(dialect Dialect) (string, error) {
	data, err := schemaFS.ReadFile("schema/" + string(dialect) + ".sql")
	if err != nil {
		return "", fmt.Errorf("no schema for dialect %q: %w", dialect, err)
	}
	return string(data), nil
}

// SplitStatements splits a SQL script on ';' and drops blank statements
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// InitSchema executes the bundled schema for dialect statement by statement
// and commits once all of them succeed
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	script, err := Schema(dialect)
	if err != nil {
		return err
	}
	return ExecScript(ctx, db, script)
}

// ExecScript runs every statement of script inside one transaction.
// MySQL commits DDL implicitly, so a failure there can leave earlier
// statements applied; every bundled statement is idempotent.
func ExecScript(ctx context.Context, db *sql.DB, script string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	for _, stmt := range SplitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
