package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := ensureUpdatedAtColumn(ctx, db); err != nil {
		return err
	}

	return nil
}

// ensureUpdatedAtColumn upgrades databases created before kv rows were timestamped.
func ensureUpdatedAtColumn(ctx context.Context, db *sql.DB) error {
	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pragma_table_info('kv') WHERE name = 'updated_at' LIMIT 1").Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check kv.updated_at column: %w", err)
	}

	if _, err := db.ExecContext(ctx, "ALTER TABLE kv ADD COLUMN updated_at DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00'"); err != nil {
		return fmt.Errorf("add kv.updated_at column: %w", err)
	}

	return nil
}
