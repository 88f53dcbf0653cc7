package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// EmbedMigrations contains the embedded ledger schema migrations.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

// RunMigrations executes all pending goose migrations against the ledger
// database. Safe to call on every startup.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
