// Package engine runs the DuckDB side of the tracer: a TableSource over
// CSV exports and attached SQLite ledgers, S3 secrets for remote files,
// and a recursive-query rendition of the lineage traversal.
package engine

import (
	"context"
	"database/sql"
	"fmt"

	"beantrace/internal/config"
)

// LedgerAlias is the catalog name the SQLite ledger is attached under.
const LedgerAlias = "ledger"

// Open opens a DuckDB database. An empty path runs in-memory, which is
// all the CSV source needs.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

// InstallExtensions installs and loads the DuckDB extensions the source
// needs. Safe to call without S3 credentials; it just makes the
// extensions available.
func InstallExtensions(ctx context.Context, db *sql.DB) error {
	extensions := []string{
		"INSTALL sqlite; LOAD sqlite;",
		"INSTALL httpfs; LOAD httpfs;",
	}
	for _, ext := range extensions {
		if _, err := db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("extension setup (%s): %w", ext, err)
		}
	}
	return nil
}

// CreateS3Secret creates a named DuckDB secret for S3-compatible storage,
// letting read_csv_auto resolve s3:// ledger exports.
func CreateS3Secret(ctx context.Context, db *sql.DB, name, keyID, secret, endpoint, region, urlStyle string) error {
	secretSQL, err := createS3SecretSQL(name, keyID, secret, endpoint, region, urlStyle)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, secretSQL); err != nil {
		return fmt.Errorf("create S3 secret %q: %w", name, err)
	}
	return nil
}

// DropS3Secret removes a named DuckDB secret.
func DropS3Secret(ctx context.Context, db *sql.DB, name string) error {
	dropSQL, err := dropSecretSQL(name)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop S3 secret %q: %w", name, err)
	}
	return nil
}

// AttachSQLiteLedger attaches a SQLite ledger file read-only under alias.
func AttachSQLiteLedger(ctx context.Context, db *sql.DB, path, alias string) error {
	attachSQL, err := attachSQLiteSQL(path, alias)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, attachSQL); err != nil {
		return fmt.Errorf("attach sqlite ledger: %w", err)
	}
	return nil
}

// IsLedgerAttached checks whether a database is attached under alias.
func IsLedgerAttached(ctx context.Context, db *sql.DB, alias string) bool {
	rows, err := db.QueryContext(ctx,
		"SELECT database_name FROM duckdb_databases() WHERE database_name = ?", alias)
	if err != nil {
		return false
	}
	defer rows.Close() //nolint:errcheck
	return rows.Next()
}

// Setup prepares a DuckDB connection from config: extensions, the S3
// secret when credentials are present, the attached SQLite ledger when
// no CSV directory is configured.
func Setup(ctx context.Context, db *sql.DB, cfg *config.Config) (*DuckDBSource, error) {
	if err := InstallExtensions(ctx, db); err != nil {
		return nil, err
	}

	if cfg.HasS3Config() {
		err := CreateS3Secret(ctx, db, "ledger_exports",
			*cfg.S3KeyID, *cfg.S3Secret, *cfg.S3Endpoint, *cfg.S3Region, "path")
		if err != nil {
			return nil, err
		}
	}

	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	src := NewDuckDBSource(db, mapping)

	if cfg.CSVDir != "" {
		if _, err := src.RegisterCSVDir(ctx, cfg.CSVDir); err != nil {
			return nil, err
		}
		return src, nil
	}

	if !IsLedgerAttached(ctx, db, LedgerAlias) {
		if err := AttachSQLiteLedger(ctx, db, cfg.LedgerDBPath, LedgerAlias); err != nil {
			return nil, err
		}
	}
	return src, nil
}
