package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"beantrace/internal/config"
	"beantrace/internal/db"
	"beantrace/internal/domain"
	"beantrace/internal/engine"
	"beantrace/internal/service/tracing"
)

// openService builds the table source selected by the flags, indexes it,
// and returns the ready tracing service plus a cleanup function. The CLI
// is one-shot: every invocation reads the ledger fresh.
func (f *rootFlags) openService(ctx context.Context) (*tracing.Service, func(), error) {
	// Repair warnings still reach the terminal; info-level noise does not.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	mapping, err := config.LoadMapping(f.mapping)
	if err != nil {
		return nil, nil, err
	}

	var (
		src     domain.TableSource
		cleanup func()
	)
	if f.duckdbPath != "" || f.csvDir != "" {
		conn, err := engine.Open(f.duckdbPath)
		if err != nil {
			return nil, nil, err
		}
		dsrc := engine.NewDuckDBSource(conn, mapping)
		if f.csvDir != "" {
			if _, err := dsrc.RegisterCSVDir(ctx, f.csvDir); err != nil {
				_ = conn.Close()
				return nil, nil, err
			}
		}
		src = dsrc
		cleanup = func() { _ = conn.Close() }
	} else {
		// Opening a missing path would create an empty database; catch
		// the typo before SQLite does.
		if _, err := os.Stat(f.sqlitePath); err != nil {
			return nil, nil, fmt.Errorf("ledger database %q not found (use --sqlite, --duckdb, or --csv-dir)", f.sqlitePath)
		}
		conn, err := db.OpenSQLite(f.sqlitePath, db.ModeRead, 0)
		if err != nil {
			return nil, nil, err
		}
		src = db.NewSQLiteSource(conn, mapping)
		cleanup = func() { _ = conn.Close() }
	}

	svc := tracing.NewService(src, f.maxDepth, 0, logger)
	if _, err := svc.Reindex(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
