// Package main is the entry point for the beantrace HTTP service. It
// builds the table source selected by configuration, indexes the ledger,
// and serves the tracing API until SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"beantrace/internal/app"
	"beantrace/internal/config"
	"beantrace/internal/db"
	"beantrace/internal/domain"
	"beantrace/internal/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Source: source, Logger: logger})
	if err != nil {
		return err
	}
	if a.Scheduler != nil {
		a.Scheduler.Start()
		defer a.Scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("beantrace listening",
		"addr", cfg.ListenAddr,
		"source", cfg.Source,
		"auth", cfg.AuthEnabled())

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// openSource builds the TableSource selected by cfg.Source and returns
// it with a close function for its connections.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.TableSource, func(), error) {
	if cfg.Source == config.SourceDuckDB {
		conn, err := engine.Open(cfg.DuckDBPath)
		if err != nil {
			return nil, nil, err
		}
		src, err := engine.Setup(ctx, conn, cfg)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		logger.Info("duckdb source ready",
			"path", cfg.DuckDBPath,
			"csv_dir", cfg.CSVDir,
			"s3", cfg.HasS3Config())
		return src, func() { _ = conn.Close() }, nil
	}

	// SQLite ledger: serialized writes for migrations, a concurrent read
	// pool for the indexer.
	writeDB, readDB, err := db.OpenSQLitePair(cfg.LedgerDBPath, 0)
	if err != nil {
		return nil, nil, err
	}
	closeBoth := func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}
	if err := db.RunMigrations(writeDB); err != nil {
		closeBoth()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		closeBoth()
		return nil, nil, err
	}
	logger.Info("sqlite ledger ready", "path", cfg.LedgerDBPath)
	return db.NewSQLiteSource(readDB, mapping), closeBoth, nil
}
