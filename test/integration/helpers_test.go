//go:build integration

// Package integration runs HTTP round trips against the assembled
// application: a seeded SQLite ledger behind the real router with the
// real middleware chain.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"beantrace/internal/app"
	"beantrace/internal/config"
	"beantrace/internal/db"
)

// testEnv bundles the running server and the config it was built with.
type testEnv struct {
	Server *httptest.Server
	Cfg    *config.Config
}

// httpTestOpts tweaks the assembled application.
type httpTestOpts struct {
	// JWTSecret enables bearer auth on /v1 when non-empty.
	JWTSecret string
}

// setupHTTPServer seeds a fresh ledger database, assembles the full
// application over it, and serves the router from an httptest server.
func setupHTTPServer(t *testing.T, opts httpTestOpts) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	writeDB, readDB, err := db.OpenSQLitePair(path, 4)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})
	if err := db.RunMigrations(writeDB); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if err := db.Seed(context.Background(), writeDB); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	cfg := &config.Config{
		LedgerDBPath:       path,
		Source:             config.SourceSQLite,
		ListenAddr:         ":0",
		LogLevel:           "error",
		Env:                "development",
		JWTSecret:          opts.JWTSecret,
		MaxTraceDepth:      10,
		MaxBatchLots:       100,
		ReindexOnStart:     true,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(context.Background(), app.Deps{
		Cfg:    cfg,
		Source: db.NewSQLiteSource(readDB, nil),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	srv := httptest.NewServer(a.Router)
	t.Cleanup(srv.Close)

	return &testEnv{Server: srv, Cfg: cfg}
}

// doRequest performs an HTTP request with an optional bearer token. A nil
// body sends no payload.
func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// generateJWT signs an HS256 token with the given subject and expiry.
func generateJWT(t *testing.T, secret []byte, subject string, expires time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"exp": expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}
