package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"beantrace/internal/config"
	"beantrace/internal/domain"
)

// SQLiteSource serves canonical tables from the operational ledger copy.
// Canonical names are translated to physical ones through the source
// mapping, so the same database works whether it was created by our
// migrations or imported from an upstream export.
type SQLiteSource struct {
	db      *sql.DB
	mapping *config.Mapping
}

var _ domain.TableSource = (*SQLiteSource)(nil)

// NewSQLiteSource wraps a read pool in a TableSource. A nil mapping
// means canonical names are used as-is.
func NewSQLiteSource(db *sql.DB, mapping *config.Mapping) *SQLiteSource {
	if mapping == nil {
		mapping = config.DefaultMapping()
	}
	return &SQLiteSource{db: db, mapping: mapping}
}

// ListTables returns the canonical names of the tables present in the
// database, alphabetically. Bookkeeping tables are hidden.
func (s *SQLiteSource) ListTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		  AND name NOT LIKE 'goose_%'
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var physical string
		if err := rows.Scan(&physical); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, s.mapping.CanonicalTable(physical))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

// ReadTable returns every row of the named canonical table. A table that
// does not exist in the database yields no rows and no error.
func (s *SQLiteSource) ReadTable(ctx context.Context, name string) ([]domain.Row, error) {
	physical := s.mapping.PhysicalTable(name)

	exists, err := s.tableExists(ctx, physical)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(physical))
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}

	var out []domain.Row
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", name, err)
		}
		row := make(domain.Row, len(cols))
		for i, col := range cols {
			if strings.EqualFold(col, "id") {
				// surrogate key from the migrations, not ledger data
				continue
			}
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, s.mapping.CanonicalRow(name, row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return out, nil
}

func (s *SQLiteSource) tableExists(ctx context.Context, physical string) (bool, error) {
	const q = `SELECT count(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`

	var n int
	if err := s.db.QueryRowContext(ctx, q, physical).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", physical, err)
	}
	return n > 0, nil
}

// quoteIdent quotes a SQLite identifier. Physical table names from a
// mapping file may contain spaces ("Item Ledger Entry").
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
