package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"beantrace/internal/config"
	"beantrace/internal/domain"
)

// DuckDBSource serves canonical tables through a DuckDB connection. The
// tables themselves come from CSV views registered out of an export
// directory, from an attached SQLite ledger, or from anything else the
// connection can already see.
type DuckDBSource struct {
	db      *sql.DB
	mapping *config.Mapping
}

var _ domain.TableSource = (*DuckDBSource)(nil)

// NewDuckDBSource wraps a DuckDB connection in a TableSource. A nil
// mapping means canonical names are used as-is.
func NewDuckDBSource(db *sql.DB, mapping *config.Mapping) *DuckDBSource {
	if mapping == nil {
		mapping = config.DefaultMapping()
	}
	return &DuckDBSource{db: db, mapping: mapping}
}

// RegisterCSVDir creates one view per *.csv and *.parquet file in dir,
// named after the file. View names are physical names; the mapping
// translates them to canonical tables. Returns the created view names.
func (s *DuckDBSource) RegisterCSVDir(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv dir: %w", err)
	}

	var views []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())

		var viewSQL string
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv":
			viewSQL, err = csvViewSQL(name, path)
		case ".parquet":
			viewSQL, err = parquetViewSQL(name, path)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, viewSQL); err != nil {
			return nil, fmt.Errorf("register %s: %w", entry.Name(), err)
		}
		views = append(views, name)
	}
	return views, nil
}

// ListTables returns the canonical names of the tables and views the
// connection can see, alphabetically.
func (s *DuckDBSource) ListTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT DISTINCT table_name FROM information_schema.tables
		WHERE table_schema = 'main'
		  AND table_name NOT LIKE 'goose_%'
		  AND table_name NOT LIKE 'sqlite_%'
		ORDER BY table_name`

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

// ReadTable returns every row of the named canonical table. A table the
// connection cannot see yields no rows and no error.
func (s *DuckDBSource) ReadTable(ctx context.Context, name string) ([]domain.Row, error) {
	physical := s.mapping.PhysicalTable(name)

	exists, err := s.tableExists(ctx, physical)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+QuoteIdentifier(physical))
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
				// surrogate key from the ledger schema, not ledger data
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

func (s *DuckDBSource) tableExists(ctx context.Context, physical string) (bool, error) {
	const q = `
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'main' AND table_name = ?`

	var n int
	if err := s.db.QueryRowContext(ctx, q, physical).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", physical, err)
	}
	return n > 0, nil
}
