package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLen is the maximum length allowed for a SQL identifier.
const maxIdentifierLen = 128

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 128 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Always quotes unconditionally; the caller should validate first if needed.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// createS3SecretSQL returns the DDL for a named DuckDB S3 secret.
func createS3SecretSQL(name, keyID, secret, endpoint, region, urlStyle string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name is required")
	}
	return fmt.Sprintf(`CREATE SECRET %s (
	TYPE S3,
	KEY_ID %s,
	SECRET %s,
	ENDPOINT %s,
	REGION %s,
	URL_STYLE %s
)`,
		QuoteIdentifier(name),
		QuoteLiteral(keyID),
		QuoteLiteral(secret),
		QuoteLiteral(endpoint),
		QuoteLiteral(region),
		QuoteLiteral(urlStyle),
	), nil
}

// dropSecretSQL returns the DDL to drop a named DuckDB secret.
func dropSecretSQL(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name is required")
	}
	return "DROP SECRET IF EXISTS " + QuoteIdentifier(name), nil
}

// attachSQLiteSQL returns the DDL to attach a SQLite ledger file under
// the given alias.
func attachSQLiteSQL(path, alias string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite path is required")
	}
	if err := ValidateIdentifier(alias); err != nil {
		return "", fmt.Errorf("attach alias: %w", err)
	}
	return fmt.Sprintf("ATTACH %s AS %s (TYPE sqlite, READ_ONLY)",
		QuoteLiteral(path), QuoteIdentifier(alias)), nil
}

// csvViewSQL returns the DDL for a view over a CSV export. The view name
// is the physical table name the source mapping expects.
func csvViewSQL(name, path string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("view name is required")
	}
	if path == "" {
		return "", fmt.Errorf("csv path is required")
	}
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM read_csv_auto(%s, header = true)",
		QuoteIdentifier(name), QuoteLiteral(path)), nil
}

// parquetViewSQL returns the DDL for a view over a Parquet export.
func parquetViewSQL(name, path string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("view name is required")
	}
	if path == "" {
		return "", fmt.Errorf("parquet path is required")
	}
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM read_parquet(%s)",
		QuoteIdentifier(name), QuoteLiteral(path)), nil
}
